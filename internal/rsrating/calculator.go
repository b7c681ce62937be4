package rsrating

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/internal/returns"
	"github.com/wonny/compass/internal/strategy"
	"github.com/wonny/compass/pkg/logger"
)

// Calculator blends per-horizon percentile ranks into a single 1-99
// RS Rating per symbol, with a downtrend penalty applied after the final
// cross-sectional re-rank.
type Calculator struct {
	cfg *strategy.RSRating
	log *logger.Logger
}

// NewCalculator creates an RS Rating calculator
func NewCalculator(cfg *strategy.RSRating, log *logger.Logger) *Calculator {
	return &Calculator{cfg: cfg, log: log}
}

// Calculate produces the full rating set for one trading date.
// 흐름: 가중 합성 → 합성점수 횡단면 재랭킹 → 페널티
func (c *Calculator) Calculate(ctx context.Context, retSet *contracts.ReturnSet, rankSet *contracts.RankSet) (*contracts.RatingSet, error) {
	if retSet == nil || rankSet == nil {
		return nil, fmt.Errorf("rsrating: nil inputs")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &contracts.RatingSet{
		Date:    retSet.Date,
		Ratings: make(map[string]*contracts.RSRatingRecord, len(retSet.Returns)),
	}

	type scored struct {
		symbol string
		score  float64
	}
	pool := make([]scored, 0, len(retSet.Returns))

	for symbol := range retSet.Returns {
		record := &contracts.RSRatingRecord{
			Symbol: symbol,
			Date:   retSet.Date,
			RS1M:   rankSet.Get(symbol, contracts.Horizon1M),
			RS3M:   rankSet.Get(symbol, contracts.Horizon3M),
			RS6M:   rankSet.Get(symbol, contracts.Horizon6M),
			RS9M:   rankSet.Get(symbol, contracts.Horizon9M),
			RS12M:  rankSet.Get(symbol, contracts.Horizon12M),
		}
		record.RSScore = c.composite(record)
		out.Ratings[symbol] = record
		pool = append(pool, scored{symbol: symbol, score: record.RSScore})
	}

	// Re-rank the composite scores so the final rating is itself a
	// cross-sectional percentile, not a raw weighted average.
	if len(pool) < 2 {
		for _, record := range out.Ratings {
			record.RSRatingRaw = int(contracts.NeutralRank)
		}
	} else {
		sort.Slice(pool, func(i, j int) bool {
			if pool[i].score == pool[j].score {
				return pool[i].symbol < pool[j].symbol
			}
			return pool[i].score < pool[j].score
		})
		firstIdx := 0
		for i, entry := range pool {
			if i > 0 && entry.score != pool[i-1].score {
				firstIdx = i
			}
			out.Ratings[entry.symbol].RSRatingRaw = returns.RankFromPosition(firstIdx, len(pool))
		}
	}

	for symbol, record := range out.Ratings {
		record.Penalty = c.penalty(retSet, symbol)
		record.RSRating = clipRating(int(math.Round(float64(record.RSRatingRaw) * record.Penalty)))
	}

	c.log.WithFields(map[string]interface{}{
		"date":    retSet.Date.Format("2006-01-02"),
		"symbols": len(out.Ratings),
	}).Info("RS Ratings calculated")

	return out, nil
}

// composite returns the weighted blend of the per-horizon ranks
func (c *Calculator) composite(r *contracts.RSRatingRecord) float64 {
	w := c.cfg.Weights
	return float64(r.RS1M)*w.M1 +
		float64(r.RS3M)*w.M3 +
		float64(r.RS6M)*w.M6 +
		float64(r.RS9M)*w.M9 +
		float64(r.RS12M)*w.M12
}

// penalty returns the multiplicative downtrend penalty for a symbol.
// 하락 추세 페널티는 누적 적용 (1M 약세 × 3M 약세 × 1M 급락)
func (c *Calculator) penalty(retSet *contracts.ReturnSet, symbol string) float64 {
	rules := c.cfg.Penalties
	penalty := 1.0

	if ret1M := retSet.Get(symbol, contracts.Horizon1M); ret1M.Defined {
		if ret1M.Value < rules.Return1MBelow {
			penalty *= rules.Factor1M
		}
		if ret1M.Value < rules.Crash1MBelow {
			penalty *= rules.CrashFactor
		}
	}
	if ret3M := retSet.Get(symbol, contracts.Horizon3M); ret3M.Defined && ret3M.Value < rules.Return3MBelow {
		penalty *= rules.Factor3M
	}
	return penalty
}

func clipRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 99 {
		return 99
	}
	return r
}
