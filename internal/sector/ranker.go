package sector

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/internal/indicators"
	"github.com/wonny/compass/internal/strategy"
	"github.com/wonny/compass/pkg/logger"
)

// Ranker aggregates per-symbol RS, money-flow, breadth and momentum into a
// per-sector composite score, trend label and dense rank.
// 피드가 빠진 섹터는 해당 피드만 중립 50으로 계속 진행.
type Ranker struct {
	cfg      *strategy.Sector
	registry contracts.SectorRegistry
	log      *logger.Logger
}

// NewRanker creates a sector ranker with an injected read-only registry
func NewRanker(cfg *strategy.Sector, registry contracts.SectorRegistry, log *logger.Logger) *Ranker {
	return &Ranker{cfg: cfg, registry: registry, log: log}
}

// Rank produces the sector ranking rows for the panel's date.
// The sector universe is the union of sectors seen in any input feed.
func (r *Ranker) Rank(ctx context.Context, panel *contracts.Panel, ratings *contracts.RatingSet,
	moneyFlow []contracts.MoneyFlowPoint, breadth []contracts.SectorBreadthPoint) ([]*contracts.SectorRankingRow, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if panel == nil {
		return nil, fmt.Errorf("sector: nil price panel")
	}

	rsFeed := r.rsFeed(ratings)
	momentumFeed := r.momentumFeed(panel)

	moneyFlowFeed := make(map[string]float64, len(moneyFlow))
	for _, p := range moneyFlow {
		// inflow_pct ∈ [-100,100] → [0,100]
		moneyFlowFeed[p.SectorCode] = (p.InflowPct + 100) / 2
	}

	breadthFeed := make(map[string]float64, len(breadth))
	for _, p := range breadth {
		breadthFeed[p.SectorCode] = p.PctAboveMA50
	}

	sectors := unionKeys(rsFeed, momentumFeed, moneyFlowFeed, breadthFeed)
	if len(sectors) == 0 {
		r.log.WithField("date", panel.Date.Format("2006-01-02")).Warn("No sectors in any feed")
		return nil, nil
	}

	w := r.cfg.Weights
	rows := make([]*contracts.SectorRankingRow, 0, len(sectors))
	for _, code := range sectors {
		row := &contracts.SectorRankingRow{
			SectorCode:     code,
			Date:           panel.Date,
			RSScore:        feedOrNeutral(rsFeed, code),
			MoneyFlowScore: feedOrNeutral(moneyFlowFeed, code),
			BreadthScore:   feedOrNeutral(breadthFeed, code),
			MomentumScore:  feedOrNeutral(momentumFeed, code),
		}
		row.Score = w.RS*row.RSScore + w.MoneyFlow*row.MoneyFlowScore +
			w.Breadth*row.BreadthScore + w.Momentum*row.MomentumScore
		row.Trend = trendLabel(row)
		rows = append(rows, row)
	}

	assignDenseRanks(rows)

	r.log.WithFields(map[string]interface{}{
		"date":    panel.Date.Format("2006-01-02"),
		"sectors": len(rows),
	}).Info("Sector rankings calculated")

	return rows, nil
}

// rsFeed returns the per-sector mean RS rating, min-max rescaled to [0,100]
// across sectors for the date
func (r *Ranker) rsFeed(ratings *contracts.RatingSet) map[string]float64 {
	if ratings == nil || len(ratings.Ratings) == 0 {
		return nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for symbol, rec := range ratings.Ratings {
		code, ok := r.registry.SectorOf(symbol)
		if !ok {
			continue
		}
		sums[code] += float64(rec.RSRating)
		counts[code]++
	}

	means := make(map[string]float64, len(sums))
	for code, sum := range sums {
		means[code] = sum / float64(counts[code])
	}
	return rescaleMinMax(means)
}

// momentumFeed returns the per-sector mean trailing return, with raw symbol
// returns clipped to ±MomentumClipPct, min-max rescaled to [0,100]
func (r *Ranker) momentumFeed(panel *contracts.Panel) map[string]float64 {
	sessions := r.cfg.MomentumSessions
	clipPct := r.cfg.MomentumClipPct

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for symbol, history := range panel.Symbols {
		code, ok := r.registry.SectorOf(symbol)
		if !ok || len(history) <= sessions {
			continue
		}

		base := history[len(history)-1-sessions].Close
		last := history[len(history)-1].Close
		if base <= 0 {
			continue
		}

		ret := indicators.Clip(last/base-1.0, -clipPct, clipPct)
		sums[code] += ret
		counts[code]++
	}

	means := make(map[string]float64, len(sums))
	for code, sum := range sums {
		means[code] = sum / float64(counts[code])
	}
	return rescaleMinMax(means)
}

// trendLabel evaluates the precedence-ordered trend rules over the
// normalized feed scores
func trendLabel(row *contracts.SectorRankingRow) contracts.SectorTrend {
	switch {
	case row.Score >= 70 && row.RSScore >= 60:
		return contracts.SectorLeading
	case row.Score >= 50 && row.MoneyFlowScore >= 60:
		return contracts.SectorImproving
	case row.Score < 30:
		return contracts.SectorLagging
	case row.Score < 50 && row.MoneyFlowScore < 40:
		return contracts.SectorWeakening
	default:
		return contracts.SectorNeutral
	}
}

// assignDenseRanks sorts descending by score (sector_code ascending on ties)
// and assigns dense integer ranks in place
func assignDenseRanks(rows []*contracts.SectorRankingRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score == rows[j].Score {
			return rows[i].SectorCode < rows[j].SectorCode
		}
		return rows[i].Score > rows[j].Score
	})

	rank := 0
	for i, row := range rows {
		if i == 0 || row.Score != rows[i-1].Score {
			rank++
		}
		row.Rank = rank
	}
}

// rescaleMinMax maps values onto [0,100]; a degenerate spread maps to the
// neutral 50 for everyone
func rescaleMinMax(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return nil
	}

	first := true
	var lo, hi float64
	for _, v := range values {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make(map[string]float64, len(values))
	for code, v := range values {
		if hi == lo {
			out[code] = contracts.NeutralRank
			continue
		}
		out[code] = (v - lo) / (hi - lo) * 100
	}
	return out
}

func feedOrNeutral(feed map[string]float64, code string) float64 {
	if v, ok := feed[code]; ok {
		return v
	}
	return contracts.NeutralRank
}

func unionKeys(feeds ...map[string]float64) []string {
	seen := make(map[string]struct{})
	for _, feed := range feeds {
		for code := range feed {
			seen[code] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
