package sector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/internal/registry"
	"github.com/wonny/compass/internal/strategy"
	"github.com/wonny/compass/pkg/config"
	"github.com/wonny/compass/pkg/logger"
)

func testRanker(reg contracts.SectorRegistry) *Ranker {
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "console"})
	return NewRanker(&strategy.Default().Sector, reg, log)
}

func flatHistory(symbol string, sessions int, lastClose float64) []contracts.PricePoint {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.PricePoint, sessions)
	for i := 0; i < sessions; i++ {
		close := 100.0
		if i == sessions-1 {
			close = lastClose
		}
		out[i] = contracts.PricePoint{
			Symbol: symbol, Date: base.AddDate(0, 0, i),
			Open: close, High: close, Low: close, Close: close, Volume: 1000,
		}
	}
	return out
}

func TestTrendLabel(t *testing.T) {
	tests := []struct {
		name string
		row  contracts.SectorRankingRow
		want contracts.SectorTrend
	}{
		// score=72, rs=65 → LEADING
		{"leading", contracts.SectorRankingRow{Score: 72, RSScore: 65, MoneyFlowScore: 50}, contracts.SectorLeading},
		// 같은 score에 rs=55 → LEADING 탈락, money_flow<60 → NEUTRAL
		{"falls through to neutral", contracts.SectorRankingRow{Score: 72, RSScore: 55, MoneyFlowScore: 50}, contracts.SectorNeutral},
		// rs=55지만 money_flow≥60 → IMPROVING
		{"improving", contracts.SectorRankingRow{Score: 72, RSScore: 55, MoneyFlowScore: 65}, contracts.SectorImproving},
		{"lagging", contracts.SectorRankingRow{Score: 25, RSScore: 50, MoneyFlowScore: 50}, contracts.SectorLagging},
		{"weakening", contracts.SectorRankingRow{Score: 40, RSScore: 50, MoneyFlowScore: 30}, contracts.SectorWeakening},
		{"neutral", contracts.SectorRankingRow{Score: 40, RSScore: 50, MoneyFlowScore: 50}, contracts.SectorNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.row
			assert.Equal(t, tt.want, trendLabel(&row))
		})
	}
}

func TestRank_CompositeAndDenseRank(t *testing.T) {
	reg := registry.NewStatic(map[string]string{
		"A1": "TECH", "A2": "TECH",
		"B1": "ENER", "B2": "ENER",
	})
	ranker := testRanker(reg)

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	panel := &contracts.Panel{
		Date: date,
		Symbols: map[string][]contracts.PricePoint{
			"A1": flatHistory("A1", 30, 115),
			"A2": flatHistory("A2", 30, 110),
			"B1": flatHistory("B1", 30, 95),
			"B2": flatHistory("B2", 30, 100),
		},
	}
	ratings := &contracts.RatingSet{
		Date: date,
		Ratings: map[string]*contracts.RSRatingRecord{
			"A1": {Symbol: "A1", RSRating: 90},
			"A2": {Symbol: "A2", RSRating: 80},
			"B1": {Symbol: "B1", RSRating: 30},
			"B2": {Symbol: "B2", RSRating: 40},
		},
	}
	moneyFlow := []contracts.MoneyFlowPoint{
		{SectorCode: "TECH", Date: date, InflowPct: 40},  // → 70
		{SectorCode: "ENER", Date: date, InflowPct: -40}, // → 30
	}
	breadth := []contracts.SectorBreadthPoint{
		{SectorCode: "TECH", Date: date, PctAboveMA50: 80},
		{SectorCode: "ENER", Date: date, PctAboveMA50: 20},
	}

	rows, err := ranker.Rank(context.Background(), panel, ratings, moneyFlow, breadth)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// TECH가 모든 피드에서 우위 → rank 1
	assert.Equal(t, "TECH", rows[0].SectorCode)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 2, rows[1].Rank)

	// min-max 리스케일: 섹터 2개면 극값은 100/0
	assert.InDelta(t, 100.0, rows[0].RSScore, 1e-9)
	assert.InDelta(t, 0.0, rows[1].RSScore, 1e-9)

	// money flow 매핑 (x+100)/2
	assert.InDelta(t, 70.0, rows[0].MoneyFlowScore, 1e-9)
	assert.InDelta(t, 30.0, rows[1].MoneyFlowScore, 1e-9)

	// 합성: 0.30*rs + 0.25*mf + 0.25*breadth + 0.20*momentum
	w := strategy.Default().Sector.Weights
	wantTech := w.RS*100 + w.MoneyFlow*70 + w.Breadth*80 + w.Momentum*rows[0].MomentumScore
	assert.InDelta(t, wantTech, rows[0].Score, 1e-9)
}

func TestRank_MissingFeedsAreNeutral(t *testing.T) {
	// money flow에만 등장하는 섹터: 나머지 피드는 중립 50
	reg := registry.NewStatic(nil)
	ranker := testRanker(reg)

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	panel := &contracts.Panel{Date: date, Symbols: map[string][]contracts.PricePoint{}}
	moneyFlow := []contracts.MoneyFlowPoint{
		{SectorCode: "UTIL", Date: date, InflowPct: 0},
	}

	rows, err := ranker.Rank(context.Background(), panel, nil, moneyFlow, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "UTIL", rows[0].SectorCode)
	assert.InDelta(t, 50.0, rows[0].RSScore, 1e-9)
	assert.InDelta(t, 50.0, rows[0].BreadthScore, 1e-9)
	assert.InDelta(t, 50.0, rows[0].MomentumScore, 1e-9)
	assert.InDelta(t, 50.0, rows[0].MoneyFlowScore, 1e-9)
}

func TestRank_TieBreakBySectorCode(t *testing.T) {
	// 같은 점수면 sector_code 오름차순, dense rank는 공유
	reg := registry.NewStatic(nil)
	ranker := testRanker(reg)

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	panel := &contracts.Panel{Date: date, Symbols: map[string][]contracts.PricePoint{}}
	moneyFlow := []contracts.MoneyFlowPoint{
		{SectorCode: "BBB", Date: date, InflowPct: 20},
		{SectorCode: "AAA", Date: date, InflowPct: 20},
		{SectorCode: "CCC", Date: date, InflowPct: -60},
	}

	rows, err := ranker.Rank(context.Background(), panel, nil, moneyFlow, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "AAA", rows[0].SectorCode)
	assert.Equal(t, "BBB", rows[1].SectorCode)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1, rows[1].Rank)
	assert.Equal(t, 2, rows[2].Rank) // dense: 다음 점수는 2
}
