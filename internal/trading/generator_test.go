package trading

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
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

func testGenerator() *Generator {
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "console"})
	reg := registry.NewStatic(map[string]string{
		"UP": "TECH", "DOWN": "ENER", "MID": "TECH",
	})
	return NewGenerator(&strategy.Default().Trading, reg, log)
}

// trendHistory builds sessions bars moving linearly from start to end
func trendHistory(symbol string, sessions int, start, end float64) []contracts.PricePoint {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.PricePoint, sessions)
	for i := 0; i < sessions; i++ {
		close := start + (end-start)*float64(i)/float64(sessions-1)
		out[i] = contracts.PricePoint{
			Symbol: symbol, Date: base.AddDate(0, 0, i),
			Open: close, High: close * 1.01, Low: close * 0.99, Close: close, Volume: 1000,
		}
	}
	return out
}

func fixturePanel() *contracts.Panel {
	return &contracts.Panel{
		Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Symbols: map[string][]contracts.PricePoint{
			"UP":   trendHistory("UP", 60, 100, 150),   // close > SMA50
			"DOWN": trendHistory("DOWN", 60, 150, 100), // close < SMA50
			"MID":  trendHistory("MID", 60, 100, 101),
		},
	}
}

func fixtureRatings(date time.Time) *contracts.RatingSet {
	return &contracts.RatingSet{
		Date: date,
		Ratings: map[string]*contracts.RSRatingRecord{
			"UP":   {Symbol: "UP", Date: date, RSRating: 90, RSRatingRaw: 92, Penalty: 1.0},
			"DOWN": {Symbol: "DOWN", Date: date, RSRating: 30, RSRatingRaw: 40, Penalty: 0.85},
			"MID":  {Symbol: "MID", Date: date, RSRating: 60, RSRatingRaw: 60, Penalty: 1.0},
		},
	}
}

func TestGenerate_RiskOffSuppressesBuys(t *testing.T) {
	gen := testGenerator()
	panel := fixturePanel()
	ratings := fixtureRatings(panel.Date)

	state := contracts.MarketState{Date: panel.Date, Signal: contracts.SignalRiskOff, Exposure: 100}
	lists, err := gen.Generate(context.Background(), panel, ratings, state, nil)
	require.NoError(t, err)

	assert.Empty(t, lists.Buys, "RISK_OFF must suppress the buy list unconditionally")
	assert.NotEmpty(t, lists.Sells, "sell screening still runs under RISK_OFF")
}

func TestGenerate_RiskOffOverRandomFixtures(t *testing.T) {
	// 무작위 패널/레이팅 100회: RISK_OFF면 항상 빈 매수 리스트
	rng := rand.New(rand.NewSource(7))
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "console"})

	for trial := 0; trial < 100; trial++ {
		symbols := make(map[string]string)
		panel := &contracts.Panel{
			Date:    time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
			Symbols: make(map[string][]contracts.PricePoint),
		}
		ratings := &contracts.RatingSet{Date: panel.Date, Ratings: make(map[string]*contracts.RSRatingRecord)}

		n := 5 + rng.Intn(20)
		for i := 0; i < n; i++ {
			symbol := fmt.Sprintf("S%02d", i)
			symbols[symbol] = "TECH"
			start := 50 + rng.Float64()*100
			end := 50 + rng.Float64()*100
			panel.Symbols[symbol] = trendHistory(symbol, 60, start, end)
			ratings.Ratings[symbol] = &contracts.RSRatingRecord{
				Symbol: symbol, Date: panel.Date, RSRating: 1 + rng.Intn(99),
			}
		}

		gen := NewGenerator(&strategy.Default().Trading, registry.NewStatic(symbols), log)
		state := contracts.MarketState{Date: panel.Date, Signal: contracts.SignalRiskOff, Exposure: float64(rng.Intn(101))}

		lists, err := gen.Generate(context.Background(), panel, ratings, state, nil)
		require.NoError(t, err)
		require.Empty(t, lists.Buys, "trial %d produced buys under RISK_OFF", trial)
	}
}

func TestGenerate_BuyScreenAndBrackets(t *testing.T) {
	gen := testGenerator()
	panel := fixturePanel()
	ratings := fixtureRatings(panel.Date)

	state := contracts.MarketState{Date: panel.Date, Signal: contracts.SignalRiskOn, Exposure: 100}
	lists, err := gen.Generate(context.Background(), panel, ratings, state, nil)
	require.NoError(t, err)

	// UP만 통과: rs≥80 ∧ close>SMA50. MID는 rs 미달, DOWN은 둘 다 미달.
	require.Len(t, lists.Buys, 1)
	buy := lists.Buys[0]
	assert.Equal(t, "UP", buy.Symbol)
	assert.Equal(t, "TECH", buy.SectorCode)

	// 고정 비율 리스크 브래킷
	assert.InDelta(t, buy.EntryPrice*0.93, buy.StopLoss, 1e-9)
	assert.InDelta(t, buy.EntryPrice*1.10, buy.Target1, 1e-9)
	assert.InDelta(t, buy.EntryPrice*1.20, buy.Target2, 1e-9)

	// 사이징: clip(5 + (90-80)/20*2, 2, 10) * 100/100 = 6
	assert.InDelta(t, 6.0, buy.PositionSizePct, 1e-9)

	assert.GreaterOrEqual(t, buy.BuyScore, 0.0)
	assert.LessOrEqual(t, buy.BuyScore, 100.0)
}

func TestGenerate_ExposureScalesSize(t *testing.T) {
	gen := testGenerator()
	panel := fixturePanel()
	ratings := fixtureRatings(panel.Date)

	state := contracts.MarketState{Date: panel.Date, Signal: contracts.SignalCaution, Exposure: 50}
	lists, err := gen.Generate(context.Background(), panel, ratings, state, nil)
	require.NoError(t, err)

	require.Len(t, lists.Buys, 1)
	// 노출 50% → 사이즈 절반
	assert.InDelta(t, 3.0, lists.Buys[0].PositionSizePct, 1e-9)
}

func TestGenerate_SellReasonsAreAccumulated(t *testing.T) {
	gen := testGenerator()
	panel := fixturePanel()
	ratings := fixtureRatings(panel.Date)

	state := contracts.MarketState{Date: panel.Date, Signal: contracts.SignalRiskOn, Exposure: 100}
	lists, err := gen.Generate(context.Background(), panel, ratings, state, nil)
	require.NoError(t, err)

	var down *contracts.SellCandidate
	for i := range lists.Sells {
		if lists.Sells[i].Symbol == "DOWN" {
			down = &lists.Sells[i]
		}
	}
	require.NotNil(t, down, "DOWN should be a sell candidate")

	// rs<50 그리고 close<SMA50 → 두 사유 모두
	assert.True(t, down.HasReason(contracts.SellRSBreakdown))
	assert.True(t, down.HasReason(contracts.SellBelowSMA50))
}

func TestGenerate_SellsSortedByPnLAscending(t *testing.T) {
	gen := testGenerator()
	panel := fixturePanel()
	date := panel.Date

	// 전 종목을 매도 후보로 만들기 위해 전부 rs<50
	ratings := &contracts.RatingSet{
		Date: date,
		Ratings: map[string]*contracts.RSRatingRecord{
			"UP":   {Symbol: "UP", Date: date, RSRating: 20},
			"DOWN": {Symbol: "DOWN", Date: date, RSRating: 20},
			"MID":  {Symbol: "MID", Date: date, RSRating: 20},
		},
	}

	positions := []contracts.OpenPosition{
		{Symbol: "UP", EntryPrice: 200, EntryDate: date.AddDate(0, 0, -10)},  // 손실
		{Symbol: "MID", EntryPrice: 90, EntryDate: date.AddDate(0, 0, -30)}, // 이익
	}

	state := contracts.MarketState{Date: date, Signal: contracts.SignalRiskOn, Exposure: 100}
	lists, err := gen.Generate(context.Background(), panel, ratings, state, positions)
	require.NoError(t, err)
	require.Len(t, lists.Sells, 3)

	// 손실 큰 순서 (P&L 오름차순)
	pnls := make([]float64, len(lists.Sells))
	for i, s := range lists.Sells {
		pnls[i] = s.PnLPct
	}
	assert.True(t, sort.Float64sAreSorted(pnls), "sells must be sorted ascending by P&L: %v", pnls)

	// 보유 정보가 있으면 실제 진입가 기준 P&L과 보유일
	var up *contracts.SellCandidate
	for i := range lists.Sells {
		if lists.Sells[i].Symbol == "UP" {
			up = &lists.Sells[i]
		}
	}
	require.NotNil(t, up)
	assert.InDelta(t, (150.0/200.0-1)*100, up.PnLPct, 1e-9)
	assert.Equal(t, 10, up.HoldDays)
}
