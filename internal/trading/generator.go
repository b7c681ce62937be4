package trading

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/internal/indicators"
	"github.com/wonny/compass/internal/strategy"
	"github.com/wonny/compass/pkg/logger"
)

const (
	smaSessions = 50
	rsiSessions = 14
	volSessions = 20

	// Buy sub-score rescale bands
	rsiScoreLow  = 30.0
	rsiScoreHigh = 70.0
	volRatioLow  = 0.5
	volRatioHigh = 2.0
)

// Generator produces the daily buy/sell candidate lists from RS Ratings and
// the externally supplied market state. RISK_OFF는 무조건 매수 리스트 차단.
type Generator struct {
	cfg      *strategy.Trading
	registry contracts.SectorRegistry
	log      *logger.Logger
}

// NewGenerator creates a trading list generator
func NewGenerator(cfg *strategy.Trading, registry contracts.SectorRegistry, log *logger.Logger) *Generator {
	return &Generator{cfg: cfg, registry: registry, log: log}
}

// Generate builds the trading lists for the panel's date. positions may be
// nil; sell candidates then fall back to a hypothetical SMA50 entry.
func (g *Generator) Generate(ctx context.Context, panel *contracts.Panel, ratings *contracts.RatingSet,
	state contracts.MarketState, positions []contracts.OpenPosition) (*contracts.TradingLists, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if panel == nil || ratings == nil {
		return nil, fmt.Errorf("trading: nil inputs")
	}

	lists := &contracts.TradingLists{Date: panel.Date}

	// Hard gate: no buy candidate ever survives a RISK_OFF signal,
	// 개별 종목 점수와 무관하게.
	if state.Signal != contracts.SignalRiskOff {
		lists.Buys = g.buyList(panel, ratings, state)
	} else {
		g.log.WithField("date", panel.Date.Format("2006-01-02")).
			Warn("Market signal RISK_OFF, buy list suppressed")
	}

	lists.Sells = g.sellList(panel, ratings, positions)

	g.log.WithFields(map[string]interface{}{
		"date":   panel.Date.Format("2006-01-02"),
		"signal": string(state.Signal),
		"buys":   len(lists.Buys),
		"sells":  len(lists.Sells),
	}).Info("Trading lists generated")

	return lists, nil
}

// buyList screens, scores, ranks and sizes the buy candidates
func (g *Generator) buyList(panel *contracts.Panel, ratings *contracts.RatingSet, state contracts.MarketState) []contracts.BuyCandidate {
	var candidates []contracts.BuyCandidate

	for symbol, rec := range ratings.Ratings {
		if rec.RSRating < g.cfg.MinBuyRSRating {
			continue
		}

		history, ok := panel.History(symbol)
		if !ok || len(history) < smaSessions {
			continue
		}

		closes := indicators.Closes(history)
		close := closes[len(closes)-1]
		sma50 := indicators.SMA(closes, smaSessions)
		if close <= sma50 {
			continue
		}

		sector, _ := g.registry.SectorOf(symbol)
		candidates = append(candidates, contracts.BuyCandidate{
			Symbol:          symbol,
			SectorCode:      sector,
			RSRating:        rec.RSRating,
			BuyScore:        g.buyScore(rec.RSRating, history, closes),
			EntryPrice:      close,
			StopLoss:        close * (1 - g.cfg.StopLossPct),
			Target1:         close * (1 + g.cfg.Target1Pct),
			Target2:         close * (1 + g.cfg.Target2Pct),
			PositionSizePct: g.positionSize(rec.RSRating, state.Exposure),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].BuyScore == candidates[j].BuyScore {
			return candidates[i].Symbol < candidates[j].Symbol
		}
		return candidates[i].BuyScore > candidates[j].BuyScore
	})

	if len(candidates) > g.cfg.TopN {
		candidates = candidates[:g.cfg.TopN]
	}
	return candidates
}

// buyScore blends RS rating with rescaled RSI and volume-ratio sub-scores
func (g *Generator) buyScore(rsRating int, history []contracts.PricePoint, closes []float64) float64 {
	rsi := indicators.Clip(indicators.RSI(closes, rsiSessions), rsiScoreLow, rsiScoreHigh)
	momentumScore := (rsi - rsiScoreLow) / (rsiScoreHigh - rsiScoreLow) * 100

	ratio := indicators.Clip(indicators.VolumeRatio(history, volSessions), volRatioLow, volRatioHigh)
	volumeScore := (ratio - volRatioLow) / (volRatioHigh - volRatioLow) * 100

	w := g.cfg.BuyWeights
	return w.RS*float64(rsRating) + w.Momentum*momentumScore + w.Volume*volumeScore
}

// sizeRSSpan is the RS-rating span that maps onto one full size step
const sizeRSSpan = 20.0

// positionSize applies the two-factor sizing rule: RS rating steps the base
// size, then the external exposure level scales the result.
func (g *Generator) positionSize(rsRating int, exposure float64) float64 {
	step := float64(rsRating-g.cfg.MinBuyRSRating) / sizeRSSpan * g.cfg.SizeStepPct

	size := indicators.Clip(g.cfg.BaseSizePct+step, g.cfg.MinSizePct, g.cfg.MaxSizePct)
	return size * exposure / 100.0
}

// sellList screens for exit candidates and sorts the most urgent first
// (손실 큰 순서대로)
func (g *Generator) sellList(panel *contracts.Panel, ratings *contracts.RatingSet, positions []contracts.OpenPosition) []contracts.SellCandidate {
	held := make(map[string]contracts.OpenPosition, len(positions))
	for _, p := range positions {
		held[p.Symbol] = p
	}

	var candidates []contracts.SellCandidate
	for symbol, rec := range ratings.Ratings {
		history, ok := panel.History(symbol)
		if !ok || len(history) < smaSessions {
			continue
		}

		closes := indicators.Closes(history)
		close := closes[len(closes)-1]
		sma50 := indicators.SMA(closes, smaSessions)

		var reasons []contracts.SellReason
		if rec.RSRating < g.cfg.MaxSellRSRating {
			reasons = append(reasons, contracts.SellRSBreakdown)
		}
		if close < sma50 {
			reasons = append(reasons, contracts.SellBelowSMA50)
		}
		if len(reasons) == 0 {
			continue
		}

		if indicators.RSI(closes, rsiSessions) > g.cfg.OverboughtRSI {
			reasons = append(reasons, contracts.SellOverbought)
		}

		sector, _ := g.registry.SectorOf(symbol)
		candidate := contracts.SellCandidate{
			Symbol:     symbol,
			SectorCode: sector,
			Reasons:    reasons,
			ExitPrice:  close,
		}
		pos, holding := held[symbol]
		candidate.PnLPct, candidate.HoldDays = pnl(panel.Date, close, sma50, pos, holding)
		candidates = append(candidates, candidate)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PnLPct == candidates[j].PnLPct {
			return candidates[i].Symbol < candidates[j].Symbol
		}
		return candidates[i].PnLPct < candidates[j].PnLPct
	})
	return candidates
}

// pnl returns the position P&L when an open position exists, otherwise a
// hypothetical P&L against an SMA50 entry (보유 정보 없을 때의 근사치)
func pnl(date time.Time, close, sma50 float64, pos contracts.OpenPosition, holding bool) (float64, int) {
	if holding && pos.EntryPrice > 0 {
		holdDays := int(date.Sub(pos.EntryDate).Hours() / 24)
		if holdDays < 0 {
			holdDays = 0
		}
		return (close/pos.EntryPrice - 1) * 100, holdDays
	}
	if sma50 > 0 {
		return (close/sma50 - 1) * 100, 0
	}
	return 0, 0
}
