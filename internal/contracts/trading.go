package contracts

import "time"

// MarketSignal gates the trading list generator
// 별도 시장상태 컴포넌트가 공급 (§외부 인터페이스)
type MarketSignal string

const (
	SignalRiskOn  MarketSignal = "RISK_ON"
	SignalCaution MarketSignal = "CAUTION"
	SignalRiskOff MarketSignal = "RISK_OFF"
)

// MarketState is the externally supplied exposure/signal pair
type MarketState struct {
	Date     time.Time    `json:"date"`
	Signal   MarketSignal `json:"signal"`
	Exposure float64      `json:"exposure"` // 0-100, scales position size
}

// SellReason tags one matched sell rule; a candidate carries all that apply
type SellReason string

const (
	SellRSBreakdown SellReason = "RS_BREAKDOWN"
	SellBelowSMA50  SellReason = "BELOW_SMA50"
	SellOverbought  SellReason = "OVERBOUGHT"
)

// BuyCandidate is one entry on the daily buy list
type BuyCandidate struct {
	Symbol     string  `json:"symbol"`
	SectorCode string  `json:"sector_code"`
	RSRating   int     `json:"rs_rating"`
	BuyScore   float64 `json:"buy_score"` // [0, 100]

	EntryPrice      float64 `json:"entry_price"`
	StopLoss        float64 `json:"stop_loss"`
	Target1         float64 `json:"target_1"`
	Target2         float64 `json:"target_2"`
	PositionSizePct float64 `json:"position_size_pct"` // [0, 10]
}

// SellCandidate is one entry on the daily sell list
type SellCandidate struct {
	Symbol     string       `json:"symbol"`
	SectorCode string       `json:"sector_code"`
	Reasons    []SellReason `json:"sell_reason"` // all matching rules, never just one
	ExitPrice  float64      `json:"exit_price"`
	PnLPct     float64      `json:"pnl_pct"`
	HoldDays   int          `json:"hold_days"`
}

// HasReason reports whether a specific rule fired
func (c *SellCandidate) HasReason(r SellReason) bool {
	for _, reason := range c.Reasons {
		if reason == r {
			return true
		}
	}
	return false
}

// TradingLists bundles the buy/sell candidates of one run date.
// Recomputed fully each run; no identity across dates.
type TradingLists struct {
	Date  time.Time       `json:"date"`
	Buys  []BuyCandidate  `json:"buys"`
	Sells []SellCandidate `json:"sells"`
}
