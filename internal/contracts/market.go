package contracts

import "time"

// PricePoint represents one OHLCV bar for a symbol
// 외부 수집기가 생성하며 코어는 절대 수정하지 않음
type PricePoint struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Panel is the daily OHLCV panel: per-symbol history sorted by date ascending
// ⭐ SSOT: 파이프라인 입력 스냅샷 (불변)
type Panel struct {
	Date    time.Time               `json:"date"`    // target run date (last bar)
	Symbols map[string][]PricePoint `json:"symbols"` // key: symbol, ascending by date
}

// Count returns the number of symbols in the panel
func (p *Panel) Count() int {
	return len(p.Symbols)
}

// History returns the price history for a symbol
func (p *Panel) History(symbol string) ([]PricePoint, bool) {
	h, ok := p.Symbols[symbol]
	return h, ok
}

// BreadthPoint is one row of the market-wide breadth series
// 레짐 감지기의 필수 입력 (없으면 해당 컴포넌트만 실패)
type BreadthPoint struct {
	Date         time.Time `json:"date"`
	PctAboveMA20 float64   `json:"pct_above_ma20"`
	PctAboveMA50 float64   `json:"pct_above_ma50"`
	PctAboveMA100 float64  `json:"pct_above_ma100"`
	PctAboveMA200 float64  `json:"pct_above_ma200"`
}

// ValuationPoint is one row of the market index valuation series (optional input)
type ValuationPoint struct {
	Date    time.Time `json:"date"`
	PERatio float64   `json:"pe_ratio"`
}

// MoneyFlowPoint is one row of the per-sector money-flow series
type MoneyFlowPoint struct {
	SectorCode string    `json:"sector_code"`
	Date       time.Time `json:"date"`
	InflowPct  float64   `json:"inflow_pct"` // [-100, 100]
}

// SectorBreadthPoint is one row of the per-sector breadth series (already 0-100)
type SectorBreadthPoint struct {
	SectorCode string    `json:"sector_code"`
	Date       time.Time `json:"date"`
	PctAboveMA50 float64 `json:"pct_above_ma50"`
}

// OpenPosition is an externally supplied holding, used by sell screening
type OpenPosition struct {
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	EntryDate  time.Time `json:"entry_date"`
}
