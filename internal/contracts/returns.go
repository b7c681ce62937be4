package contracts

import "time"

// Horizon is a lookback period for multi-horizon returns
type Horizon string

const (
	Horizon1M  Horizon = "1M"
	Horizon3M  Horizon = "3M"
	Horizon6M  Horizon = "6M"
	Horizon9M  Horizon = "9M"
	Horizon12M Horizon = "12M"
)

// Sessions returns the number of trading sessions for the horizon
func (h Horizon) Sessions() int {
	switch h {
	case Horizon1M:
		return 21
	case Horizon3M:
		return 63
	case Horizon6M:
		return 126
	case Horizon9M:
		return 189
	case Horizon12M:
		return 252
	default:
		return 0
	}
}

// AllHorizons returns all horizons in ascending order
func AllHorizons() []Horizon {
	return []Horizon{Horizon1M, Horizon3M, Horizon6M, Horizon9M, Horizon12M}
}

// MinHistorySessions is the session count required for full RS eligibility
// (12개월 수익률이 정의되는 최소 이력)
const MinHistorySessions = 252

// ReturnRecord is one derived multi-horizon return for a symbol at a date.
// PctReturn is absent (not zero) until Horizon.Sessions() of history exist.
type ReturnRecord struct {
	Symbol    string     `json:"symbol"`
	Date      time.Time  `json:"date"`
	Horizon   Horizon    `json:"horizon"`
	PctReturn MaybeValue `json:"pct_return"`
}

// ReturnSet holds all horizon returns for the symbols of one date
// ⭐ SSOT: 수익률 엔진 → RS 계산기 데이터 전달
type ReturnSet struct {
	Date    time.Time                         `json:"date"`
	Returns map[string]map[Horizon]MaybeValue `json:"returns"` // key: symbol
}

// Get returns the return for a symbol and horizon
func (s *ReturnSet) Get(symbol string, h Horizon) MaybeValue {
	byHorizon, ok := s.Returns[symbol]
	if !ok {
		return None()
	}
	return byHorizon[h]
}

// Symbols returns all symbols present in the set
func (s *ReturnSet) Symbols() []string {
	symbols := make([]string, 0, len(s.Returns))
	for sym := range s.Returns {
		symbols = append(symbols, sym)
	}
	return symbols
}

// RankSet holds cross-sectional 1-99 percentile ranks per symbol and horizon
type RankSet struct {
	Date  time.Time                  `json:"date"`
	Ranks map[string]map[Horizon]int `json:"ranks"` // key: symbol, values in [1,99]
}

// Get returns the rank for a symbol and horizon (neutral 50 when missing)
func (s *RankSet) Get(symbol string, h Horizon) int {
	byHorizon, ok := s.Ranks[symbol]
	if !ok {
		return int(NeutralRank)
	}
	rank, ok := byHorizon[h]
	if !ok {
		return int(NeutralRank)
	}
	return rank
}
