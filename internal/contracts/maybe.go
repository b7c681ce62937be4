package contracts

// MaybeValue distinguishes "absent" from a real zero so every component applies
// the same missing-data-is-neutral convention instead of re-deriving it.
// ⭐ SSOT: 결측 데이터 중립 처리 규약
type MaybeValue struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Some returns a defined value
func Some(v float64) MaybeValue {
	return MaybeValue{Value: v, Defined: true}
}

// None returns an absent value
func None() MaybeValue {
	return MaybeValue{}
}

// OrNeutral returns the value, or the documented neutral fallback when absent
func (m MaybeValue) OrNeutral(neutral float64) float64 {
	if !m.Defined {
		return neutral
	}
	return m.Value
}

// Neutral fallbacks shared across components.
// 랭크/섹터 피드는 50, 레짐 팩터는 0이 중립
const (
	NeutralRank   = 50.0
	NeutralFactor = 0.0
)
