package contracts

import "time"

// Regime is the market-wide classification derived from the factor composite
type Regime string

const (
	RegimeBubble   Regime = "BUBBLE"
	RegimeEuphoria Regime = "EUPHORIA"
	RegimeNeutral  Regime = "NEUTRAL"
	RegimeFear     Regime = "FEAR"
	RegimeBottom   Regime = "BOTTOM"
)

// RiskLevel combines the regime score and volatility into a deployment caution level
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// RegimeComponents holds the five independent factor scores, each in [-100, 100]
type RegimeComponents struct {
	Valuation  float64 `json:"valuation"`
	Breadth    float64 `json:"breadth"`
	Volume     float64 `json:"volume"`
	Volatility float64 `json:"volatility"`
	Momentum   float64 `json:"momentum"`
}

// RegimeSnapshot is the market regime for one date; append-with-dedup on date
// ⭐ SSOT: 레짐 산출물
type RegimeSnapshot struct {
	Date        time.Time        `json:"date"`
	Regime      Regime           `json:"regime"`
	RegimeScore float64          `json:"regime_score"` // [-100, 100]
	RiskLevel   RiskLevel        `json:"risk_level"`
	Components  RegimeComponents `json:"components"`
}

// IsBearish reports whether the regime is on the fear side
func (s *RegimeSnapshot) IsBearish() bool {
	return s.Regime == RegimeFear || s.Regime == RegimeBottom
}
