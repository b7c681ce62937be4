package strategy

import (
	"github.com/wonny/compass/internal/contracts"
)

// Config는 대시보드 분석 전략의 전체 설정
// ⭐ SSOT: 가중치/임계값은 여기서만 (코드에 매직넘버 금지)
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	RSRating RSRating `yaml:"rs_rating" json:"rs_rating"`
	Regime   Regime   `yaml:"regime" json:"regime"`
	Sector   Sector   `yaml:"sector" json:"sector"`
	Trading  Trading  `yaml:"trading" json:"trading"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version    string `yaml:"version" json:"version" validate:"required"`
	Timezone   string `yaml:"timezone" json:"timezone" validate:"required"`
}

// RSRating holds the RS Rating composite weights and penalty rules
type RSRating struct {
	Weights   HorizonWeights `yaml:"weights" json:"weights"`
	Penalties PenaltyRules   `yaml:"penalties" json:"penalties"`
}

// HorizonWeights weights the five horizon ranks; must sum to 1.0
type HorizonWeights struct {
	M1  float64 `yaml:"1m" json:"1m" validate:"gte=0,lte=1"`
	M3  float64 `yaml:"3m" json:"3m" validate:"gte=0,lte=1"`
	M6  float64 `yaml:"6m" json:"6m" validate:"gte=0,lte=1"`
	M9  float64 `yaml:"9m" json:"9m" validate:"gte=0,lte=1"`
	M12 float64 `yaml:"12m" json:"12m" validate:"gte=0,lte=1"`
}

// Sum returns the weight total
func (w HorizonWeights) Sum() float64 {
	return w.M1 + w.M3 + w.M6 + w.M9 + w.M12
}

// Of returns the weight for a horizon
func (w HorizonWeights) Of(h contracts.Horizon) float64 {
	switch h {
	case contracts.Horizon1M:
		return w.M1
	case contracts.Horizon3M:
		return w.M3
	case contracts.Horizon6M:
		return w.M6
	case contracts.Horizon9M:
		return w.M9
	case contracts.Horizon12M:
		return w.M12
	default:
		return 0
	}
}

// PenaltyRules holds the multiplicative downtrend discounts.
// 상수 출처가 불명확한 정책값이므로 동작 동일성 유지가 원칙 (파생 금지)
type PenaltyRules struct {
	Return1MBelow float64 `yaml:"return_1m_below" json:"return_1m_below" validate:"lt=0"`
	Factor1M      float64 `yaml:"factor_1m" json:"factor_1m" validate:"gt=0,lte=1"`

	Return3MBelow float64 `yaml:"return_3m_below" json:"return_3m_below" validate:"lt=0"`
	Factor3M      float64 `yaml:"factor_3m" json:"factor_3m" validate:"gt=0,lte=1"`

	// "Falling knife": a second 1M test at a deeper threshold
	Crash1MBelow float64 `yaml:"crash_1m_below" json:"crash_1m_below" validate:"lt=0"`
	CrashFactor  float64 `yaml:"crash_factor" json:"crash_factor" validate:"gt=0,lte=1"`
}

// Regime holds the market regime detector configuration
type Regime struct {
	WindowSessions int `yaml:"window_sessions" json:"window_sessions" validate:"gt=0"`

	Weights RegimeWeights `yaml:"weights" json:"weights"`

	// Step tables (threshold desc, floor below the lowest threshold)
	ValuationTable []contracts.Breakpoint `yaml:"valuation_table" json:"valuation_table" validate:"required"`
	ValuationFloor float64                `yaml:"valuation_floor" json:"valuation_floor"`
	VolumeTable    []contracts.Breakpoint `yaml:"volume_table" json:"volume_table" validate:"required"`
	VolumeFloor    float64                `yaml:"volume_floor" json:"volume_floor"`

	// Prior-day average window for the volume ratio
	VolumeLookback int `yaml:"volume_lookback" json:"volume_lookback" validate:"gt=0"`

	// ATR z-score multiplier (음수: 고변동성은 리스크로 감점)
	VolatilityScale float64 `yaml:"volatility_scale" json:"volatility_scale"`
}

// RegimeWeights weights the five factor scores; must sum to 1.0
type RegimeWeights struct {
	Valuation  float64 `yaml:"valuation" json:"valuation" validate:"gte=0,lte=1"`
	Breadth    float64 `yaml:"breadth" json:"breadth" validate:"gte=0,lte=1"`
	Volume     float64 `yaml:"volume" json:"volume" validate:"gte=0,lte=1"`
	Volatility float64 `yaml:"volatility" json:"volatility" validate:"gte=0,lte=1"`
	Momentum   float64 `yaml:"momentum" json:"momentum" validate:"gte=0,lte=1"`
}

// Sum returns the weight total
func (w RegimeWeights) Sum() float64 {
	return w.Valuation + w.Breadth + w.Volume + w.Volatility + w.Momentum
}

// Sector holds the sector ranking configuration
type Sector struct {
	Weights SectorWeights `yaml:"weights" json:"weights"`

	// Raw symbol returns are clipped to ±MomentumClipPct before rescaling
	MomentumClipPct  float64 `yaml:"momentum_clip_pct" json:"momentum_clip_pct" validate:"gt=0"`
	MomentumSessions int     `yaml:"momentum_sessions" json:"momentum_sessions" validate:"gt=0"`
}

// SectorWeights weights the four sector feeds; must sum to 1.0
type SectorWeights struct {
	RS        float64 `yaml:"rs" json:"rs" validate:"gte=0,lte=1"`
	MoneyFlow float64 `yaml:"money_flow" json:"money_flow" validate:"gte=0,lte=1"`
	Breadth   float64 `yaml:"breadth" json:"breadth" validate:"gte=0,lte=1"`
	Momentum  float64 `yaml:"momentum" json:"momentum" validate:"gte=0,lte=1"`
}

// Sum returns the weight total
func (w SectorWeights) Sum() float64 {
	return w.RS + w.MoneyFlow + w.Breadth + w.Momentum
}

// Trading holds the buy/sell list rule thresholds
type Trading struct {
	// Buy screen
	MinBuyRSRating int `yaml:"min_buy_rs_rating" json:"min_buy_rs_rating" validate:"gte=1,lte=99"`
	TopN           int `yaml:"top_n" json:"top_n" validate:"gt=0"`

	BuyWeights BuyWeights `yaml:"buy_weights" json:"buy_weights"`

	// Position sizing: clip(base + (rs-min)/range*step, min, max) * exposure/100
	BaseSizePct float64 `yaml:"base_size_pct" json:"base_size_pct" validate:"gt=0"`
	SizeStepPct float64 `yaml:"size_step_pct" json:"size_step_pct" validate:"gte=0"`
	MinSizePct  float64 `yaml:"min_size_pct" json:"min_size_pct" validate:"gt=0"`
	MaxSizePct  float64 `yaml:"max_size_pct" json:"max_size_pct" validate:"gt=0"`

	// Fixed risk bracket (변동성 미반영: 알려진 단순화, 동작 동일성 유지)
	StopLossPct float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"gt=0,lt=1"`
	Target1Pct  float64 `yaml:"target_1_pct" json:"target_1_pct" validate:"gt=0"`
	Target2Pct  float64 `yaml:"target_2_pct" json:"target_2_pct" validate:"gt=0"`

	// Sell screen
	MaxSellRSRating int     `yaml:"max_sell_rs_rating" json:"max_sell_rs_rating" validate:"gte=1,lte=99"`
	OverboughtRSI   float64 `yaml:"overbought_rsi" json:"overbought_rsi" validate:"gt=0,lte=100"`
}

// BuyWeights weights the buy score components; must sum to 1.0
type BuyWeights struct {
	RS       float64 `yaml:"rs" json:"rs" validate:"gte=0,lte=1"`
	Momentum float64 `yaml:"momentum" json:"momentum" validate:"gte=0,lte=1"`
	Volume   float64 `yaml:"volume" json:"volume" validate:"gte=0,lte=1"`
}

// Sum returns the weight total
func (w BuyWeights) Sum() float64 {
	return w.RS + w.Momentum + w.Volume
}

// ValuationBreakpoints builds the validated valuation step table
func (r Regime) ValuationBreakpoints() (contracts.BreakpointTable, error) {
	return contracts.NewBreakpointTable(r.ValuationTable, r.ValuationFloor)
}

// VolumeBreakpoints builds the validated volume step table
func (r Regime) VolumeBreakpoints() (contracts.BreakpointTable, error) {
	return contracts.NewBreakpointTable(r.VolumeTable, r.VolumeFloor)
}
