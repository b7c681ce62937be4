package strategy

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// weightSumEpsilon tolerates float literal rounding in YAML, nothing more
const weightSumEpsilon = 1e-6

var structValidator = validator.New()

// Validate checks all required constraints. Any violation is fatal at startup:
// a weight sum away from 1.0 silently biases every downstream score.
func Validate(cfg *Config) error {
	// Field-level constraints (tags)
	if err := structValidator.Struct(cfg); err != nil {
		return fmt.Errorf("strategy config: %w", err)
	}

	// === Composite weight sums ===
	if err := validateWeightSum("rs_rating.weights", cfg.RSRating.Weights.Sum()); err != nil {
		return err
	}
	if err := validateWeightSum("regime.weights", cfg.Regime.Weights.Sum()); err != nil {
		return err
	}
	if err := validateWeightSum("sector.weights", cfg.Sector.Weights.Sum()); err != nil {
		return err
	}
	if err := validateWeightSum("trading.buy_weights", cfg.Trading.BuyWeights.Sum()); err != nil {
		return err
	}

	// === Penalty ordering ===
	p := cfg.RSRating.Penalties
	if p.Crash1MBelow >= p.Return1MBelow {
		return ValidationError{"rs_rating.penalties", fmt.Sprintf(
			"crash_1m_below (%.2f) must be deeper than return_1m_below (%.2f)",
			p.Crash1MBelow, p.Return1MBelow)}
	}

	// === Breakpoint tables (단조성은 생성자에서 검증) ===
	if _, err := cfg.Regime.ValuationBreakpoints(); err != nil {
		return ValidationError{"regime.valuation_table", err.Error()}
	}
	if _, err := cfg.Regime.VolumeBreakpoints(); err != nil {
		return ValidationError{"regime.volume_table", err.Error()}
	}

	// === Trading ===
	t := cfg.Trading
	if t.MinSizePct > t.MaxSizePct {
		return ValidationError{"trading", "min_size_pct must be <= max_size_pct"}
	}
	if t.Target1Pct >= t.Target2Pct {
		return ValidationError{"trading", "target_1_pct must be < target_2_pct"}
	}
	if t.MaxSellRSRating >= t.MinBuyRSRating {
		return ValidationError{"trading", fmt.Sprintf(
			"max_sell_rs_rating (%d) must be < min_buy_rs_rating (%d)",
			t.MaxSellRSRating, t.MinBuyRSRating)}
	}

	return nil
}

func validateWeightSum(field string, sum float64) error {
	if math.Abs(sum-1.0) > weightSumEpsilon {
		return ValidationError{field, fmt.Sprintf("must sum to 1.0, got %.6f", sum)}
	}
	return nil
}
