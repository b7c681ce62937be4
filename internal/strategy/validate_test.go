package strategy

import (
	"strings"
	"testing"
)

func TestValidate_WeightSumViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "rs rating weights",
			mutate: func(c *Config) { c.RSRating.Weights.M1 = 0.5 },
			field:  "rs_rating.weights",
		},
		{
			name:   "regime weights",
			mutate: func(c *Config) { c.Regime.Weights.Breadth = 0.9 },
			field:  "regime.weights",
		},
		{
			name:   "sector weights",
			mutate: func(c *Config) { c.Sector.Weights.MoneyFlow = 0 },
			field:  "sector.weights",
		},
		{
			name:   "buy weights",
			mutate: func(c *Config) { c.Trading.BuyWeights.RS = 0.7 },
			field:  "trading.buy_weights",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *Default()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if err == nil {
				t.Fatal("expected weight sum error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %q", err, tt.field)
			}
		})
	}
}

func TestValidate_PenaltyOrdering(t *testing.T) {
	cfg := *Default()
	// 급락 임계값이 일반 하락 임계값보다 얕으면 규칙이 뒤집힘
	cfg.RSRating.Penalties.Crash1MBelow = -0.01
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected penalty ordering error, got nil")
	}
}

func TestValidate_TradingConstraints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min size above max", func(c *Config) { c.Trading.MinSizePct = 20 }},
		{"target1 above target2", func(c *Config) { c.Trading.Target1Pct = 0.30 }},
		{"sell threshold above buy", func(c *Config) { c.Trading.MaxSellRSRating = 90 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *Default()
			tt.mutate(&cfg)
			if err := Validate(&cfg); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_BrokenBreakpointTable(t *testing.T) {
	cfg := *Default()
	// 오름차순 임계값은 단조성 위반
	cfg.Regime.ValuationTable[0].Threshold = -1
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected breakpoint table error, got nil")
	}
}

func TestValidate_TagViolation(t *testing.T) {
	cfg := *Default()
	cfg.Trading.TopN = 0
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected struct tag error, got nil")
	}
}
