package strategy

import "github.com/wonny/compass/internal/contracts"

// Default returns the built-in dashboard_v1 strategy.
// YAML 파일이 없을 때의 기준 설정 (테스트 픽스처로도 사용)
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "dashboard_v1",
			Version:    "1.0.0",
			Timezone:   "Asia/Seoul",
		},

		RSRating: RSRating{
			// 3M-heavy: the composite favors the intermediate trend
			Weights: HorizonWeights{
				M1:  0.20,
				M3:  0.40,
				M6:  0.25,
				M9:  0.10,
				M12: 0.05,
			},
			// [-2%, 0%] is a noise tolerance band: sideways consolidation is
			// not penalized
			Penalties: PenaltyRules{
				Return1MBelow: -0.02,
				Factor1M:      0.85,
				Return3MBelow: -0.02,
				Factor3M:      0.70,
				Crash1MBelow:  -0.15,
				CrashFactor:   0.85,
			},
		},

		Regime: Regime{
			WindowSessions: 252,
			Weights: RegimeWeights{
				Valuation:  0.25,
				Breadth:    0.25,
				Volume:     0.15,
				Volatility: 0.15,
				Momentum:   0.20,
			},
			// P/E percentile (0-100) → score: expensive market scores negative
			ValuationTable: []contracts.Breakpoint{
				{Threshold: 90, Score: -80},
				{Threshold: 75, Score: -50},
				{Threshold: 60, Score: -20},
				{Threshold: 40, Score: 0},
				{Threshold: 25, Score: 20},
				{Threshold: 10, Score: 50},
			},
			ValuationFloor: 80,
			// volume ratio (today / prior-19d avg) → score
			VolumeTable: []contracts.Breakpoint{
				{Threshold: 1.5, Score: 50},
				{Threshold: 1.2, Score: 25},
				{Threshold: 0.8, Score: 0},
				{Threshold: 0.6, Score: -25},
			},
			VolumeFloor:     -50,
			VolumeLookback:  19,
			VolatilityScale: -30,
		},

		Sector: Sector{
			Weights: SectorWeights{
				RS:        0.30,
				MoneyFlow: 0.25,
				Breadth:   0.25,
				Momentum:  0.20,
			},
			MomentumClipPct:  0.20,
			MomentumSessions: 20,
		},

		Trading: Trading{
			MinBuyRSRating: 80,
			TopN:           10,
			BuyWeights: BuyWeights{
				RS:       0.4,
				Momentum: 0.3,
				Volume:   0.3,
			},
			BaseSizePct: 5.0,
			SizeStepPct: 2.0,
			MinSizePct:  2.0,
			MaxSizePct:  10.0,

			StopLossPct: 0.07,
			Target1Pct:  0.10,
			Target2Pct:  0.20,

			MaxSellRSRating: 50,
			OverboughtRSI:   70,
		},
	}
}
