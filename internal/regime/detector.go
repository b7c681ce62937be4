package regime

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/internal/indicators"
	"github.com/wonny/compass/internal/strategy"
)

const (
	atrPeriod = 14
	rsiPeriod = 14

	// RSI bullish band: above the midline but not yet overbought
	rsiBullishLow  = 50.0
	rsiBullishHigh = 70.0
)

// Detector computes the daily market regime from five independent factor
// scores. Breadth is a hard precondition; valuation degrades to neutral.
type Detector struct {
	cfg       *strategy.Regime
	valuation contracts.BreakpointTable
	volume    contracts.BreakpointTable
	log       zerolog.Logger
}

// NewDetector builds a detector, validating both step tables up front
func NewDetector(cfg *strategy.Regime, log zerolog.Logger) (*Detector, error) {
	valuation, err := cfg.ValuationBreakpoints()
	if err != nil {
		return nil, fmt.Errorf("valuation table: %w", err)
	}
	volume, err := cfg.VolumeBreakpoints()
	if err != nil {
		return nil, fmt.Errorf("volume table: %w", err)
	}

	return &Detector{
		cfg:       cfg,
		valuation: valuation,
		volume:    volume,
		log:       log.With().Str("component", "regime_detector").Logger(),
	}, nil
}

// Detect produces the regime snapshot for the panel's date.
// 밸류에이션 시리즈는 선택 입력: 없으면 중립 0으로 계속 진행.
func (d *Detector) Detect(ctx context.Context, panel *contracts.Panel,
	breadth []contracts.BreadthPoint, valuation []contracts.ValuationPoint) (*contracts.RegimeSnapshot, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if panel == nil || panel.Count() == 0 {
		return nil, fmt.Errorf("regime: empty price panel")
	}
	if len(breadth) == 0 {
		return nil, fmt.Errorf("regime: breadth series is required")
	}

	components := contracts.RegimeComponents{
		Valuation:  d.valuationScore(valuation),
		Breadth:    d.breadthScore(breadth[len(breadth)-1]),
		Volume:     d.volumeScore(panel),
		Volatility: d.volatilityScore(panel),
		Momentum:   d.momentumScore(panel),
	}

	w := d.cfg.Weights
	score := w.Valuation*components.Valuation +
		w.Breadth*components.Breadth +
		w.Volume*components.Volume +
		w.Volatility*components.Volatility +
		w.Momentum*components.Momentum

	snapshot := &contracts.RegimeSnapshot{
		Date:        panel.Date,
		Regime:      Classify(score),
		RegimeScore: score,
		RiskLevel:   DeriveRiskLevel(score, components.Volatility),
		Components:  components,
	}

	d.log.Info().
		Str("date", panel.Date.Format("2006-01-02")).
		Str("regime", string(snapshot.Regime)).
		Float64("score", score).
		Str("risk_level", string(snapshot.RiskLevel)).
		Msg("Market regime detected")

	return snapshot, nil
}

// Classify maps the composite score onto the regime label,
// evaluated high-to-low with non-overlapping bands.
func Classify(score float64) contracts.Regime {
	switch {
	case score >= 60:
		return contracts.RegimeBubble
	case score >= 30:
		return contracts.RegimeEuphoria
	case score >= -30:
		return contracts.RegimeNeutral
	case score >= -60:
		return contracts.RegimeFear
	default:
		return contracts.RegimeBottom
	}
}

// DeriveRiskLevel combines the composite score and the volatility component
// through an ordered decision table. The two inputs interact: a bearish
// regime at low volatility is a contrarian-opportunity LOW, the same regime
// at high volatility is MEDIUM.
func DeriveRiskLevel(score, volatility float64) contracts.RiskLevel {
	highVol := volatility <= -40

	switch {
	case score >= 30 && highVol:
		return contracts.RiskVeryHigh
	case score >= 60:
		return contracts.RiskVeryHigh
	case score >= 30:
		return contracts.RiskHigh
	case score >= -30 && highVol:
		return contracts.RiskHigh
	case score >= -30:
		return contracts.RiskMedium
	case highVol:
		return contracts.RiskMedium
	default:
		return contracts.RiskLow
	}
}

// valuationScore maps the current P/E percentile within its trailing window
// through the 7-bucket step table. Missing series is neutral, not an error.
func (d *Detector) valuationScore(series []contracts.ValuationPoint) float64 {
	if len(series) < 2 {
		if len(series) == 0 {
			d.log.Warn().Msg("Valuation series missing, factor degraded to neutral")
		}
		return 0
	}

	window := series
	if len(window) > d.cfg.WindowSessions {
		window = window[len(window)-d.cfg.WindowSessions:]
	}

	values := make([]float64, len(window))
	for i, p := range window {
		values[i] = p.PERatio
	}

	percentile := indicators.PercentileRank(values[len(values)-1], values[:len(values)-1])
	return d.valuation.Step(percentile)
}

// breadthScore weights the MA50 spread heavier than the MA200 spread
func (d *Detector) breadthScore(point contracts.BreadthPoint) float64 {
	score := 1.5*(point.PctAboveMA50-50) + 0.5*(point.PctAboveMA200-50)
	return indicators.Clip(score, -100, 100)
}

// volumeScore maps today's total volume over the prior-period average
// through the 5-bucket step table
func (d *Detector) volumeScore(panel *contracts.Panel) float64 {
	totals := make(map[time.Time]float64)
	for _, history := range panel.Symbols {
		tail := history
		if len(tail) > d.cfg.VolumeLookback+1 {
			tail = tail[len(tail)-d.cfg.VolumeLookback-1:]
		}
		for _, p := range tail {
			totals[p.Date] += float64(p.Volume)
		}
	}
	if len(totals) < 2 {
		return 0
	}

	dates := make([]time.Time, 0, len(totals))
	for date := range totals {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var priorSum float64
	prior := dates[:len(dates)-1]
	for _, date := range prior {
		priorSum += totals[date]
	}

	mean := priorSum / float64(len(prior))
	if mean == 0 {
		return 0
	}
	return d.volume.Step(totals[dates[len(dates)-1]] / mean)
}

// volatilityScore is the z-score of the day's cross-symbol average ATR%
// against its own recent distribution, scaled negative (고변동성 = 리스크)
func (d *Detector) volatilityScore(panel *contracts.Panel) float64 {
	window := d.cfg.WindowSessions

	// series[k] = average ATR% across symbols, k sessions back (end-aligned)
	sums := make([]float64, window)
	counts := make([]int, window)
	for _, history := range panel.Symbols {
		series := indicators.ATRPercentSeries(history, atrPeriod)
		for k := 0; k < window && k < len(series); k++ {
			sums[window-1-k] += series[len(series)-1-k]
			counts[window-1-k]++
		}
	}

	avg := make([]float64, 0, window)
	for i := range sums {
		if counts[i] > 0 {
			avg = append(avg, sums[i]/float64(counts[i]))
		}
	}
	if len(avg) < 2 {
		return 0
	}

	var mean float64
	for _, v := range avg {
		mean += v
	}
	mean /= float64(len(avg))

	var variance float64
	for _, v := range avg {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(avg)))
	if std == 0 {
		return 0
	}

	z := (avg[len(avg)-1] - mean) / std
	return indicators.Clip(z*d.cfg.VolatilityScale, -100, 100)
}

// momentumScore blends the share of symbols with a bullish MACD cross and
// the share with RSI in the bullish band
func (d *Detector) momentumScore(panel *contracts.Panel) float64 {
	var macdBullish, macdTotal, rsiBullish, rsiTotal int

	for _, history := range panel.Symbols {
		closes := indicators.Closes(history)

		if macd, signal := indicators.MACD(closes); macd != 0 || signal != 0 {
			macdTotal++
			if macd > signal {
				macdBullish++
			}
		}

		if len(closes) > rsiPeriod {
			rsiTotal++
			rsi := indicators.RSI(closes, rsiPeriod)
			if rsi >= rsiBullishLow && rsi <= rsiBullishHigh {
				rsiBullish++
			}
		}
	}

	pctMACD, pctRSI := 50.0, 50.0
	if macdTotal > 0 {
		pctMACD = 100.0 * float64(macdBullish) / float64(macdTotal)
	}
	if rsiTotal > 0 {
		pctRSI = 100.0 * float64(rsiBullish) / float64(rsiTotal)
	}

	score := 1.2*(pctMACD-50) + 0.8*(pctRSI-50)
	return indicators.Clip(score, -100, 100)
}
