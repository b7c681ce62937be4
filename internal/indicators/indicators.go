package indicators

import "github.com/wonny/compass/internal/contracts"

// Technical indicator helpers shared by the regime detector and the trading
// list generator. All inputs are ascending by date (가장 최근 값이 마지막).
// ⭐ SSOT: 지표 계산은 여기서만

// Closes extracts the close series from price history
func Closes(points []contracts.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}

// SMA returns the simple moving average of the last period values,
// or 0 when the series is shorter than period.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average of the series, seeded with the
// SMA of the first period values.
func EMA(values []float64, period int) float64 {
	series := emaSeries(values, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// emaSeries returns the EMA at every index from period-1 onward
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	multiplier := 2.0 / (float64(period) + 1.0)

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	series := make([]float64, 0, len(values)-period+1)
	series = append(series, seed)

	ema := seed
	for _, v := range values[period:] {
		ema = v*multiplier + ema*(1-multiplier)
		series = append(series, ema)
	}
	return series
}

// MACD returns the MACD line (EMA12 − EMA26) and its 9-period signal line.
// Returns zeros when the series is shorter than 26+9 values.
func MACD(values []float64) (macd, signal float64) {
	const (
		fast       = 12
		slow       = 26
		signalSpan = 9
	)

	if len(values) < slow+signalSpan {
		return 0, 0
	}

	fastSeries := emaSeries(values, fast)
	slowSeries := emaSeries(values, slow)

	// Align: slowSeries starts (slow-fast) entries later than fastSeries
	offset := slow - fast
	macdSeries := make([]float64, len(slowSeries))
	for i := range slowSeries {
		macdSeries[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries := emaSeries(macdSeries, signalSpan)
	if len(signalSeries) == 0 {
		return macdSeries[len(macdSeries)-1], 0
	}

	return macdSeries[len(macdSeries)-1], signalSeries[len(signalSeries)-1]
}

// RSI returns the Relative Strength Index over the last period changes,
// or the neutral 50 when the series is too short.
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return 50.0
	}

	var gains, losses float64
	start := len(values) - period
	for i := start; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	if losses == 0 {
		return 100.0
	}

	rs := gains / losses
	return 100 - (100 / (1 + rs))
}

// ATRPercent returns the Average True Range over the last period bars,
// expressed as a fraction of the last close. 0 when history is too short.
func ATRPercent(points []contracts.PricePoint, period int) float64 {
	series := ATRPercentSeries(points, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// ATRPercentSeries returns the rolling ATR% at every bar from index period
// onward (앞쪽 period개 바는 제외)
func ATRPercentSeries(points []contracts.PricePoint, period int) []float64 {
	if period <= 0 || len(points) < period+1 {
		return nil
	}

	trs := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		trs = append(trs, trueRange(points[i], points[i-1].Close))
	}

	series := make([]float64, 0, len(trs)-period+1)
	var window float64
	for i, tr := range trs {
		window += tr
		if i >= period {
			window -= trs[i-period]
		}
		if i >= period-1 {
			atr := window / float64(period)
			closeAt := points[i+1].Close
			if closeAt > 0 {
				series = append(series, atr/closeAt)
			} else {
				series = append(series, 0)
			}
		}
	}
	return series
}

func trueRange(p contracts.PricePoint, prevClose float64) float64 {
	hl := p.High - p.Low
	hc := abs(p.High - prevClose)
	lc := abs(p.Low - prevClose)

	tr := hl
	if hc > tr {
		tr = hc
	}
	if lc > tr {
		tr = lc
	}
	return tr
}

// VolumeRatio returns the last volume over the mean of the prior lookback
// volumes, or 0 when history is too short or the prior mean is zero.
func VolumeRatio(points []contracts.PricePoint, lookback int) float64 {
	if lookback <= 0 || len(points) < lookback+1 {
		return 0
	}

	var sum float64
	prior := points[len(points)-1-lookback : len(points)-1]
	for _, p := range prior {
		sum += float64(p.Volume)
	}

	mean := sum / float64(lookback)
	if mean == 0 {
		return 0
	}
	return float64(points[len(points)-1].Volume) / mean
}

// PercentileRank returns the percentile (0-100) of value within sample
func PercentileRank(value float64, sample []float64) float64 {
	if len(sample) == 0 {
		return 50.0
	}

	below := 0
	for _, v := range sample {
		if v < value {
			below++
		}
	}
	return 100.0 * float64(below) / float64(len(sample))
}

// Clip bounds v to [lo, hi]
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
