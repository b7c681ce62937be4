package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/wonny/compass/internal/contracts"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func bars(closes []float64, volume int64) []contracts.PricePoint {
	out := make([]contracts.PricePoint, len(closes))
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = contracts.PricePoint{
			Symbol: "TEST",
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: volume,
		}
	}
	return out
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	if got := SMA(values, 5); !almostEqual(got, 3) {
		t.Errorf("SMA(5) = %v, want 3", got)
	}
	if got := SMA(values, 2); !almostEqual(got, 4.5) {
		t.Errorf("SMA(2) = %v, want 4.5", got)
	}
	// 기간보다 짧으면 0
	if got := SMA(values, 6); got != 0 {
		t.Errorf("SMA(6) = %v, want 0", got)
	}
}

func TestEMA_ConstantSeries(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100
	}
	if got := EMA(values, 12); !almostEqual(got, 100) {
		t.Errorf("EMA of constant series = %v, want 100", got)
	}
}

func TestRSI(t *testing.T) {
	// 전부 상승: 손실 0 → RSI 100
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if got := RSI(up, 14); got != 100 {
		t.Errorf("RSI all-up = %v, want 100", got)
	}

	// 짧은 시리즈는 중립 50
	if got := RSI([]float64{1, 2}, 14); got != 50 {
		t.Errorf("RSI short series = %v, want 50", got)
	}
}

func TestMACD_ShortSeries(t *testing.T) {
	values := make([]float64, 10)
	macd, signal := MACD(values)
	if macd != 0 || signal != 0 {
		t.Errorf("MACD short series = (%v, %v), want (0, 0)", macd, signal)
	}
}

func TestMACD_TrendingSeries(t *testing.T) {
	// 꾸준한 상승은 MACD > 0
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	macd, _ := MACD(values)
	if macd <= 0 {
		t.Errorf("MACD of uptrend = %v, want > 0", macd)
	}
}

func TestVolumeRatio(t *testing.T) {
	points := bars([]float64{100, 100, 100, 100, 100, 100}, 1000)
	points[len(points)-1].Volume = 2000

	if got := VolumeRatio(points, 5); !almostEqual(got, 2.0) {
		t.Errorf("VolumeRatio = %v, want 2.0", got)
	}
	if got := VolumeRatio(points, 10); got != 0 {
		t.Errorf("VolumeRatio short history = %v, want 0", got)
	}
}

func TestATRPercent(t *testing.T) {
	points := bars(make([]float64, 30), 1000)
	for i := range points {
		points[i].Open, points[i].High, points[i].Low, points[i].Close = 100, 102, 98, 100
	}

	got := ATRPercent(points, 14)
	// TR은 매일 4 (high-low), close 100 → ATR% = 0.04
	if !almostEqual(got, 0.04) {
		t.Errorf("ATRPercent = %v, want 0.04", got)
	}
}

func TestPercentileRank(t *testing.T) {
	sample := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	if got := PercentileRank(10.5, sample); !almostEqual(got, 100) {
		t.Errorf("PercentileRank(10.5) = %v, want 100", got)
	}
	if got := PercentileRank(5.5, sample); !almostEqual(got, 50) {
		t.Errorf("PercentileRank(5.5) = %v, want 50", got)
	}
	if got := PercentileRank(0, sample); !almostEqual(got, 0) {
		t.Errorf("PercentileRank(0) = %v, want 0", got)
	}
	if got := PercentileRank(1, nil); got != 50 {
		t.Errorf("PercentileRank empty sample = %v, want 50", got)
	}
}

func TestClip(t *testing.T) {
	if got := Clip(5, 0, 10); got != 5 {
		t.Errorf("Clip(5) = %v", got)
	}
	if got := Clip(-5, 0, 10); got != 0 {
		t.Errorf("Clip(-5) = %v", got)
	}
	if got := Clip(15, 0, 10); got != 10 {
		t.Errorf("Clip(15) = %v", got)
	}
}
