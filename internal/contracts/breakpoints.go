package contracts

import "fmt"

// Breakpoint pairs a threshold with the score assigned at or above it
type Breakpoint struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Score     float64 `yaml:"score" json:"score"`
}

// BreakpointTable is an ordered (threshold, score) step table evaluated
// high-to-low, with a floor score below the lowest threshold.
// ⭐ SSOT: 구간 점수 테이블은 이 타입으로만 (ad hoc 맵 조회 금지)
type BreakpointTable struct {
	points []Breakpoint
	floor  float64
}

// NewBreakpointTable validates and builds a step table.
// Thresholds must be strictly descending; scores (including the floor) must be
// monotonic, otherwise the table silently reorders every downstream score.
func NewBreakpointTable(points []Breakpoint, floor float64) (BreakpointTable, error) {
	if len(points) == 0 {
		return BreakpointTable{}, fmt.Errorf("breakpoint table must not be empty")
	}

	for i := 1; i < len(points); i++ {
		if points[i].Threshold >= points[i-1].Threshold {
			return BreakpointTable{}, fmt.Errorf(
				"breakpoint thresholds must be strictly descending: %.4f >= %.4f at index %d",
				points[i].Threshold, points[i-1].Threshold, i)
		}
	}

	scores := make([]float64, 0, len(points)+1)
	for _, p := range points {
		scores = append(scores, p.Score)
	}
	scores = append(scores, floor)

	if !isMonotonic(scores) {
		return BreakpointTable{}, fmt.Errorf("breakpoint scores must be monotonic")
	}

	cp := make([]Breakpoint, len(points))
	copy(cp, points)

	return BreakpointTable{points: cp, floor: floor}, nil
}

// MustBreakpointTable builds a table and panics on invalid input.
// 하드코딩된 기본 테이블 초기화용
func MustBreakpointTable(points []Breakpoint, floor float64) BreakpointTable {
	t, err := NewBreakpointTable(points, floor)
	if err != nil {
		panic(err)
	}
	return t
}

// Step returns the score of the first breakpoint whose threshold x reaches,
// or the floor score when x is below all thresholds.
func (t BreakpointTable) Step(x float64) float64 {
	for _, p := range t.points {
		if x >= p.Threshold {
			return p.Score
		}
	}
	return t.floor
}

// Interpolate returns a piecewise-linear score between adjacent breakpoints,
// clamped to the top score above the highest threshold and to the floor below
// the lowest.
func (t BreakpointTable) Interpolate(x float64) float64 {
	if x >= t.points[0].Threshold {
		return t.points[0].Score
	}

	for i := 1; i < len(t.points); i++ {
		hi, lo := t.points[i-1], t.points[i]
		if x >= lo.Threshold {
			frac := (x - lo.Threshold) / (hi.Threshold - lo.Threshold)
			return lo.Score + frac*(hi.Score-lo.Score)
		}
	}

	return t.floor
}

// Points returns a copy of the table's breakpoints
func (t BreakpointTable) Points() []Breakpoint {
	cp := make([]Breakpoint, len(t.points))
	copy(cp, t.points)
	return cp
}

// Floor returns the score below the lowest threshold
func (t BreakpointTable) Floor() float64 {
	return t.floor
}

func isMonotonic(v []float64) bool {
	increasing, decreasing := true, true
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			increasing = false
		}
		if v[i] > v[i-1] {
			decreasing = false
		}
	}
	return increasing || decreasing
}
