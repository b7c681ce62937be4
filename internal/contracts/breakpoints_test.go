package contracts

import "testing"

func TestBreakpointTable_Step(t *testing.T) {
	// 밸류에이션 기본 테이블과 같은 형태
	table := MustBreakpointTable([]Breakpoint{
		{Threshold: 90, Score: -80},
		{Threshold: 75, Score: -50},
		{Threshold: 60, Score: -20},
		{Threshold: 40, Score: 0},
		{Threshold: 25, Score: 20},
		{Threshold: 10, Score: 50},
	}, 80)

	tests := []struct {
		x    float64
		want float64
	}{
		{95, -80},
		{90, -80}, // 경계값은 위 구간에 포함
		{89.9, -50},
		{50, 0},
		{10, 50},
		{9.9, 80}, // floor
		{0, 80},
	}
	for _, tt := range tests {
		if got := table.Step(tt.x); got != tt.want {
			t.Errorf("Step(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestBreakpointTable_Interpolate(t *testing.T) {
	table := MustBreakpointTable([]Breakpoint{
		{Threshold: 100, Score: 100},
		{Threshold: 0, Score: 0},
	}, 0)

	tests := []struct {
		x    float64
		want float64
	}{
		{150, 100}, // 최고 구간에 클램프
		{100, 100},
		{50, 50},
		{25, 25},
		{0, 0},
		{-10, 0}, // floor
	}
	for _, tt := range tests {
		if got := table.Interpolate(tt.x); got != tt.want {
			t.Errorf("Interpolate(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestNewBreakpointTable_Validation(t *testing.T) {
	// 임계값 오름차순은 거부
	if _, err := NewBreakpointTable([]Breakpoint{
		{Threshold: 10, Score: 0},
		{Threshold: 20, Score: 10},
	}, 0); err == nil {
		t.Error("expected error for ascending thresholds")
	}

	// 점수 비단조는 거부 (floor 포함)
	if _, err := NewBreakpointTable([]Breakpoint{
		{Threshold: 90, Score: -80},
		{Threshold: 50, Score: 10},
	}, -100); err == nil {
		t.Error("expected error for non-monotonic scores")
	}

	// 빈 테이블은 거부
	if _, err := NewBreakpointTable(nil, 0); err == nil {
		t.Error("expected error for empty table")
	}
}

func TestMaybeValue_OrNeutral(t *testing.T) {
	if got := Some(1.5).OrNeutral(50); got != 1.5 {
		t.Errorf("Some(1.5).OrNeutral(50) = %v, want 1.5", got)
	}
	if got := None().OrNeutral(50); got != 50 {
		t.Errorf("None().OrNeutral(50) = %v, want 50", got)
	}
}

func TestHorizon_Sessions(t *testing.T) {
	tests := []struct {
		h    Horizon
		want int
	}{
		{Horizon1M, 21},
		{Horizon3M, 63},
		{Horizon6M, 126},
		{Horizon9M, 189},
		{Horizon12M, 252},
	}
	for _, tt := range tests {
		if got := tt.h.Sessions(); got != tt.want {
			t.Errorf("%s.Sessions() = %d, want %d", tt.h, got, tt.want)
		}
	}
}
