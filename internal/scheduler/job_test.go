package scheduler

import (
	"fmt"
	"testing"
)

func TestHistory_AddCapsAtLimit(t *testing.T) {
	h := &History{}
	for i := 0; i < historyLimit+50; i++ {
		h.Add(Result{JobName: fmt.Sprintf("run-%d", i), Success: true})
	}

	if len(h.Results) != historyLimit {
		t.Errorf("len(Results) = %d, want %d", len(h.Results), historyLimit)
	}
	// 가장 오래된 항목이 밀려나고 최신 항목이 남아야 함
	if got := h.Results[0].JobName; got != "run-50" {
		t.Errorf("oldest retained = %s, want run-50", got)
	}
	if got := h.Last().JobName; got != fmt.Sprintf("run-%d", historyLimit+49) {
		t.Errorf("Last() = %s", got)
	}
}

func TestHistory_Last(t *testing.T) {
	h := &History{}
	if h.Last() != nil {
		t.Error("Last() on empty history should be nil")
	}

	h.Add(Result{JobName: "first"})
	h.Add(Result{JobName: "second"})
	if got := h.Last().JobName; got != "second" {
		t.Errorf("Last() = %s, want second", got)
	}
}

func TestHistory_SuccessRate(t *testing.T) {
	h := &History{}
	if rate := h.SuccessRate(); rate != 0.0 {
		t.Errorf("empty history rate = %f, want 0", rate)
	}

	h.Add(Result{Success: true})
	h.Add(Result{Success: true})
	h.Add(Result{Success: false})
	h.Add(Result{Success: true})

	if rate := h.SuccessRate(); rate != 0.75 {
		t.Errorf("rate = %f, want 0.75", rate)
	}
}
