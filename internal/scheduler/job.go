package scheduler

import (
	"context"
	"time"
)

// Job is one scheduled unit of work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression, with seconds field
	// 예: "0 0 17 * * MON-FRI" (평일 17시)
	Schedule() string
}

// Result records one job execution
type Result struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// historyLimit caps the retained results per job
const historyLimit = 100

// History stores recent executions of one job
type History struct {
	Results []Result
}

// Add appends a result, keeping only the most recent entries
func (h *History) Add(result Result) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Last returns the most recent result, or nil when none exist
func (h *History) Last() *Result {
	if len(h.Results) == 0 {
		return nil
	}
	return &h.Results[len(h.Results)-1]
}

// SuccessRate returns the fraction of successful runs (0.0 - 1.0)
func (h *History) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}

	success := 0
	for _, r := range h.Results {
		if r.Success {
			success++
		}
	}
	return float64(success) / float64(len(h.Results))
}
