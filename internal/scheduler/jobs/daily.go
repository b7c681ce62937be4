package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/compass/internal/brain"
	"github.com/wonny/compass/pkg/logger"
)

// runTimeout bounds one full pipeline execution
const runTimeout = 30 * time.Minute

// DailyAnalytics runs the full analytics pipeline for today's session after
// the market close. 대상 날짜는 스케줄러 타임존 기준의 오늘.
type DailyAnalytics struct {
	orchestrator *brain.Orchestrator
	schedule     string
	location     *time.Location
	log          *logger.Logger
}

// NewDailyAnalytics creates the daily pipeline job
func NewDailyAnalytics(orchestrator *brain.Orchestrator, schedule string, loc *time.Location, log *logger.Logger) *DailyAnalytics {
	return &DailyAnalytics{
		orchestrator: orchestrator,
		schedule:     schedule,
		location:     loc,
		log:          log,
	}
}

// Name implements scheduler.Job
func (j *DailyAnalytics) Name() string { return "daily_analytics" }

// Schedule implements scheduler.Job
func (j *DailyAnalytics) Schedule() string { return j.schedule }

// Run implements scheduler.Job
func (j *DailyAnalytics) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	now := time.Now().In(j.location)
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	result, err := j.orchestrator.Run(ctx, date)
	if err != nil {
		return fmt.Errorf("daily analytics run: %w", err)
	}
	if len(result.StageErrors) > 0 {
		j.log.WithFields(map[string]interface{}{
			"date":   date.Format("2006-01-02"),
			"errors": result.StageErrors,
		}).Warn("Daily analytics finished with degraded stages")
	}
	return nil
}
