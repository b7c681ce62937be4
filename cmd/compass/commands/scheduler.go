package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/compass/internal/scheduler"
	"github.com/wonny/compass/internal/scheduler/jobs"
)

// schedulerCmd runs the daily analytics on a cron schedule
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "일일 분석 스케줄러 시작",
	Long: `크론 스케줄러를 시작합니다.

이 명령어는:
- 장 마감 후 일일 분석 파이프라인 자동 실행
- 실패 시 재시도 (기본 3회)
- 실행 이력 유지

Example:
  go run ./cmd/compass scheduler
  go run ./cmd/compass scheduler --now`,
	RunE: runScheduler,
}

var runImmediately bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&runImmediately, "now", false, "스케줄과 무관하게 즉시 1회 실행")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Compass Scheduler ===")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	a, err := newApp(ctx)
	cancel()
	if err != nil {
		return err
	}
	defer a.close()

	loc, err := time.LoadLocation(a.cfg.Pipeline.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", a.cfg.Pipeline.Timezone, err)
	}

	sched := scheduler.New(a.log, loc)
	daily := jobs.NewDailyAnalytics(a.orchestrator, a.cfg.Pipeline.Schedule, loc, a.log)
	if err := sched.AddJob(daily); err != nil {
		return fmt.Errorf("add daily job: %w", err)
	}

	sched.Start()
	if runImmediately {
		if err := sched.RunNow(daily.Name()); err != nil {
			return err
		}
	}

	// Periodic stats logging while running
	statsTicker := time.NewTicker(time.Hour)
	defer statsTicker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-statsTicker.C:
			for name, stats := range sched.JobStats() {
				a.log.WithFields(map[string]interface{}{
					"job":          name,
					"total_runs":   stats.TotalRuns,
					"success_rate": stats.SuccessRate,
				}).Info("Scheduler job stats")
			}
		case sig := <-quit:
			a.log.WithField("signal", sig.String()).Info("Shutdown signal received")
			sched.Stop()
			return nil
		}
	}
}
