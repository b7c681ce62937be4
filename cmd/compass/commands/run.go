package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runCmd executes the daily analytics pipeline once
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "일일 분석 파이프라인 1회 실행",
	Long: `일일 분석 파이프라인을 한 번 실행합니다.

이 명령어는:
- 가격 패널과 보조 시리즈 로드
- RS Rating / 레짐 / 섹터 랭킹 / 매매 리스트 계산
- 해당 날짜 파티션을 통째로 교체 (멱등)

Example:
  go run ./cmd/compass run
  go run ./cmd/compass run --date 2026-08-28`,
	RunE: runPipeline,
}

var runDate string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "target date (YYYY-MM-DD, default today)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Compass Daily Analytics ===")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if runDate != "" {
		date, err = time.Parse("2006-01-02", runDate)
		if err != nil {
			return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
		}
	}

	result, err := a.orchestrator.Run(ctx, date)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("Date:     %s\n", result.Date.Format("2006-01-02"))
	fmt.Printf("Symbols:  %d (rated %d)\n", result.Symbols, result.Rated)
	fmt.Printf("Regime:   %s\n", result.Regime)
	fmt.Printf("Sectors:  %d\n", result.Sectors)
	fmt.Printf("Buys:     %d\n", result.Buys)
	fmt.Printf("Sells:    %d\n", result.Sells)
	fmt.Printf("Duration: %s\n", result.Duration)
	for _, stageErr := range result.StageErrors {
		fmt.Printf("Degraded: %s\n", stageErr)
	}
	return nil
}
