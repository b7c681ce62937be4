package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/compass/internal/marketstate"
)

// statusCmd prints the latest analytics state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "최신 분석 상태 조회",
	Long: `가장 최근 실행의 요약을 출력합니다.

이 명령어는:
- 최신 실행 날짜와 RS Rating 행 수
- 시장 레짐과 리스크 레벨
- 파생된 시장 신호 / 노출 수준

Example:
  go run ./cmd/compass status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Compass Status ===")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	date, err := a.ratings.LatestDate(ctx)
	if err != nil {
		return fmt.Errorf("latest run date: %w", err)
	}
	if date.IsZero() {
		fmt.Println("No analytics runs yet")
		return nil
	}
	fmt.Printf("Latest run: %s\n", date.Format("2006-01-02"))

	rows, err := a.ratings.GetByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	fmt.Printf("Rated symbols: %d\n", len(rows))
	if len(rows) > 0 {
		top := rows[0]
		fmt.Printf("Top RS Rating: %s (%d)\n", top.Symbol, top.RSRating)
	}

	snapshot, err := a.regimes.GetByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("load regime: %w", err)
	}
	if snapshot == nil {
		fmt.Println("Regime: (no snapshot)")
		return nil
	}
	fmt.Printf("Regime: %s (score %.1f, risk %s)\n",
		snapshot.Regime, snapshot.RegimeScore, snapshot.RiskLevel)

	provider := marketstate.NewProvider(a.regimes, a.log)
	state, err := provider.State(ctx, date)
	if err != nil {
		return fmt.Errorf("derive market state: %w", err)
	}
	fmt.Printf("Signal: %s (exposure %.0f%%)\n", state.Signal, state.Exposure)

	return nil
}
