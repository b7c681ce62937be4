package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Compass - 일일 시장 분석 대시보드 백엔드",
	Long: `Compass Unified CLI

일일 배치로 네 가지 분석 산출물을 계산합니다:
RS Rating, 시장 레짐, 섹터 랭킹, 매수/매도 후보.

Usage:
  go run ./cmd/compass [command]

Examples:
  go run ./cmd/compass run --date 2026-08-28
  go run ./cmd/compass api
  go run ./cmd/compass scheduler
  go run ./cmd/compass status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy config file (default from STRATEGY_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
