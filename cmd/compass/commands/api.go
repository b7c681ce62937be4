package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/compass/internal/api"
	"github.com/wonny/compass/internal/api/handlers"
)

// apiCmd starts the dashboard API server
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "대시보드 API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  GET  /api/ratings          - RS Rating 조회
  GET  /api/ratings/{symbol} - 종목별 RS Rating 이력
  GET  /api/regime           - 시장 레짐 조회
  GET  /api/regime/history   - 레짐 이력
  GET  /api/sectors          - 섹터 랭킹 조회
  GET  /api/trading          - 매수/매도 리스트 조회
  POST /api/pipeline/run     - 파이프라인 수동 실행

Example:
  go run ./cmd/compass api
  go run ./cmd/compass api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Compass API Server ===")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	a, err := newApp(ctx)
	cancel()
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	handler := handlers.NewAnalyticsHandler(
		a.ratings, a.regimes, a.sectors, a.trading,
		a.orchestrator, a.cache, a.log)
	router := api.NewRouter(handler, &a.cfg.API, a.log)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
