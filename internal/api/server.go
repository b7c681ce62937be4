package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wonny/compass/pkg/config"
	"github.com/wonny/compass/pkg/logger"
)

// Server is the dashboard-facing HTTP server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
	cfg        *config.Config
}

// New creates the API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
			IdleTimeout:  cfg.API.IdleTimeout,
		},
		log: log,
		cfg: cfg,
	}
}

// Start blocks serving HTTP until shutdown
func (s *Server) Start() error {
	s.log.WithFields(map[string]interface{}{
		"port": s.cfg.Port,
		"env":  s.cfg.Env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// Shutdown drains connections and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down API server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
