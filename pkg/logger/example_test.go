package logger_test

import (
	"errors"

	"github.com/wonny/compass/pkg/config"
	"github.com/wonny/compass/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Pipeline started")
	log.Warn("Valuation series missing, degrading to neutral")

	log.Infof("Rated %d symbols", 2481)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	runLog := log.WithField("date", "2026-08-28")
	runLog.Info("Daily analytics run started")

	log.WithFields(map[string]interface{}{
		"symbol":    "005930",
		"rs_rating": 87,
		"penalty":   0.85,
	}).Info("Rating computed")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("database connection timeout")
	log.WithError(err).WithField("stage", "regime").Error("Pipeline stage failed")
}
