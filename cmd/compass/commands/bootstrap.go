package commands

import (
	"context"
	"fmt"

	"github.com/wonny/compass/internal/brain"
	"github.com/wonny/compass/internal/marketdata"
	regimepkg "github.com/wonny/compass/internal/regime"
	"github.com/wonny/compass/internal/registry"
	"github.com/wonny/compass/internal/rsrating"
	sectorpkg "github.com/wonny/compass/internal/sector"
	"github.com/wonny/compass/internal/strategy"
	"github.com/wonny/compass/internal/trading"
	"github.com/wonny/compass/pkg/config"
	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
	"github.com/wonny/compass/pkg/redis"
)

// app bundles the wired dependencies shared by the CLI commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	cache    *redis.Cache
	strategy *strategy.Config

	ratings *rsrating.Repository
	regimes *regimepkg.Repository
	sectors *sectorpkg.Repository
	trading *trading.Repository

	orchestrator *brain.Orchestrator
}

// newApp loads config, connects the stores and wires the pipeline
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	strategyPath := cfg.StrategyPath
	if strategyFile != "" {
		strategyPath = strategyFile
	}
	strat, err := strategy.LoadOrDefault(strategyPath)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	if hash, err := strategy.Hash(strat); err == nil {
		log.WithFields(map[string]interface{}{
			"strategy": strat.Meta.StrategyID,
			"version":  strat.Meta.Version,
			"hash":     hash[:12],
		}).Info("Strategy loaded")
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "compass")

	reg, err := registry.Load(ctx, db, log)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, fmt.Errorf("load sector registry: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		cache:    cache,
		strategy: strat,
		ratings:  rsrating.NewRepository(db, log),
		regimes:  regimepkg.NewRepository(db, log),
		sectors:  sectorpkg.NewRepository(db, log),
		trading:  trading.NewRepository(db, log),
	}

	deps := brain.Deps{
		Prices:        marketdata.NewPriceStore(db, log),
		Breadth:       marketdata.NewBreadthStore(db),
		Valuation:     marketdata.NewValuationStore(db, log),
		MoneyFlow:     marketdata.NewMoneyFlowStore(db),
		SectorBreadth: marketdata.NewSectorBreadthStore(db),
		Positions:     marketdata.NewPositionStore(db),
		Registry:      reg,
		Ratings:       a.ratings,
		Regimes:       a.regimes,
		Sectors:       a.sectors,
		Trading:       a.trading,
		Cache:         cache,
	}

	orchestrator, err := brain.NewOrchestrator(strat, deps, log, cfg.Pipeline.Workers)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}
	a.orchestrator = orchestrator

	return a, nil
}

// close releases the app's connections
func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
