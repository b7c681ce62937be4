package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/internal/marketstate"
	"github.com/wonny/compass/internal/regime"
	"github.com/wonny/compass/internal/returns"
	"github.com/wonny/compass/internal/rsrating"
	"github.com/wonny/compass/internal/sector"
	"github.com/wonny/compass/internal/strategy"
	"github.com/wonny/compass/internal/trading"
	"github.com/wonny/compass/pkg/logger"
	"github.com/wonny/compass/pkg/redis"
)

// Writer interfaces keep the orchestrator testable without a live database

// RatingWriter persists an RS Rating set
type RatingWriter interface {
	SaveAll(ctx context.Context, set *contracts.RatingSet) error
}

// RegimeWriter persists a regime snapshot
type RegimeWriter interface {
	Save(ctx context.Context, s *contracts.RegimeSnapshot) error
}

// SectorWriter persists sector ranking rows
type SectorWriter interface {
	SaveAll(ctx context.Context, date time.Time, rows []*contracts.SectorRankingRow) error
}

// TradingWriter persists the buy/sell lists
type TradingWriter interface {
	SaveAll(ctx context.Context, lists *contracts.TradingLists) error
}

// Deps bundles the orchestrator's collaborators
type Deps struct {
	Prices        contracts.PriceRepository
	Breadth       contracts.BreadthRepository
	Valuation     contracts.ValuationRepository
	MoneyFlow     contracts.MoneyFlowRepository
	SectorBreadth contracts.SectorBreadthRepository
	Positions     contracts.PositionRepository // optional
	Registry      contracts.SectorRegistry

	Ratings RatingWriter
	Regimes RegimeWriter
	Sectors SectorWriter
	Trading TradingWriter

	Cache *redis.Cache // optional
}

// RunResult summarizes one daily analytics run
type RunResult struct {
	Date     time.Time     `json:"date"`
	Duration time.Duration `json:"duration"`

	Symbols int               `json:"symbols"`
	Rated   int               `json:"rated"`
	Regime  contracts.Regime  `json:"regime,omitempty"`
	Sectors int               `json:"sectors"`
	Buys    int               `json:"buys"`
	Sells   int               `json:"sells"`

	// Non-fatal stage failures (레짐 등 컴포넌트 단위 격리)
	StageErrors []string `json:"stage_errors,omitempty"`
}

// Orchestrator drives the daily pipeline:
// panel → returns/ranks → RS Ratings → {regime, sectors, trading}.
// ⭐ SSOT: 일일 배치 실행 순서는 여기서만
type Orchestrator struct {
	cfg  *strategy.Config
	deps Deps
	log  *logger.Logger

	engine    *returns.Engine
	ratings   *rsrating.Calculator
	detector  *regime.Detector
	ranker    *sector.Ranker
	generator *trading.Generator
}

// NewOrchestrator wires the calculators against a validated strategy config
func NewOrchestrator(cfg *strategy.Config, deps Deps, log *logger.Logger, workers int) (*Orchestrator, error) {
	detector, err := regime.NewDetector(&cfg.Regime, log.Zerolog())
	if err != nil {
		return nil, fmt.Errorf("build regime detector: %w", err)
	}

	return &Orchestrator{
		cfg:       cfg,
		deps:      deps,
		log:       log,
		engine:    returns.NewEngine(log, workers),
		ratings:   rsrating.NewCalculator(&cfg.RSRating, log),
		detector:  detector,
		ranker:    sector.NewRanker(&cfg.Sector, deps.Registry, log),
		generator: trading.NewGenerator(&cfg.Trading, deps.Registry, log),
	}, nil
}

// panelLookback covers the 12-month horizon plus one base bar
const panelLookback = contracts.MinHistorySessions + 1

// Run executes the full pipeline for one trading date. A re-run for the same
// date replaces every artifact of that date.
func (o *Orchestrator) Run(ctx context.Context, date time.Time) (*RunResult, error) {
	started := time.Now()
	result := &RunResult{Date: date}

	o.log.WithField("date", date.Format("2006-01-02")).Info("Daily analytics run started")

	panel, err := o.deps.Prices.GetPanel(ctx, date, panelLookback)
	if err != nil {
		return nil, fmt.Errorf("load price panel: %w", err)
	}
	if panel.Count() == 0 {
		return nil, fmt.Errorf("price panel is empty for %s", date.Format("2006-01-02"))
	}
	result.Symbols = panel.Count()

	// Stage 1: returns and cross-sectional ranks. The rank step is the
	// synchronization barrier: 전 종목 수익률이 모여야 랭킹 가능.
	retSet, err := o.engine.ComputeReturns(ctx, panel)
	if err != nil {
		return nil, fmt.Errorf("compute returns: %w", err)
	}
	rankSet := returns.RankCrossSection(retSet)

	// Stage 2: RS Ratings
	ratingSet, err := o.ratings.Calculate(ctx, retSet, rankSet)
	if err != nil {
		return nil, fmt.Errorf("calculate rs ratings: %w", err)
	}
	if err := o.deps.Ratings.SaveAll(ctx, ratingSet); err != nil {
		return nil, fmt.Errorf("save rs ratings: %w", err)
	}
	result.Rated = ratingSet.Count()

	// Stage 3: market regime. Failure is isolated to this component; the
	// trading stage then falls back to a conservative market state.
	snapshot := o.detectRegime(ctx, panel, result)

	// Stage 4: sector rankings
	o.rankSectors(ctx, panel, ratingSet, result)

	// Stage 5: trading lists
	o.generateLists(ctx, panel, ratingSet, snapshot, result)

	if o.deps.Cache != nil {
		if err := o.deps.Cache.DeleteByDate(ctx, date.Format("2006-01-02")); err != nil {
			o.log.WithError(err).Warn("Cache invalidation failed")
		}
	}

	result.Duration = time.Since(started)
	o.log.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"rated":    result.Rated,
		"regime":   string(result.Regime),
		"sectors":  result.Sectors,
		"buys":     result.Buys,
		"sells":    result.Sells,
		"duration": result.Duration.String(),
		"errors":   len(result.StageErrors),
	}).Info("Daily analytics run finished")

	return result, nil
}

func (o *Orchestrator) detectRegime(ctx context.Context, panel *contracts.Panel, result *RunResult) *contracts.RegimeSnapshot {
	breadth, err := o.deps.Breadth.GetSeries(ctx, panel.Date, o.cfg.Regime.WindowSessions)
	if err != nil {
		o.stageFailed(result, "regime", fmt.Errorf("load breadth: %w", err))
		return nil
	}

	valuation, err := o.deps.Valuation.GetSeries(ctx, panel.Date, o.cfg.Regime.WindowSessions)
	if err != nil {
		// Optional input: degrade to neutral, keep going
		o.log.WithError(err).Warn("Valuation series unavailable")
		valuation = nil
	}

	snapshot, err := o.detector.Detect(ctx, panel, breadth, valuation)
	if err != nil {
		o.stageFailed(result, "regime", err)
		return nil
	}
	if err := o.deps.Regimes.Save(ctx, snapshot); err != nil {
		o.stageFailed(result, "regime", fmt.Errorf("save snapshot: %w", err))
		return snapshot
	}

	result.Regime = snapshot.Regime
	return snapshot
}

func (o *Orchestrator) rankSectors(ctx context.Context, panel *contracts.Panel, ratings *contracts.RatingSet, result *RunResult) {
	moneyFlow, err := o.deps.MoneyFlow.GetByDate(ctx, panel.Date)
	if err != nil {
		o.log.WithError(err).Warn("Money flow feed unavailable")
		moneyFlow = nil
	}
	breadth, err := o.deps.SectorBreadth.GetByDate(ctx, panel.Date)
	if err != nil {
		o.log.WithError(err).Warn("Sector breadth feed unavailable")
		breadth = nil
	}

	rows, err := o.ranker.Rank(ctx, panel, ratings, moneyFlow, breadth)
	if err != nil {
		o.stageFailed(result, "sector", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	if err := o.deps.Sectors.SaveAll(ctx, panel.Date, rows); err != nil {
		o.stageFailed(result, "sector", fmt.Errorf("save rankings: %w", err))
		return
	}
	result.Sectors = len(rows)
}

func (o *Orchestrator) generateLists(ctx context.Context, panel *contracts.Panel, ratings *contracts.RatingSet,
	snapshot *contracts.RegimeSnapshot, result *RunResult) {

	state := contracts.MarketState{Date: panel.Date, Signal: contracts.SignalCaution, Exposure: 50}
	if snapshot != nil {
		state = marketstate.FromSnapshot(snapshot)
	} else {
		o.log.Warn("No regime snapshot, trading falls back to CAUTION")
	}

	var positions []contracts.OpenPosition
	if o.deps.Positions != nil {
		positions, _ = o.deps.Positions.GetOpen(ctx, panel.Date)
	}

	lists, err := o.generator.Generate(ctx, panel, ratings, state, positions)
	if err != nil {
		o.stageFailed(result, "trading", err)
		return
	}
	if err := o.deps.Trading.SaveAll(ctx, lists); err != nil {
		o.stageFailed(result, "trading", fmt.Errorf("save lists: %w", err))
		return
	}
	result.Buys = len(lists.Buys)
	result.Sells = len(lists.Sells)
}

func (o *Orchestrator) stageFailed(result *RunResult, stage string, err error) {
	o.log.WithError(err).WithField("stage", stage).Error("Pipeline stage failed")
	result.StageErrors = append(result.StageErrors, fmt.Sprintf("%s: %v", stage, err))
}
