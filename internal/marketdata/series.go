package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
)

// BreadthStore reads the market-wide breadth series from market.breadth_daily
type BreadthStore struct {
	db *database.DB
}

// NewBreadthStore creates a breadth series reader
func NewBreadthStore(db *database.DB) *BreadthStore {
	return &BreadthStore{db: db}
}

// GetSeries implements contracts.BreadthRepository
func (s *BreadthStore) GetSeries(ctx context.Context, date time.Time, lookback int) ([]contracts.BreadthPoint, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT date, pct_above_ma20, pct_above_ma50, pct_above_ma100, pct_above_ma200
		FROM (
			SELECT date, pct_above_ma20, pct_above_ma50, pct_above_ma100, pct_above_ma200
			FROM market.breadth_daily
			WHERE date <= $1
			ORDER BY date DESC
			LIMIT $2
		) t
		ORDER BY date`, date, lookback)
	if err != nil {
		return nil, fmt.Errorf("query breadth: %w", err)
	}
	defer rows.Close()

	var out []contracts.BreadthPoint
	for rows.Next() {
		var p contracts.BreadthPoint
		if err := rows.Scan(&p.Date, &p.PctAboveMA20, &p.PctAboveMA50, &p.PctAboveMA100, &p.PctAboveMA200); err != nil {
			return nil, fmt.Errorf("scan breadth: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ValuationStore reads the optional market index P/E series
type ValuationStore struct {
	db  *database.DB
	log *logger.Logger
}

// NewValuationStore creates a valuation series reader
func NewValuationStore(db *database.DB, log *logger.Logger) *ValuationStore {
	return &ValuationStore{db: db, log: log}
}

// GetSeries implements contracts.ValuationRepository. An empty result is not
// an error: the regime valuation factor degrades to neutral.
func (s *ValuationStore) GetSeries(ctx context.Context, date time.Time, lookback int) ([]contracts.ValuationPoint, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT date, pe_ratio
		FROM (
			SELECT date, pe_ratio
			FROM market.valuation_daily
			WHERE date <= $1
			ORDER BY date DESC
			LIMIT $2
		) t
		ORDER BY date`, date, lookback)
	if err != nil {
		return nil, fmt.Errorf("query valuation: %w", err)
	}
	defer rows.Close()

	var out []contracts.ValuationPoint
	for rows.Next() {
		var p contracts.ValuationPoint
		if err := rows.Scan(&p.Date, &p.PERatio); err != nil {
			return nil, fmt.Errorf("scan valuation: %w", err)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		s.log.WithField("date", date.Format("2006-01-02")).Warn("Valuation series is empty")
	}
	return out, rows.Err()
}

// MoneyFlowStore reads per-sector money-flow rows
type MoneyFlowStore struct {
	db *database.DB
}

// NewMoneyFlowStore creates a money-flow reader
func NewMoneyFlowStore(db *database.DB) *MoneyFlowStore {
	return &MoneyFlowStore{db: db}
}

// GetByDate implements contracts.MoneyFlowRepository
func (s *MoneyFlowStore) GetByDate(ctx context.Context, date time.Time) ([]contracts.MoneyFlowPoint, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT sector_code, date, inflow_pct
		FROM market.money_flow_daily
		WHERE date = $1
		ORDER BY sector_code`, date)
	if err != nil {
		return nil, fmt.Errorf("query money flow: %w", err)
	}
	defer rows.Close()

	var out []contracts.MoneyFlowPoint
	for rows.Next() {
		var p contracts.MoneyFlowPoint
		if err := rows.Scan(&p.SectorCode, &p.Date, &p.InflowPct); err != nil {
			return nil, fmt.Errorf("scan money flow: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SectorBreadthStore reads per-sector breadth rows
type SectorBreadthStore struct {
	db *database.DB
}

// NewSectorBreadthStore creates a sector breadth reader
func NewSectorBreadthStore(db *database.DB) *SectorBreadthStore {
	return &SectorBreadthStore{db: db}
}

// GetByDate implements contracts.SectorBreadthRepository
func (s *SectorBreadthStore) GetByDate(ctx context.Context, date time.Time) ([]contracts.SectorBreadthPoint, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT sector_code, date, pct_above_ma50
		FROM market.sector_breadth_daily
		WHERE date = $1
		ORDER BY sector_code`, date)
	if err != nil {
		return nil, fmt.Errorf("query sector breadth: %w", err)
	}
	defer rows.Close()

	var out []contracts.SectorBreadthPoint
	for rows.Next() {
		var p contracts.SectorBreadthPoint
		if err := rows.Scan(&p.SectorCode, &p.Date, &p.PctAboveMA50); err != nil {
			return nil, fmt.Errorf("scan sector breadth: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PositionStore reads externally tracked open positions
type PositionStore struct {
	db *database.DB
}

// NewPositionStore creates an open position reader
func NewPositionStore(db *database.DB) *PositionStore {
	return &PositionStore{db: db}
}

// GetOpen implements contracts.PositionRepository. Positions entered after
// the run date are ignored (백필 재실행 대비).
func (s *PositionStore) GetOpen(ctx context.Context, date time.Time) ([]contracts.OpenPosition, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT symbol, entry_price, entry_date
		FROM market.open_positions
		WHERE entry_date <= $1
		ORDER BY symbol`, date)
	if err != nil {
		return nil, fmt.Errorf("query open positions: %w", err)
	}
	defer rows.Close()

	var out []contracts.OpenPosition
	for rows.Next() {
		var p contracts.OpenPosition
		if err := rows.Scan(&p.Symbol, &p.EntryPrice, &p.EntryDate); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
