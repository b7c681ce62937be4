package contracts

import (
	"context"
	"time"
)

// Read-side interfaces over data owned by external collaborators.
// 코어는 읽기 전용: 수집/적재는 별도 시스템 책임

// PriceRepository provides the immutable OHLCV panel
type PriceRepository interface {
	// GetPanel returns per-symbol history ending at date, at most lookback sessions
	GetPanel(ctx context.Context, date time.Time, lookback int) (*Panel, error)
}

// BreadthRepository provides the market-wide breadth series
type BreadthRepository interface {
	// GetSeries returns breadth rows ending at date, at most lookback sessions,
	// ascending by date
	GetSeries(ctx context.Context, date time.Time, lookback int) ([]BreadthPoint, error)
}

// ValuationRepository provides the optional market index P/E series
type ValuationRepository interface {
	GetSeries(ctx context.Context, date time.Time, lookback int) ([]ValuationPoint, error)
}

// MoneyFlowRepository provides per-sector money-flow rows for one date
type MoneyFlowRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]MoneyFlowPoint, error)
}

// SectorBreadthRepository provides per-sector breadth rows for one date
type SectorBreadthRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]SectorBreadthPoint, error)
}

// PositionRepository provides externally tracked open positions (optional)
type PositionRepository interface {
	GetOpen(ctx context.Context, date time.Time) ([]OpenPosition, error)
}

// SectorRegistry is the read-only symbol → sector lookup, loaded once per run
// and injected (모듈 전역 싱글턴 금지)
type SectorRegistry interface {
	SectorOf(symbol string) (string, bool)
	Sectors() []string
	Symbols(sectorCode string) []string
}

// MarketStateProvider supplies the RISK_ON/CAUTION/RISK_OFF signal and the
// 0-100 exposure level consumed by the trading list generator
type MarketStateProvider interface {
	State(ctx context.Context, date time.Time) (MarketState, error)
}
