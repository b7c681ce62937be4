package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
)

// PriceStore reads the immutable OHLCV panel from market.prices.
// 수집/적재는 외부 수집기 책임: 여기는 읽기 전용.
type PriceStore struct {
	db  *database.DB
	log *logger.Logger
}

// NewPriceStore creates a price panel reader
func NewPriceStore(db *database.DB, log *logger.Logger) *PriceStore {
	return &PriceStore{db: db, log: log}
}

// GetPanel implements contracts.PriceRepository: per-symbol history ending at
// date, at most lookback sessions, ascending by date.
func (s *PriceStore) GetPanel(ctx context.Context, date time.Time, lookback int) (*contracts.Panel, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT symbol, date, open, high, low, close, volume
		FROM (
			SELECT symbol, date, open, high, low, close, volume,
			       row_number() OVER (PARTITION BY symbol ORDER BY date DESC) AS rn
			FROM market.prices
			WHERE date <= $1
		) t
		WHERE rn <= $2
		ORDER BY symbol, date`, date, lookback)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	panel := &contracts.Panel{
		Date:    date,
		Symbols: make(map[string][]contracts.PricePoint),
	}
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		panel.Symbols[p.Symbol] = append(panel.Symbols[p.Symbol], p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"symbols": panel.Count(),
	}).Debug("Price panel loaded")
	return panel, nil
}
