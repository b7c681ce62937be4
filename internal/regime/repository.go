package regime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
)

// Repository persists regime snapshots to analytics.regime_snapshots.
// 날짜당 한 행: 재실행 시 해당 날짜 행을 덮어쓴다 (append-with-dedup).
type Repository struct {
	db  *database.DB
	log *logger.Logger
}

// NewRepository creates a regime repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// Save upserts the snapshot for its date
func (r *Repository) Save(ctx context.Context, s *contracts.RegimeSnapshot) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO analytics.regime_snapshots
			(date, regime, regime_score, risk_level,
			 valuation_score, breadth_score, volume_score, volatility_score, momentum_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (date) DO UPDATE SET
			regime = EXCLUDED.regime,
			regime_score = EXCLUDED.regime_score,
			risk_level = EXCLUDED.risk_level,
			valuation_score = EXCLUDED.valuation_score,
			breadth_score = EXCLUDED.breadth_score,
			volume_score = EXCLUDED.volume_score,
			volatility_score = EXCLUDED.volatility_score,
			momentum_score = EXCLUDED.momentum_score`,
		s.Date, string(s.Regime), s.RegimeScore, string(s.RiskLevel),
		s.Components.Valuation, s.Components.Breadth, s.Components.Volume,
		s.Components.Volatility, s.Components.Momentum)
	if err != nil {
		return fmt.Errorf("upsert regime snapshot: %w", err)
	}

	r.log.WithField("date", s.Date.Format("2006-01-02")).Info("Regime snapshot saved")
	return nil
}

// GetByDate loads the snapshot for one date; returns nil when absent
func (r *Repository) GetByDate(ctx context.Context, date time.Time) (*contracts.RegimeSnapshot, error) {
	s := &contracts.RegimeSnapshot{}
	var regime, riskLevel string

	err := r.db.Pool.QueryRow(ctx, `
		SELECT date, regime, regime_score, risk_level,
		       valuation_score, breadth_score, volume_score, volatility_score, momentum_score
		FROM analytics.regime_snapshots
		WHERE date = $1`, date).Scan(
		&s.Date, &regime, &s.RegimeScore, &riskLevel,
		&s.Components.Valuation, &s.Components.Breadth, &s.Components.Volume,
		&s.Components.Volatility, &s.Components.Momentum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query regime snapshot: %w", err)
	}

	s.Regime = contracts.Regime(regime)
	s.RiskLevel = contracts.RiskLevel(riskLevel)
	return s, nil
}

// GetRecent loads the most recent snapshots, descending by date
func (r *Repository) GetRecent(ctx context.Context, limit int) ([]*contracts.RegimeSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT date, regime, regime_score, risk_level,
		       valuation_score, breadth_score, volume_score, volatility_score, momentum_score
		FROM analytics.regime_snapshots
		ORDER BY date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query regime snapshots: %w", err)
	}
	defer rows.Close()

	var out []*contracts.RegimeSnapshot
	for rows.Next() {
		s := &contracts.RegimeSnapshot{}
		var regime, riskLevel string
		if err := rows.Scan(&s.Date, &regime, &s.RegimeScore, &riskLevel,
			&s.Components.Valuation, &s.Components.Breadth, &s.Components.Volume,
			&s.Components.Volatility, &s.Components.Momentum); err != nil {
			return nil, fmt.Errorf("scan regime snapshot: %w", err)
		}
		s.Regime = contracts.Regime(regime)
		s.RiskLevel = contracts.RiskLevel(riskLevel)
		out = append(out, s)
	}
	return out, rows.Err()
}
