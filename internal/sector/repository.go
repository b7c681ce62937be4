package sector

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
)

// Repository persists sector rankings to analytics.sector_rankings
// with delete-then-insert per-date semantics.
type Repository struct {
	db  *database.DB
	log *logger.Logger
}

// NewRepository creates a sector ranking repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// SaveAll replaces the ranking rows for the date atomically
func (r *Repository) SaveAll(ctx context.Context, date time.Time, rows []*contracts.SectorRankingRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM analytics.sector_rankings WHERE date = $1`, date); err != nil {
		return fmt.Errorf("delete existing rankings: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO analytics.sector_rankings
				(sector_code, date, score, rs_score, money_flow_score,
				 breadth_score, momentum_score, trend, rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			row.SectorCode, row.Date, row.Score, row.RSScore, row.MoneyFlowScore,
			row.BreadthScore, row.MomentumScore, string(row.Trend), row.Rank)
	}

	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert ranking: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	r.log.WithFields(map[string]interface{}{
		"date": date.Format("2006-01-02"),
		"rows": len(rows),
	}).Info("Sector rankings saved")
	return nil
}

// GetByDate loads the ranking rows for a date, ordered by rank
func (r *Repository) GetByDate(ctx context.Context, date time.Time) ([]*contracts.SectorRankingRow, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT sector_code, date, score, rs_score, money_flow_score,
		       breadth_score, momentum_score, trend, rank
		FROM analytics.sector_rankings
		WHERE date = $1
		ORDER BY rank, sector_code`, date)
	if err != nil {
		return nil, fmt.Errorf("query rankings: %w", err)
	}
	defer rows.Close()

	var out []*contracts.SectorRankingRow
	for rows.Next() {
		row := &contracts.SectorRankingRow{}
		var trend string
		if err := rows.Scan(&row.SectorCode, &row.Date, &row.Score, &row.RSScore,
			&row.MoneyFlowScore, &row.BreadthScore, &row.MomentumScore, &trend, &row.Rank); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		row.Trend = contracts.SectorTrend(trend)
		out = append(out, row)
	}
	return out, rows.Err()
}
