package rsrating

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
)

// Repository persists RS Rating snapshots to analytics.rs_ratings.
// 같은 날짜 재실행은 delete-then-insert 한 트랜잭션으로 멱등 처리.
type Repository struct {
	db  *database.DB
	log *logger.Logger
}

// NewRepository creates an RS Rating repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// SaveAll replaces the rating rows for the set's date atomically
func (r *Repository) SaveAll(ctx context.Context, set *contracts.RatingSet) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM analytics.rs_ratings WHERE date = $1`, set.Date); err != nil {
		return fmt.Errorf("delete existing ratings: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rec := range set.Ratings {
		batch.Queue(`
			INSERT INTO analytics.rs_ratings
				(symbol, date, rs_1m, rs_3m, rs_6m, rs_9m, rs_12m,
				 rs_score, rs_rating_raw, penalty, rs_rating)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rec.Symbol, rec.Date, rec.RS1M, rec.RS3M, rec.RS6M, rec.RS9M, rec.RS12M,
			rec.RSScore, rec.RSRatingRaw, rec.Penalty, rec.RSRating)
	}

	results := tx.SendBatch(ctx, batch)
	for range set.Ratings {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert rating: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	r.log.WithFields(map[string]interface{}{
		"date": set.Date.Format("2006-01-02"),
		"rows": len(set.Ratings),
	}).Info("RS Ratings saved")
	return nil
}

// LatestDate returns the most recent run date with ratings; zero when none
func (r *Repository) LatestDate(ctx context.Context) (time.Time, error) {
	var date *time.Time
	err := r.db.Pool.QueryRow(ctx, `SELECT max(date) FROM analytics.rs_ratings`).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest date: %w", err)
	}
	if date == nil {
		return time.Time{}, nil
	}
	return *date, nil
}

// GetByDate loads all rating rows for a date, sorted by rs_rating descending
func (r *Repository) GetByDate(ctx context.Context, date time.Time) ([]*contracts.RSRatingRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT symbol, date, rs_1m, rs_3m, rs_6m, rs_9m, rs_12m,
		       rs_score, rs_rating_raw, penalty, rs_rating
		FROM analytics.rs_ratings
		WHERE date = $1
		ORDER BY rs_rating DESC, symbol`, date)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var out []*contracts.RSRatingRecord
	for rows.Next() {
		rec := &contracts.RSRatingRecord{}
		if err := rows.Scan(&rec.Symbol, &rec.Date, &rec.RS1M, &rec.RS3M, &rec.RS6M,
			&rec.RS9M, &rec.RS12M, &rec.RSScore, &rec.RSRatingRaw, &rec.Penalty, &rec.RSRating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetBySymbol loads the most recent rating rows for one symbol
func (r *Repository) GetBySymbol(ctx context.Context, symbol string, limit int) ([]*contracts.RSRatingRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT symbol, date, rs_1m, rs_3m, rs_6m, rs_9m, rs_12m,
		       rs_score, rs_rating_raw, penalty, rs_rating
		FROM analytics.rs_ratings
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query symbol ratings: %w", err)
	}
	defer rows.Close()

	var out []*contracts.RSRatingRecord
	for rows.Next() {
		rec := &contracts.RSRatingRecord{}
		if err := rows.Scan(&rec.Symbol, &rec.Date, &rec.RS1M, &rec.RS3M, &rec.RS6M,
			&rec.RS9M, &rec.RS12M, &rec.RSScore, &rec.RSRatingRaw, &rec.Penalty, &rec.RSRating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
