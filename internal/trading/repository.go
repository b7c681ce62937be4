package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
)

// Repository persists trading lists to analytics.buy_candidates and
// analytics.sell_candidates. 두 리스트는 한 트랜잭션으로 함께 교체.
type Repository struct {
	db  *database.DB
	log *logger.Logger
}

// NewRepository creates a trading list repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// SaveAll replaces both candidate lists for the date atomically
func (r *Repository) SaveAll(ctx context.Context, lists *contracts.TradingLists) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM analytics.buy_candidates WHERE date = $1`, lists.Date); err != nil {
		return fmt.Errorf("delete buy candidates: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM analytics.sell_candidates WHERE date = $1`, lists.Date); err != nil {
		return fmt.Errorf("delete sell candidates: %w", err)
	}

	batch := &pgx.Batch{}
	for _, b := range lists.Buys {
		batch.Queue(`
			INSERT INTO analytics.buy_candidates
				(symbol, date, sector_code, rs_rating, buy_score,
				 entry_price, stop_loss, target_1, target_2, position_size_pct)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			b.Symbol, lists.Date, b.SectorCode, b.RSRating, b.BuyScore,
			b.EntryPrice, b.StopLoss, b.Target1, b.Target2, b.PositionSizePct)
	}
	for _, s := range lists.Sells {
		reasons := make([]string, len(s.Reasons))
		for i, reason := range s.Reasons {
			reasons[i] = string(reason)
		}
		batch.Queue(`
			INSERT INTO analytics.sell_candidates
				(symbol, date, sector_code, sell_reasons, exit_price, pnl_pct, hold_days)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.Symbol, lists.Date, s.SectorCode, reasons, s.ExitPrice, s.PnLPct, s.HoldDays)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(lists.Buys)+len(lists.Sells); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert candidate: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	r.log.WithFields(map[string]interface{}{
		"date":  lists.Date.Format("2006-01-02"),
		"buys":  len(lists.Buys),
		"sells": len(lists.Sells),
	}).Info("Trading lists saved")
	return nil
}

// GetByDate loads both lists for a date in display order
func (r *Repository) GetByDate(ctx context.Context, date time.Time) (*contracts.TradingLists, error) {
	lists := &contracts.TradingLists{Date: date}

	buyRows, err := r.db.Pool.Query(ctx, `
		SELECT symbol, sector_code, rs_rating, buy_score,
		       entry_price, stop_loss, target_1, target_2, position_size_pct
		FROM analytics.buy_candidates
		WHERE date = $1
		ORDER BY buy_score DESC, symbol`, date)
	if err != nil {
		return nil, fmt.Errorf("query buy candidates: %w", err)
	}
	defer buyRows.Close()

	for buyRows.Next() {
		var b contracts.BuyCandidate
		if err := buyRows.Scan(&b.Symbol, &b.SectorCode, &b.RSRating, &b.BuyScore,
			&b.EntryPrice, &b.StopLoss, &b.Target1, &b.Target2, &b.PositionSizePct); err != nil {
			return nil, fmt.Errorf("scan buy candidate: %w", err)
		}
		lists.Buys = append(lists.Buys, b)
	}
	if err := buyRows.Err(); err != nil {
		return nil, err
	}

	sellRows, err := r.db.Pool.Query(ctx, `
		SELECT symbol, sector_code, sell_reasons, exit_price, pnl_pct, hold_days
		FROM analytics.sell_candidates
		WHERE date = $1
		ORDER BY pnl_pct, symbol`, date)
	if err != nil {
		return nil, fmt.Errorf("query sell candidates: %w", err)
	}
	defer sellRows.Close()

	for sellRows.Next() {
		var s contracts.SellCandidate
		var reasons []string
		if err := sellRows.Scan(&s.Symbol, &s.SectorCode, &reasons, &s.ExitPrice, &s.PnLPct, &s.HoldDays); err != nil {
			return nil, fmt.Errorf("scan sell candidate: %w", err)
		}
		for _, reason := range reasons {
			s.Reasons = append(s.Reasons, contracts.SellReason(reason))
		}
		lists.Sells = append(lists.Sells, s)
	}
	return lists, sellRows.Err()
}
