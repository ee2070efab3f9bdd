// internal/repository/postgres/holding_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"finvest-api/internal/domain"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"

	"github.com/jmoiron/sqlx"
)

// HoldingRepository implements repository.HoldingRepository for PostgreSQL.
type HoldingRepository struct{}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository(db *sqlx.DB) repository.HoldingRepository {
	return &HoldingRepository{}
}

const holdingColumns = `id, user_id, symbol, kind, quantity, avg_purchase_price, total_invested, created_at, updated_at`

// CreateHolding inserts a new holding row. (user_id, symbol) carries a
// unique index, so a duplicate insert surfaces as ErrDuplicateEntry.
func (r *HoldingRepository) CreateHolding(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	query := `INSERT INTO holdings (user_id, symbol, kind, quantity, avg_purchase_price, total_invested, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		holding.UserID, holding.Symbol, holding.Kind,
		holding.Quantity, holding.AvgPurchasePrice, holding.TotalInvested,
		holding.CreatedAt, holding.UpdatedAt,
	).Scan(&holding.ID)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	return nil
}

// GetHolding retrieves a holding by (userID, symbol).
func (r *HoldingRepository) GetHolding(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) (*domain.Holding, error) {
	var holding domain.Holding
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND symbol = $2`
	err := q.GetContext(ctx, &holding, query, userID, symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get holding %s for user %d: %w", symbol, userID, err)
	}
	return &holding, nil
}

// GetHoldingForUpdate retrieves a holding by (userID, symbol) with a row
// lock so concurrent buy/sell on the same position serialize. The caller
// must be inside a transaction.
func (r *HoldingRepository) GetHoldingForUpdate(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) (*domain.Holding, error) {
	var holding domain.Holding
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND symbol = $2 FOR UPDATE`
	err := q.GetContext(ctx, &holding, query, userID, symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock holding %s for user %d: %w", symbol, userID, err)
	}
	return &holding, nil
}

// UpdateHolding persists the recomputed position.
func (r *HoldingRepository) UpdateHolding(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	query := `UPDATE holdings SET quantity = $1, avg_purchase_price = $2, total_invested = $3, updated_at = $4 WHERE id = $5`
	result, err := q.ExecContext(ctx, query,
		holding.Quantity, holding.AvgPurchasePrice, holding.TotalInvested, holding.UpdatedAt, holding.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding %d: %w", holding.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating holding %d: %w", holding.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating holding %d", holding.ID)
	}
	return nil
}

// DeleteHolding removes a closed position.
func (r *HoldingRepository) DeleteHolding(ctx context.Context, q repository.DBExecutor, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete holding %d: %w", id, err)
	}
	return nil
}

// ListHoldingsByUserID returns all of a user's open positions.
func (r *HoldingRepository) ListHoldingsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Holding, error) {
	holdings := []domain.Holding{}
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 ORDER BY symbol`
	if err := q.SelectContext(ctx, &holdings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list holdings for user %d: %w", userID, err)
	}
	return holdings, nil
}

// CreateLot appends one purchase-history entry.
func (r *HoldingRepository) CreateLot(ctx context.Context, q repository.DBExecutor, lot *domain.Lot) error {
	query := `INSERT INTO holding_lots (user_id, symbol, quantity, price, fees, purchased_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		lot.UserID, lot.Symbol, lot.Quantity, lot.Price, lot.Fees, lot.PurchasedAt,
	).Scan(&lot.ID)
	if err != nil {
		return fmt.Errorf("failed to create lot: %w", err)
	}
	return nil
}

// ListLots returns the purchase history for (userID, symbol), oldest first.
func (r *HoldingRepository) ListLots(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) ([]domain.Lot, error) {
	lots := []domain.Lot{}
	query := `SELECT id, user_id, symbol, quantity, price, fees, purchased_at
              FROM holding_lots WHERE user_id = $1 AND symbol = $2 ORDER BY purchased_at`
	if err := q.SelectContext(ctx, &lots, query, userID, symbol); err != nil {
		return nil, fmt.Errorf("failed to list lots for user %d symbol %s: %w", userID, symbol, err)
	}
	return lots, nil
}
