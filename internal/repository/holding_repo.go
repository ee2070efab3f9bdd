// internal/repository/holding_repo.go
package repository

import (
	"context"

	"finvest-api/internal/domain"
)

// HoldingRepository defines the interface for holding-ledger data
// operations. Read-modify-write sequences on a holding must use the
// ForUpdate variant inside a transaction.
type HoldingRepository interface {
	// CreateHolding inserts a new holding row.
	CreateHolding(ctx context.Context, q DBExecutor, holding *domain.Holding) error
	// GetHolding retrieves a holding by (userID, symbol).
	GetHolding(ctx context.Context, q DBExecutor, userID int64, symbol string) (*domain.Holding, error)
	// GetHoldingForUpdate retrieves a holding by (userID, symbol) with a
	// row lock. Must be called inside a transaction.
	GetHoldingForUpdate(ctx context.Context, q DBExecutor, userID int64, symbol string) (*domain.Holding, error)
	// UpdateHolding persists recomputed quantity, average price and cost basis.
	UpdateHolding(ctx context.Context, q DBExecutor, holding *domain.Holding) error
	// DeleteHolding removes a closed position.
	DeleteHolding(ctx context.Context, q DBExecutor, id int64) error
	// ListHoldingsByUserID returns all of a user's open positions.
	ListHoldingsByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.Holding, error)
	// CreateLot appends one purchase-history entry.
	CreateLot(ctx context.Context, q DBExecutor, lot *domain.Lot) error
	// ListLots returns the purchase history for (userID, symbol), oldest first.
	ListLots(ctx context.Context, q DBExecutor, userID int64, symbol string) ([]domain.Lot, error)
}
