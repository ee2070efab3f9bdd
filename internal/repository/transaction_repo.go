// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"finvest-api/internal/domain"
)

// TransactionRepository defines the interface for the append-only audit
// transaction records.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByUserID retrieves paginated transaction history for a
	// user, newest first, together with the total count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
}
