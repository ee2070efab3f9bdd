// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"finvest-api/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet using the provided DBExecutor.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves a user's wallet.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// GetWalletByUserIDForUpdate retrieves a user's wallet with a row lock.
	// Must be called inside a transaction; concurrent debits serialize on
	// the lock so balance precondition checks are race-free.
	GetWalletByUserIDForUpdate(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// UpdateWalletBalance adjusts the balance of a wallet by amount
	// (negative for debits).
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID int64, amount decimal.Decimal) error
}
