// internal/service/wallet_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"finvest-api/internal/domain"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"
)

// WalletService defines read-side wallet business logic. All wallet
// mutations happen inside the ledger, funding and order services as part
// of their database transactions.
type WalletService interface {
	// GetBalance returns the user's wallet. A user who never received a
	// credit sees a zero balance.
	GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error)
	// GetTransactionHistory returns paginated audit records, newest first.
	GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	dbExecutor repository.DBExecutor
	walletRepo repository.WalletRepository
	txRepo     repository.TransactionRepository
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	txRepo repository.TransactionRepository,
) WalletService {
	return &walletService{
		dbExecutor: dbExecutor,
		walletRepo: walletRepo,
		txRepo:     txRepo,
	}
}

// GetBalance returns the user's wallet, or an unsaved zero-balance wallet
// when none exists yet. Wallet rows are only written on first credit.
func (s *walletService) GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return domain.NewWallet(userID), nil
		}
		return nil, fmt.Errorf("get balance: failed to get wallet for user %d: %w", userID, err)
	}
	return wallet, nil
}

// GetTransactionHistory retrieves a paginated list of a user's audit records.
func (s *walletService) GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions, totalCount, err := s.txRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}

// ensureWallet returns the user's wallet row, creating it with a zero
// balance on first need. Inside a transaction the caller should already
// hold (or not need) the row lock: a freshly created wallet row is
// invisible to other transactions until commit.
func ensureWallet(ctx context.Context, q repository.DBExecutor, walletRepo repository.WalletRepository, userID int64) (*domain.Wallet, error) {
	wallet, err := walletRepo.GetWalletByUserIDForUpdate(ctx, q, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}
	wallet = domain.NewWallet(userID)
	if err := walletRepo.CreateWallet(ctx, q, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}
