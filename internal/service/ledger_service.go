// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"finvest-api/internal/domain"
	"finvest-api/internal/market"
	"finvest-api/internal/notify"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"
	"finvest-api/pkg/db"

	"github.com/shopspring/decimal"
)

// LedgerService defines the business logic for the holding ledger. Every
// buy and sell updates the holding, the wallet and the audit transaction
// record together in one database transaction.
type LedgerService interface {
	// Buy merges a purchase into the user's position. A zero price means
	// "price at market": the current quote is fetched and used. Plan
	// purchases are funded from the wallet; stock purchases settle
	// externally and leave the wallet untouched.
	Buy(ctx context.Context, userID int64, symbol string, kind domain.AssetKind, quantity, price, fees decimal.Decimal) (*domain.Holding, *domain.Transaction, error)
	// Sell removes quantity from the position and credits the net
	// proceeds (quantity*price - fees) to the wallet. Selling the entire
	// position deletes the holding; the returned holding is nil then.
	Sell(ctx context.Context, userID int64, symbol string, quantity, price, fees decimal.Decimal) (*domain.Holding, *domain.Transaction, error)
	// ListHoldings returns all of a user's open positions.
	ListHoldings(ctx context.Context, userID int64) ([]domain.Holding, error)
	// GetHolding returns one position and its purchase history.
	GetHolding(ctx context.Context, userID int64, symbol string) (*domain.Holding, []domain.Lot, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	walletRepo  repository.WalletRepository
	holdingRepo repository.HoldingRepository
	txRepo      repository.TransactionRepository
	quoter      market.Quoter
	mailer      notify.Mailer
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	holdingRepo repository.HoldingRepository,
	txRepo repository.TransactionRepository,
	quoter market.Quoter,
	mailer notify.Mailer,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		holdingRepo: holdingRepo,
		txRepo:      txRepo,
		quoter:      quoter,
		mailer:      mailer,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
	}
}

// Buy merges a purchase into the user's position.
func (s *ledgerService) Buy(ctx context.Context, userID int64, symbol string, kind domain.AssetKind, quantity, price, fees decimal.Decimal) (*domain.Holding, *domain.Transaction, error) {
	if symbol == "" || quantity.LessThanOrEqual(decimal.Zero) || fees.IsNegative() {
		return nil, nil, util.ErrInvalidInput
	}
	if kind != domain.AssetKindStock && kind != domain.AssetKindPlan {
		return nil, nil, util.ErrInvalidInput
	}

	// Price at market when the caller did not supply one.
	if price.IsZero() {
		quoted, err := s.quoter.Quote(ctx, symbol)
		if err != nil {
			return nil, nil, fmt.Errorf("buy: failed to quote %s: %w", symbol, err)
		}
		price = quoted
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidInput
	}

	cost := quantity.Mul(price).Add(fees)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("buy: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("buy: transaction controller does not implement DBExecutor")
	}

	// Plan purchases are funded from the wallet. The row lock makes the
	// balance check race-free against concurrent debits.
	if kind == domain.AssetKindPlan {
		wallet, err := s.walletRepo.GetWalletByUserIDForUpdate(ctx, txExecutor, userID)
		if err != nil {
			if errors.Is(err, util.ErrNotFound) {
				return nil, nil, util.ErrInsufficientFunds
			}
			return nil, nil, fmt.Errorf("buy: failed to lock wallet for user %d: %w", userID, err)
		}
		if wallet.Balance.LessThan(cost) {
			return nil, nil, util.ErrInsufficientFunds
		}
		if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, cost.Neg()); err != nil {
			return nil, nil, fmt.Errorf("buy: failed to debit wallet: %w", err)
		}
	}

	holding, err := s.holdingRepo.GetHoldingForUpdate(ctx, txExecutor, userID, symbol)
	switch {
	case err == nil:
		holding.ApplyBuy(quantity, price, fees)
		if err := s.holdingRepo.UpdateHolding(ctx, txExecutor, holding); err != nil {
			return nil, nil, fmt.Errorf("buy: failed to update holding: %w", err)
		}
	case errors.Is(err, util.ErrNotFound):
		holding = domain.NewHolding(userID, symbol, kind, quantity, price, fees)
		if err := s.holdingRepo.CreateHolding(ctx, txExecutor, holding); err != nil {
			return nil, nil, fmt.Errorf("buy: failed to create holding: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("buy: failed to get holding: %w", err)
	}

	lot := domain.NewLot(userID, symbol, quantity, price, fees)
	if err := s.holdingRepo.CreateLot(ctx, txExecutor, lot); err != nil {
		return nil, nil, fmt.Errorf("buy: failed to record lot: %w", err)
	}

	record := domain.NewTradeTransaction(userID, domain.TransactionTypeBuy, symbol, quantity, price, fees, cost.Neg())
	if err := s.txRepo.CreateTransaction(ctx, txExecutor, record); err != nil {
		return nil, nil, fmt.Errorf("buy: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("buy: failed to commit transaction: %w", err)
	}

	s.notifyTrade(ctx, userID, "Purchase confirmation",
		fmt.Sprintf("Your purchase of %s %s at %s USD is complete.", quantity.String(), symbol, price.String()))

	return holding, record, nil
}

// Sell removes quantity from the position and credits the proceeds.
func (s *ledgerService) Sell(ctx context.Context, userID int64, symbol string, quantity, price, fees decimal.Decimal) (*domain.Holding, *domain.Transaction, error) {
	if symbol == "" || quantity.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) || fees.IsNegative() {
		return nil, nil, util.ErrInvalidInput
	}

	netAmount := quantity.Mul(price).Sub(fees)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("sell: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("sell: transaction controller does not implement DBExecutor")
	}

	holding, err := s.holdingRepo.GetHoldingForUpdate(ctx, txExecutor, userID, symbol)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, nil, util.ErrHoldingNotFound
		}
		return nil, nil, fmt.Errorf("sell: failed to get holding: %w", err)
	}
	if holding.Quantity.LessThan(quantity) {
		return nil, nil, util.ErrInsufficientShares
	}

	wallet, err := ensureWallet(ctx, txExecutor, s.walletRepo, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("sell: failed to ensure wallet: %w", err)
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, netAmount); err != nil {
		return nil, nil, fmt.Errorf("sell: failed to credit wallet: %w", err)
	}

	_, closed := holding.ApplySell(quantity)
	if closed {
		if err := s.holdingRepo.DeleteHolding(ctx, txExecutor, holding.ID); err != nil {
			return nil, nil, fmt.Errorf("sell: failed to delete closed holding: %w", err)
		}
		holding = nil
	} else {
		if err := s.holdingRepo.UpdateHolding(ctx, txExecutor, holding); err != nil {
			return nil, nil, fmt.Errorf("sell: failed to update holding: %w", err)
		}
	}

	record := domain.NewTradeTransaction(userID, domain.TransactionTypeSell, symbol, quantity, price, fees, netAmount)
	if err := s.txRepo.CreateTransaction(ctx, txExecutor, record); err != nil {
		return nil, nil, fmt.Errorf("sell: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("sell: failed to commit transaction: %w", err)
	}

	s.notifyTrade(ctx, userID, "Sale confirmation",
		fmt.Sprintf("Your sale of %s %s at %s USD is complete. %s USD was credited to your wallet.",
			quantity.String(), symbol, price.String(), netAmount.String()))

	return holding, record, nil
}

// ListHoldings returns all of a user's open positions.
func (s *ledgerService) ListHoldings(ctx context.Context, userID int64) ([]domain.Holding, error) {
	holdings, err := s.holdingRepo.ListHoldingsByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return holdings, nil
}

// GetHolding returns one position and its purchase history.
func (s *ledgerService) GetHolding(ctx context.Context, userID int64, symbol string) (*domain.Holding, []domain.Lot, error) {
	holding, err := s.holdingRepo.GetHolding(ctx, s.dbExecutor, userID, symbol)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, nil, util.ErrHoldingNotFound
		}
		return nil, nil, fmt.Errorf("get holding: %w", err)
	}
	lots, err := s.holdingRepo.ListLots(ctx, s.dbExecutor, userID, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("get holding: failed to list lots: %w", err)
	}
	return holding, lots, nil
}

// notifyTrade enqueues a confirmation email. A missing user or disabled
// mailer never fails the trade.
func (s *ledgerService) notifyTrade(ctx context.Context, userID int64, subject, body string) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return
	}
	s.mailer.Enqueue(notify.Email{
		To:      user.Email,
		Subject: subject,
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", user.FullName, body),
	})
}
