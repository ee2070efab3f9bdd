// internal/service/funding_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"finvest-api/internal/domain"
	"finvest-api/internal/notify"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"
	"finvest-api/pkg/db"

	"github.com/shopspring/decimal"
)

// FundingService defines the business logic for deposits, withdrawals and
// loans. Approvals credit or refund the wallet exactly once: the status
// transition is a conditional update out of PENDING, so a repeated
// approval call applies nothing.
type FundingService interface {
	RequestDeposit(ctx context.Context, userID int64, amount decimal.Decimal, method string) (*domain.Deposit, error)
	// SetDepositStatus approves or rejects a deposit. Approval credits the
	// wallet. Repeating the call is a no-op returning the current record.
	SetDepositStatus(ctx context.Context, id int64, status domain.FundingStatus) (*domain.Deposit, error)
	ListDeposits(ctx context.Context, userID int64, limit, offset int) ([]domain.Deposit, int64, error)

	// RequestWithdrawal debits the wallet immediately; a later rejection
	// refunds it. Requires an approved KYC record.
	RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, destination string) (*domain.Withdrawal, error)
	SetWithdrawalStatus(ctx context.Context, id int64, status domain.FundingStatus) (*domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]domain.Withdrawal, int64, error)

	RequestLoan(ctx context.Context, userID int64, amount decimal.Decimal, termMonths int, purpose string) (*domain.Loan, error)
	// SetLoanStatus approves or rejects a loan. Approval credits the
	// wallet with the principal and opens the outstanding balance.
	SetLoanStatus(ctx context.Context, id int64, status domain.FundingStatus) (*domain.Loan, error)
	// RepayLoan debits the wallet and reduces the outstanding balance.
	RepayLoan(ctx context.Context, userID, loanID int64, amount decimal.Decimal) (*domain.Loan, error)
	ListLoans(ctx context.Context, userID int64, limit, offset int) ([]domain.Loan, int64, error)
}

// fundingService implements the FundingService interface.
type fundingService struct {
	dbBeginner     db.DBTxBeginner
	dbExecutor     repository.DBExecutor
	userRepo       repository.UserRepository
	walletRepo     repository.WalletRepository
	txRepo         repository.TransactionRepository
	depositRepo    repository.DepositRepository
	withdrawalRepo repository.WithdrawalRepository
	loanRepo       repository.LoanRepository
	kycRepo        repository.KycRepository
	mailer         notify.Mailer
	beginTx        db.BeginTxFunc
	commitTx       db.CommitTxFunc
	rollbackTx     db.RollbackTxFunc
}

// NewFundingService creates a new instance of FundingService.
func NewFundingService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	txRepo repository.TransactionRepository,
	depositRepo repository.DepositRepository,
	withdrawalRepo repository.WithdrawalRepository,
	loanRepo repository.LoanRepository,
	kycRepo repository.KycRepository,
	mailer notify.Mailer,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) FundingService {
	return &fundingService{
		dbBeginner:     dbBeginner,
		dbExecutor:     dbExecutor,
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		txRepo:         txRepo,
		depositRepo:    depositRepo,
		withdrawalRepo: withdrawalRepo,
		loanRepo:       loanRepo,
		kycRepo:        kycRepo,
		mailer:         mailer,
		beginTx:        beginTx,
		commitTx:       commitTx,
		rollbackTx:     rollbackTx,
	}
}

// RequestDeposit records a pending deposit request.
func (s *fundingService) RequestDeposit(ctx context.Context, userID int64, amount decimal.Decimal, method string) (*domain.Deposit, error) {
	if amount.LessThanOrEqual(decimal.Zero) || method == "" {
		return nil, util.ErrInvalidInput
	}
	deposit := domain.NewDeposit(userID, amount, method)
	if err := s.depositRepo.CreateDeposit(ctx, s.dbExecutor, deposit); err != nil {
		return nil, fmt.Errorf("request deposit: %w", err)
	}
	s.notifyUser(ctx, userID, "Deposit received",
		fmt.Sprintf("Your deposit request of %s USD is pending review.", amount.String()))
	return deposit, nil
}

// SetDepositStatus approves or rejects a deposit. The conditional status
// update guards the credit: only the call that actually moves the record
// out of PENDING touches the wallet.
func (s *fundingService) SetDepositStatus(ctx context.Context, id int64, status domain.FundingStatus) (*domain.Deposit, error) {
	if status != domain.FundingStatusApproved && status != domain.FundingStatusRejected {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("set deposit status: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("set deposit status: transaction controller does not implement DBExecutor")
	}

	deposit, err := s.depositRepo.GetDepositByID(ctx, txExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("set deposit status: failed to get deposit %d: %w", id, err)
	}

	applied, err := s.depositRepo.SetDepositStatus(ctx, txExecutor, id, status)
	if err != nil {
		return nil, fmt.Errorf("set deposit status: %w", err)
	}
	if !applied {
		// Already settled; the wallet was credited (or not) by the call
		// that won. Return the current record unchanged.
		return deposit, nil
	}
	deposit.Status = status

	if status == domain.FundingStatusApproved {
		wallet, err := ensureWallet(ctx, txExecutor, s.walletRepo, deposit.UserID)
		if err != nil {
			return nil, fmt.Errorf("set deposit status: failed to ensure wallet: %w", err)
		}
		if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, deposit.Amount); err != nil {
			return nil, fmt.Errorf("set deposit status: failed to credit wallet: %w", err)
		}
		record := domain.NewCashTransaction(deposit.UserID, domain.TransactionTypeDeposit, deposit.Amount, nil)
		if err := s.txRepo.CreateTransaction(ctx, txExecutor, record); err != nil {
			return nil, fmt.Errorf("set deposit status: failed to create transaction: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("set deposit status: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, deposit.UserID, "Deposit "+string(status),
		fmt.Sprintf("Your deposit of %s USD was %s.", deposit.Amount.String(), status))
	return deposit, nil
}

// ListDeposits retrieves a user's deposit requests.
func (s *fundingService) ListDeposits(ctx context.Context, userID int64, limit, offset int) ([]domain.Deposit, int64, error) {
	return s.depositRepo.ListDepositsByUserID(ctx, s.dbExecutor, userID, limit, offset)
}

// RequestWithdrawal debits the wallet and records a pending withdrawal.
func (s *fundingService) RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, destination string) (*domain.Withdrawal, error) {
	if amount.LessThanOrEqual(decimal.Zero) || destination == "" {
		return nil, util.ErrInvalidInput
	}

	kyc, err := s.kycRepo.GetKycRecordByUserID(ctx, s.dbExecutor, userID)
	if err != nil || kyc.Status != domain.KycStatusApproved {
		return nil, util.ErrKycRequired
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("request withdrawal: transaction controller does not implement DBExecutor")
	}

	wallet, err := s.walletRepo.GetWalletByUserIDForUpdate(ctx, txExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("request withdrawal: failed to lock wallet: %w", err)
	}
	if wallet.Balance.LessThan(amount) {
		return nil, util.ErrInsufficientFunds
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, amount.Neg()); err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to debit wallet: %w", err)
	}

	withdrawal := domain.NewWithdrawal(userID, amount, destination)
	if err := s.withdrawalRepo.CreateWithdrawal(ctx, txExecutor, withdrawal); err != nil {
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}

	record := domain.NewCashTransaction(userID, domain.TransactionTypeWithdrawal, amount, nil)
	if err := s.txRepo.CreateTransaction(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, userID, "Withdrawal requested",
		fmt.Sprintf("Your withdrawal of %s USD is pending review.", amount.String()))
	return withdrawal, nil
}

// SetWithdrawalStatus approves or rejects a withdrawal. A rejection
// refunds the amount debited when the request was created.
func (s *fundingService) SetWithdrawalStatus(ctx context.Context, id int64, status domain.FundingStatus) (*domain.Withdrawal, error) {
	if status != domain.FundingStatusApproved && status != domain.FundingStatusRejected {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("set withdrawal status: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("set withdrawal status: transaction controller does not implement DBExecutor")
	}

	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(ctx, txExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("set withdrawal status: failed to get withdrawal %d: %w", id, err)
	}

	applied, err := s.withdrawalRepo.SetWithdrawalStatus(ctx, txExecutor, id, status)
	if err != nil {
		return nil, fmt.Errorf("set withdrawal status: %w", err)
	}
	if !applied {
		return withdrawal, nil
	}
	withdrawal.Status = status

	if status == domain.FundingStatusRejected {
		wallet, err := ensureWallet(ctx, txExecutor, s.walletRepo, withdrawal.UserID)
		if err != nil {
			return nil, fmt.Errorf("set withdrawal status: failed to ensure wallet: %w", err)
		}
		if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, withdrawal.Amount); err != nil {
			return nil, fmt.Errorf("set withdrawal status: failed to refund wallet: %w", err)
		}
		description := "withdrawal refund"
		record := domain.NewCashTransaction(withdrawal.UserID, domain.TransactionTypeDeposit, withdrawal.Amount, &description)
		if err := s.txRepo.CreateTransaction(ctx, txExecutor, record); err != nil {
			return nil, fmt.Errorf("set withdrawal status: failed to create refund transaction: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("set withdrawal status: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, withdrawal.UserID, "Withdrawal "+string(status),
		fmt.Sprintf("Your withdrawal of %s USD was %s.", withdrawal.Amount.String(), status))
	return withdrawal, nil
}

// ListWithdrawals retrieves a user's withdrawal requests.
func (s *fundingService) ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]domain.Withdrawal, int64, error) {
	return s.withdrawalRepo.ListWithdrawalsByUserID(ctx, s.dbExecutor, userID, limit, offset)
}

// RequestLoan records a pending loan request.
func (s *fundingService) RequestLoan(ctx context.Context, userID int64, amount decimal.Decimal, termMonths int, purpose string) (*domain.Loan, error) {
	if amount.LessThanOrEqual(decimal.Zero) || termMonths <= 0 {
		return nil, util.ErrInvalidInput
	}
	loan := domain.NewLoan(userID, amount, termMonths, purpose)
	if err := s.loanRepo.CreateLoan(ctx, s.dbExecutor, loan); err != nil {
		return nil, fmt.Errorf("request loan: %w", err)
	}
	s.notifyUser(ctx, userID, "Loan application received",
		fmt.Sprintf("Your loan application for %s USD is pending review.", amount.String()))
	return loan, nil
}

// SetLoanStatus approves or rejects a loan request. Approval disburses
// the principal into the wallet exactly once.
func (s *fundingService) SetLoanStatus(ctx context.Context, id int64, status domain.FundingStatus) (*domain.Loan, error) {
	if status != domain.FundingStatusApproved && status != domain.FundingStatusRejected {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("set loan status: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("set loan status: transaction controller does not implement DBExecutor")
	}

	loan, err := s.loanRepo.GetLoanByID(ctx, txExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("set loan status: failed to get loan %d: %w", id, err)
	}

	outstanding := decimal.Zero
	if status == domain.FundingStatusApproved {
		outstanding = loan.Amount
	}
	applied, err := s.loanRepo.SetLoanStatus(ctx, txExecutor, id, status, outstanding)
	if err != nil {
		return nil, fmt.Errorf("set loan status: %w", err)
	}
	if !applied {
		return loan, nil
	}
	loan.Status = status
	loan.Outstanding = outstanding

	if status == domain.FundingStatusApproved {
		wallet, err := ensureWallet(ctx, txExecutor, s.walletRepo, loan.UserID)
		if err != nil {
			return nil, fmt.Errorf("set loan status: failed to ensure wallet: %w", err)
		}
		if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, loan.Amount); err != nil {
			return nil, fmt.Errorf("set loan status: failed to credit wallet: %w", err)
		}
		record := domain.NewCashTransaction(loan.UserID, domain.TransactionTypeLoan, loan.Amount, nil)
		if err := s.txRepo.CreateTransaction(ctx, txExecutor, record); err != nil {
			return nil, fmt.Errorf("set loan status: failed to create transaction: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("set loan status: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, loan.UserID, "Loan "+string(status),
		fmt.Sprintf("Your loan application for %s USD was %s.", loan.Amount.String(), status))
	return loan, nil
}

// RepayLoan debits the wallet and reduces the loan's outstanding balance.
func (s *fundingService) RepayLoan(ctx context.Context, userID, loanID int64, amount decimal.Decimal) (*domain.Loan, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("repay loan: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("repay loan: transaction controller does not implement DBExecutor")
	}

	loan, err := s.loanRepo.GetLoanByIDForUpdate(ctx, txExecutor, loanID)
	if err != nil {
		return nil, fmt.Errorf("repay loan: failed to get loan %d: %w", loanID, err)
	}
	if loan.UserID != userID {
		return nil, util.ErrForbidden
	}
	if loan.Status != domain.FundingStatusApproved || amount.GreaterThan(loan.Outstanding) {
		return nil, util.ErrInvalidInput
	}

	wallet, err := s.walletRepo.GetWalletByUserIDForUpdate(ctx, txExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("repay loan: failed to lock wallet: %w", err)
	}
	if wallet.Balance.LessThan(amount) {
		return nil, util.ErrInsufficientFunds
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, amount.Neg()); err != nil {
		return nil, fmt.Errorf("repay loan: failed to debit wallet: %w", err)
	}

	loan.Outstanding = loan.Outstanding.Sub(amount)
	if err := s.loanRepo.UpdateLoanOutstanding(ctx, txExecutor, loanID, loan.Outstanding); err != nil {
		return nil, fmt.Errorf("repay loan: failed to update outstanding: %w", err)
	}

	record := domain.NewCashTransaction(userID, domain.TransactionTypeRepayment, amount, nil)
	if err := s.txRepo.CreateTransaction(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("repay loan: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("repay loan: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, userID, "Repayment received",
		fmt.Sprintf("Your repayment of %s USD was applied. Outstanding balance: %s USD.",
			amount.String(), loan.Outstanding.String()))
	return loan, nil
}

// ListLoans retrieves a user's loans.
func (s *fundingService) ListLoans(ctx context.Context, userID int64, limit, offset int) ([]domain.Loan, int64, error) {
	return s.loanRepo.ListLoansByUserID(ctx, s.dbExecutor, userID, limit, offset)
}

// notifyUser enqueues a status email; failures never affect the operation.
func (s *fundingService) notifyUser(ctx context.Context, userID int64, subject, body string) {
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
