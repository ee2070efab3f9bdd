// internal/repository/funding_repo.go
package repository

import (
	"context"

	"finvest-api/internal/domain"

	"github.com/shopspring/decimal"
)

// DepositRepository defines the interface for deposit requests.
type DepositRepository interface {
	CreateDeposit(ctx context.Context, q DBExecutor, deposit *domain.Deposit) error
	GetDepositByID(ctx context.Context, q DBExecutor, id int64) (*domain.Deposit, error)
	// SetDepositStatus moves a deposit out of PENDING. It returns false
	// when the deposit was no longer pending, which makes approval
	// idempotent: a repeated approval applies nothing.
	SetDepositStatus(ctx context.Context, q DBExecutor, id int64, status domain.FundingStatus) (bool, error)
	ListDepositsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Deposit, int64, error)
}

// WithdrawalRepository defines the interface for withdrawal requests.
type WithdrawalRepository interface {
	CreateWithdrawal(ctx context.Context, q DBExecutor, withdrawal *domain.Withdrawal) error
	GetWithdrawalByID(ctx context.Context, q DBExecutor, id int64) (*domain.Withdrawal, error)
	// SetWithdrawalStatus moves a withdrawal out of PENDING; false when it
	// already left PENDING.
	SetWithdrawalStatus(ctx context.Context, q DBExecutor, id int64, status domain.FundingStatus) (bool, error)
	ListWithdrawalsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Withdrawal, int64, error)
}

// LoanRepository defines the interface for loans.
type LoanRepository interface {
	CreateLoan(ctx context.Context, q DBExecutor, loan *domain.Loan) error
	GetLoanByID(ctx context.Context, q DBExecutor, id int64) (*domain.Loan, error)
	// GetLoanByIDForUpdate locks the loan row for repayment arithmetic.
	GetLoanByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Loan, error)
	// SetLoanStatus moves a loan out of PENDING and, on approval, opens the
	// outstanding balance; false when it already left PENDING.
	SetLoanStatus(ctx context.Context, q DBExecutor, id int64, status domain.FundingStatus, outstanding decimal.Decimal) (bool, error)
	// UpdateLoanOutstanding sets the remaining balance after a repayment.
	UpdateLoanOutstanding(ctx context.Context, q DBExecutor, id int64, outstanding decimal.Decimal) error
	ListLoansByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Loan, int64, error)
}
