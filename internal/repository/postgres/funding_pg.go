// internal/repository/postgres/funding_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finvest-api/internal/domain"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// DepositRepository implements repository.DepositRepository for PostgreSQL.
type DepositRepository struct{}

// NewDepositRepository creates a new DepositRepository.
func NewDepositRepository(db *sqlx.DB) repository.DepositRepository {
	return &DepositRepository{}
}

// CreateDeposit inserts a new deposit request.
func (r *DepositRepository) CreateDeposit(ctx context.Context, q repository.DBExecutor, deposit *domain.Deposit) error {
	query := `INSERT INTO deposits (user_id, amount, method, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		deposit.UserID, deposit.Amount, deposit.Method, deposit.Status, deposit.CreatedAt, deposit.UpdatedAt,
	).Scan(&deposit.ID)
	if err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

// GetDepositByID retrieves a deposit by its ID.
func (r *DepositRepository) GetDepositByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Deposit, error) {
	var deposit domain.Deposit
	query := `SELECT id, user_id, amount, method, status, created_at, updated_at FROM deposits WHERE id = $1`
	err := q.GetContext(ctx, &deposit, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deposit %d: %w", id, err)
	}
	return &deposit, nil
}

// SetDepositStatus transitions a deposit out of PENDING. The WHERE clause
// on the current status is what makes a repeated approval a no-op.
func (r *DepositRepository) SetDepositStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.FundingStatus) (bool, error) {
	query := `UPDATE deposits SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), id, domain.FundingStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to set deposit %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for deposit %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// ListDepositsByUserID retrieves a user's deposits, newest first, with the total count.
func (r *DepositRepository) ListDepositsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Deposit, int64, error) {
	deposits := []domain.Deposit{}
	query := `SELECT id, user_id, amount, method, status, created_at, updated_at
              FROM deposits WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &deposits, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list deposits for user %d: %w", userID, err)
	}
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM deposits WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count deposits for user %d: %w", userID, err)
	}
	return deposits, totalCount, nil
}

// WithdrawalRepository implements repository.WithdrawalRepository for PostgreSQL.
type WithdrawalRepository struct{}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(db *sqlx.DB) repository.WithdrawalRepository {
	return &WithdrawalRepository{}
}

// CreateWithdrawal inserts a new withdrawal request.
func (r *WithdrawalRepository) CreateWithdrawal(ctx context.Context, q repository.DBExecutor, withdrawal *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (user_id, amount, destination, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		withdrawal.UserID, withdrawal.Amount, withdrawal.Destination, withdrawal.Status, withdrawal.CreatedAt, withdrawal.UpdatedAt,
	).Scan(&withdrawal.ID)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

// GetWithdrawalByID retrieves a withdrawal by its ID.
func (r *WithdrawalRepository) GetWithdrawalByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Withdrawal, error) {
	var withdrawal domain.Withdrawal
	query := `SELECT id, user_id, amount, destination, status, created_at, updated_at FROM withdrawals WHERE id = $1`
	err := q.GetContext(ctx, &withdrawal, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal %d: %w", id, err)
	}
	return &withdrawal, nil
}

// SetWithdrawalStatus transitions a withdrawal out of PENDING; false when
// it already left PENDING.
func (r *WithdrawalRepository) SetWithdrawalStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.FundingStatus) (bool, error) {
	query := `UPDATE withdrawals SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), id, domain.FundingStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to set withdrawal %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for withdrawal %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// ListWithdrawalsByUserID retrieves a user's withdrawals, newest first, with the total count.
func (r *WithdrawalRepository) ListWithdrawalsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Withdrawal, int64, error) {
	withdrawals := []domain.Withdrawal{}
	query := `SELECT id, user_id, amount, destination, status, created_at, updated_at
              FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &withdrawals, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list withdrawals for user %d: %w", userID, err)
	}
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM withdrawals WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals for user %d: %w", userID, err)
	}
	return withdrawals, totalCount, nil
}

// LoanRepository implements repository.LoanRepository for PostgreSQL.
type LoanRepository struct{}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(db *sqlx.DB) repository.LoanRepository {
	return &LoanRepository{}
}

const loanColumns = `id, user_id, amount, term_months, purpose, outstanding, status, created_at, updated_at`

// CreateLoan inserts a new loan request.
func (r *LoanRepository) CreateLoan(ctx context.Context, q repository.DBExecutor, loan *domain.Loan) error {
	query := `INSERT INTO loans (user_id, amount, term_months, purpose, outstanding, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		loan.UserID, loan.Amount, loan.TermMonths, loan.Purpose, loan.Outstanding, loan.Status, loan.CreatedAt, loan.UpdatedAt,
	).Scan(&loan.ID)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoanByID retrieves a loan by its ID.
func (r *LoanRepository) GetLoanByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loan, error) {
	var loan domain.Loan
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	err := q.GetContext(ctx, &loan, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get loan %d: %w", id, err)
	}
	return &loan, nil
}

// GetLoanByIDForUpdate retrieves a loan with a row lock for repayment
// arithmetic. The caller must be inside a transaction.
func (r *LoanRepository) GetLoanByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loan, error) {
	var loan domain.Loan
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &loan, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock loan %d: %w", id, err)
	}
	return &loan, nil
}

// SetLoanStatus transitions a loan out of PENDING and opens the
// outstanding balance on approval; false when it already left PENDING.
func (r *LoanRepository) SetLoanStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.FundingStatus, outstanding decimal.Decimal) (bool, error) {
	query := `UPDATE loans SET status = $1, outstanding = $2, updated_at = $3 WHERE id = $4 AND status = $5`
	result, err := q.ExecContext(ctx, query, status, outstanding, time.Now().UTC(), id, domain.FundingStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to set loan %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for loan %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// UpdateLoanOutstanding sets the remaining balance after a repayment.
func (r *LoanRepository) UpdateLoanOutstanding(ctx context.Context, q repository.DBExecutor, id int64, outstanding decimal.Decimal) error {
	query := `UPDATE loans SET outstanding = $1, updated_at = $2 WHERE id = $3`
	if _, err := q.ExecContext(ctx, query, outstanding, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update loan %d outstanding: %w", id, err)
	}
	return nil
}

// ListLoansByUserID retrieves a user's loans, newest first, with the total count.
func (r *LoanRepository) ListLoansByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Loan, int64, error) {
	loans := []domain.Loan{}
	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &loans, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list loans for user %d: %w", userID, err)
	}
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM loans WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count loans for user %d: %w", userID, err)
	}
	return loans, totalCount, nil
}
