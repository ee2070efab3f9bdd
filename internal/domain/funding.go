// internal/domain/funding.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingStatus is the lifecycle of a deposit, withdrawal or loan request.
type FundingStatus string

const (
	FundingStatusPending  FundingStatus = "PENDING"
	FundingStatusApproved FundingStatus = "APPROVED"
	FundingStatusRejected FundingStatus = "REJECTED"
)

// Deposit is a user's request to credit their wallet. The wallet is
// credited only when an admin approves the request, exactly once.
type Deposit struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Method    string          `db:"method" json:"method"` // e.g. "bank_transfer", "card"
	Status    FundingStatus   `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewDeposit creates a pending deposit request.
func NewDeposit(userID int64, amount decimal.Decimal, method string) *Deposit {
	now := time.Now().UTC()
	return &Deposit{
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    FundingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Withdrawal is a user's request to move money out of their wallet. The
// amount is debited when the request is created; a rejection refunds it.
type Withdrawal struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Destination string          `db:"destination" json:"destination"` // Bank account or address
	Status      FundingStatus   `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWithdrawal creates a pending withdrawal request.
func NewWithdrawal(userID int64, amount decimal.Decimal, destination string) *Withdrawal {
	now := time.Now().UTC()
	return &Withdrawal{
		UserID:      userID,
		Amount:      amount,
		Destination: destination,
		Status:      FundingStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Loan is a credit line request. Approval credits the wallet with the
// principal and opens an outstanding balance reduced by repayments.
type Loan struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	TermMonths  int             `db:"term_months" json:"term_months"`
	Purpose     string          `db:"purpose" json:"purpose"`
	Outstanding decimal.Decimal `db:"outstanding" json:"outstanding"`
	Status      FundingStatus   `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewLoan creates a pending loan request.
func NewLoan(userID int64, amount decimal.Decimal, termMonths int, purpose string) *Loan {
	now := time.Now().UTC()
	return &Loan{
		UserID:      userID,
		Amount:      amount,
		TermMonths:  termMonths,
		Purpose:     purpose,
		Outstanding: decimal.Zero,
		Status:      FundingStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
