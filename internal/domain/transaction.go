// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a financial transaction.
type TransactionType string

const (
	TransactionTypeBuy        TransactionType = "BUY"
	TransactionTypeSell       TransactionType = "SELL"
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeLoan       TransactionType = "LOAN"
	TransactionTypeRepayment  TransactionType = "REPAYMENT"
)

// TransactionStatus defines the status of a financial transaction.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable audit record written once per operation.
// It is never mutated after creation and never read back to derive
// holding or wallet state.
type Transaction struct {
	ID          int64             `db:"id" json:"id"`
	UserID      int64             `db:"user_id" json:"user_id"`
	Type        TransactionType   `db:"type" json:"type"`
	Symbol      *string           `db:"symbol" json:"symbol,omitempty"`     // Instrument, nil for cash-only operations
	Quantity    decimal.Decimal   `db:"quantity" json:"quantity"`           // Zero for cash-only operations
	Price       decimal.Decimal   `db:"price" json:"price"`                 // Unit price, zero for cash-only operations
	TotalAmount decimal.Decimal   `db:"total_amount" json:"total_amount"`   // quantity*price, or the cash amount moved
	Fees        decimal.Decimal   `db:"fees" json:"fees"`
	NetAmount   decimal.Decimal   `db:"net_amount" json:"net_amount"`       // Amount after fees, signed toward the user
	Status      TransactionStatus `db:"status" json:"status"`
	Description *string           `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// NewTradeTransaction creates the audit record for a buy or sell.
func NewTradeTransaction(userID int64, txType TransactionType, symbol string, quantity, price, fees, netAmount decimal.Decimal) *Transaction {
	return &Transaction{
		UserID:      userID,
		Type:        txType,
		Symbol:      &symbol,
		Quantity:    quantity,
		Price:       price,
		TotalAmount: quantity.Mul(price),
		Fees:        fees,
		NetAmount:   netAmount,
		Status:      TransactionStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewCashTransaction creates the audit record for a deposit, withdrawal,
// loan disbursal or repayment. NetAmount is signed toward the user:
// negative for money leaving the wallet.
func NewCashTransaction(userID int64, txType TransactionType, amount decimal.Decimal, description *string) *Transaction {
	net := amount
	switch txType {
	case TransactionTypeWithdrawal, TransactionTypeRepayment:
		net = amount.Neg()
	}
	return &Transaction{
		UserID:      userID,
		Type:        txType,
		Quantity:    decimal.Zero,
		Price:       decimal.Zero,
		TotalAmount: amount,
		Fees:        decimal.Zero,
		NetAmount:   net,
		Status:      TransactionStatusCompleted,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
