// internal/domain/order.go
package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Car is a vehicle listing available for checkout.
type Car struct {
	ID        int64           `db:"id" json:"id"`
	Model     string          `db:"model" json:"model"`
	Year      int             `db:"year" json:"year"`
	Price     decimal.Decimal `db:"price" json:"price"`
	ImageURL  string          `db:"image_url" json:"image_url"`
	Available bool            `db:"available" json:"available"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewCar creates an available car listing.
func NewCar(model string, year int, price decimal.Decimal, imageURL string) *Car {
	now := time.Now().UTC()
	return &Car{
		Model:     model,
		Year:      year,
		Price:     price,
		ImageURL:  imageURL,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OrderStatus is the checkout state machine:
// pending -> paid -> (confirmed | cancelled), pending -> (expired | cancelled).
// Expiry is applied lazily when a pending order is read past its deadline.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusExpired   OrderStatus = "EXPIRED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// CanTransition reports whether the state machine allows moving from s
// to next. Terminal states allow nothing.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusExpired || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusConfirmed || next == OrderStatusCancelled
	default:
		return false
	}
}

// Order is a car-sales checkout.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	Reference   string          `db:"reference" json:"reference"` // Opaque order reference (UUID)
	UserID      int64           `db:"user_id" json:"user_id"`
	CarID       int64           `db:"car_id" json:"car_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      OrderStatus     `db:"status" json:"status"`
	PaymentHash *string         `db:"payment_hash" json:"payment_hash,omitempty"`
	ExpiresAt   time.Time       `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewOrder creates a pending order that stays payable until expiresAt.
func NewOrder(reference string, userID, carID int64, amount decimal.Decimal, expiresAt time.Time) *Order {
	now := time.Now().UTC()
	return &Order{
		Reference: reference,
		UserID:    userID,
		CarID:     carID,
		Amount:    amount,
		Status:    OrderStatusPending,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsExpired reports whether a pending order has passed its deadline.
func (o *Order) IsExpired(now time.Time) bool {
	return o.Status == OrderStatusPending && now.After(o.ExpiresAt)
}

// Payment hashes are checked for format only: 0x followed by 64 hex
// characters. There is no on-chain verification.
var paymentHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// ValidPaymentHash reports whether hash has the expected format.
func ValidPaymentHash(hash string) bool {
	return paymentHashRe.MatchString(hash)
}
