// internal/domain/holding.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetKind distinguishes instruments priced by the market from
// investment plans priced by NAV and funded from the wallet.
type AssetKind string

const (
	AssetKindStock AssetKind = "STOCK"
	AssetKindPlan  AssetKind = "PLAN"
)

// Holding is a user's aggregate position in one instrument. Unique per
// (user, symbol). Created on first buy, deleted when quantity reaches
// zero. Invariant after every update: Quantity * AvgPurchasePrice equals
// TotalInvested.
type Holding struct {
	ID               int64           `db:"id" json:"id"`
	UserID           int64           `db:"user_id" json:"user_id"`
	Symbol           string          `db:"symbol" json:"symbol"`
	Kind             AssetKind       `db:"kind" json:"kind"`
	Quantity         decimal.Decimal `db:"quantity" json:"quantity"`
	AvgPurchasePrice decimal.Decimal `db:"avg_purchase_price" json:"avg_purchase_price"`
	TotalInvested    decimal.Decimal `db:"total_invested" json:"total_invested"` // Cost basis including fees
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// NewHolding creates a holding from a first purchase.
func NewHolding(userID int64, symbol string, kind AssetKind, quantity, price, fees decimal.Decimal) *Holding {
	now := time.Now().UTC()
	h := &Holding{
		UserID:    userID,
		Symbol:    symbol,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.ApplyBuy(quantity, price, fees)
	return h
}

// ApplyBuy merges a purchase into the position using weighted-average
// cost. The average price is recomputed from the accumulated totals each
// time rather than adjusted incrementally, so it cannot drift, and it
// includes fees in the cost basis.
func (h *Holding) ApplyBuy(quantity, price, fees decimal.Decimal) {
	cost := quantity.Mul(price).Add(fees)
	h.TotalInvested = h.TotalInvested.Add(cost)
	h.Quantity = h.Quantity.Add(quantity)
	h.AvgPurchasePrice = h.TotalInvested.Div(h.Quantity)
	h.UpdatedAt = time.Now().UTC()
}

// ApplySell removes quantity from the position under average-cost lot
// relief: the cost basis decreases by quantity*AvgPurchasePrice. It
// returns the cost removed and whether the position is now closed. The
// caller must have verified quantity <= h.Quantity.
func (h *Holding) ApplySell(quantity decimal.Decimal) (costRemoved decimal.Decimal, closed bool) {
	remaining := h.Quantity.Sub(quantity)
	if remaining.IsZero() {
		costRemoved = h.TotalInvested
		h.Quantity = decimal.Zero
		h.TotalInvested = decimal.Zero
		h.UpdatedAt = time.Now().UTC()
		return costRemoved, true
	}
	costRemoved = quantity.Mul(h.AvgPurchasePrice)
	h.Quantity = remaining
	h.TotalInvested = h.TotalInvested.Sub(costRemoved)
	// Average price is unchanged by a sell at average cost, but recompute
	// so the invariant holds exactly after decimal rounding.
	h.AvgPurchasePrice = h.TotalInvested.Div(h.Quantity)
	h.UpdatedAt = time.Now().UTC()
	return costRemoved, false
}

// Lot is one append-only purchase-history entry for a holding.
type Lot struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Symbol      string          `db:"symbol" json:"symbol"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Fees        decimal.Decimal `db:"fees" json:"fees"`
	PurchasedAt time.Time       `db:"purchased_at" json:"purchased_at"`
}

// NewLot records one purchase.
func NewLot(userID int64, symbol string, quantity, price, fees decimal.Decimal) *Lot {
	return &Lot{
		UserID:      userID,
		Symbol:      symbol,
		Quantity:    quantity,
		Price:       price,
		Fees:        fees,
		PurchasedAt: time.Now().UTC(),
	}
}
