// internal/domain/holding_test.go
package domain

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestApplyBuy walks the canonical merge sequence: a first buy with fees
// folded into the cost basis, then a second buy shifting the average.
func TestApplyBuy(t *testing.T) {
	h := NewHolding(1, "AAPL", AssetKindStock, dec("10"), dec("100"), dec("5"))

	assert.True(t, dec("10").Equal(h.Quantity))
	assert.True(t, dec("100.5").Equal(h.AvgPurchasePrice))
	assert.True(t, dec("1005").Equal(h.TotalInvested))

	h.ApplyBuy(dec("5"), dec("120"), decimal.Zero)

	assert.True(t, dec("15").Equal(h.Quantity))
	assert.True(t, dec("107").Equal(h.AvgPurchasePrice))
	assert.True(t, dec("1605").Equal(h.TotalInvested))
}

func TestApplySell(t *testing.T) {
	t.Run("PartialSellKeepsAverage", func(t *testing.T) {
		h := NewHolding(1, "AAPL", AssetKindStock, dec("10"), dec("100"), dec("5"))

		costRemoved, closed := h.ApplySell(dec("4"))

		assert.False(t, closed)
		assert.True(t, dec("402").Equal(costRemoved))
		assert.True(t, dec("6").Equal(h.Quantity))
		assert.True(t, dec("100.5").Equal(h.AvgPurchasePrice))
		assert.True(t, dec("603").Equal(h.TotalInvested))
	})

	t.Run("FullSellZeroesPosition", func(t *testing.T) {
		h := NewHolding(1, "AAPL", AssetKindStock, dec("10"), dec("100"), dec("5"))

		costRemoved, closed := h.ApplySell(dec("10"))

		assert.True(t, closed)
		// The whole cost basis leaves with the position, whatever rounding
		// the partial sells left behind.
		assert.True(t, dec("1005").Equal(costRemoved))
		assert.True(t, h.Quantity.IsZero())
		assert.True(t, h.TotalInvested.IsZero())
	})
}

// TestProperty_CostBasisInvariant checks that Quantity * AvgPurchasePrice
// equals TotalInvested after any sequence of buys, and that a partial sell
// never changes the average price.
func TestProperty_CostBasisInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	quantityGen := gen.Int64Range(1, 1000)
	priceGen := gen.Int64Range(1, 100000) // cents
	feesGen := gen.Int64Range(0, 10000)   // cents

	properties.Property("average equals cost basis over quantity after every buy", prop.ForAll(
		func(q1, p1, f1, q2, p2, f2 int64) bool {
			h := NewHolding(1, "AAPL", AssetKindStock,
				decimal.NewFromInt(q1), decimal.New(p1, -2), decimal.New(f1, -2))
			h.ApplyBuy(decimal.NewFromInt(q2), decimal.New(p2, -2), decimal.New(f2, -2))

			expectedCost := decimal.NewFromInt(q1).Mul(decimal.New(p1, -2)).Add(decimal.New(f1, -2)).
				Add(decimal.NewFromInt(q2).Mul(decimal.New(p2, -2))).Add(decimal.New(f2, -2))
			if !h.TotalInvested.Equal(expectedCost) {
				return false
			}
			return h.Quantity.Mul(h.AvgPurchasePrice).Sub(h.TotalInvested).Abs().
				LessThan(decimal.New(1, -8))
		},
		quantityGen, priceGen, feesGen, quantityGen, priceGen, feesGen,
	))

	properties.Property("partial sell preserves the average price", prop.ForAll(
		func(q, p, f, sellFrac int64) bool {
			h := NewHolding(1, "AAPL", AssetKindStock,
				decimal.NewFromInt(q+1), decimal.New(p, -2), decimal.New(f, -2))
			before := h.AvgPurchasePrice

			// Sell strictly less than the full position.
			sellQty := decimal.NewFromInt(sellFrac%q + 1)
			if sellQty.GreaterThanOrEqual(h.Quantity) {
				sellQty = h.Quantity.Sub(decimal.NewFromInt(1))
			}
			if sellQty.LessThanOrEqual(decimal.Zero) {
				return true
			}
			_, closed := h.ApplySell(sellQty)
			if closed {
				return false
			}
			return h.AvgPurchasePrice.Sub(before).Abs().LessThan(decimal.New(1, -8))
		},
		gen.Int64Range(1, 1000), priceGen, feesGen, gen.Int64Range(0, 1000),
	))

	properties.Property("full sell removes exactly the remaining cost basis", prop.ForAll(
		func(q, p, f int64) bool {
			h := NewHolding(1, "AAPL", AssetKindStock,
				decimal.NewFromInt(q), decimal.New(p, -2), decimal.New(f, -2))
			invested := h.TotalInvested

			costRemoved, closed := h.ApplySell(decimal.NewFromInt(q))
			return closed && costRemoved.Equal(invested) && h.TotalInvested.IsZero()
		},
		quantityGen, priceGen, feesGen,
	))

	properties.TestingRun(t)
}
