// Package pricing holds the cart money math. All functions are pure and
// operate on exact decimals; rounding to two places happens at the
// presentation boundary, never here.
package pricing

import (
	"iter"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// FreeDeliveryThreshold is inclusive: a subtotal of exactly 100.00
	// ships free.
	FreeDeliveryThreshold = decimal.NewFromInt(100)
	FlatDeliveryFee       = decimal.NewFromInt(10)
)

// Subtotal sums unit price times quantity over all items.
func Subtotal(items iter.Seq[domain.LineItem]) decimal.Decimal {
	sum := decimal.Zero
	for item := range items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

func DeliveryFee(subtotal, threshold, flatFee decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return flatFee
}

// Total is subtotal plus delivery fee. An empty cart totals zero: nothing
// ships, so no fee is charged (checkout short-circuits it anyway).
func Total(items iter.Seq[domain.LineItem]) decimal.Decimal {
	empty := true
	subtotal := decimal.Zero
	for item := range items {
		empty = false
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if empty {
		return decimal.Zero
	}
	return subtotal.Add(DeliveryFee(subtotal, FreeDeliveryThreshold, FlatDeliveryFee))
}

// RemainingForFreeDelivery returns how much more the subtotal needs to reach
// the free-delivery threshold, clamped at zero. Used for incentive messaging.
func RemainingForFreeDelivery(subtotal, threshold decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return threshold.Sub(subtotal)
}
