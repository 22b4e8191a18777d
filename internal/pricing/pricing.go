// Package pricing computes cart totals. It is pure: callers supply the
// price lookup and discount definitions, and identical inputs always
// yield identical totals.
package pricing

import (
	"fmt"
	"sort"

	"bazaar/internal/domain"
	"github.com/shopspring/decimal"
)

// PriceOf resolves a SKU to its unit price in cents. It must return
// domain.ErrUnknownSKU (possibly wrapped) when the SKU cannot be priced.
type PriceOf func(sku string) (int64, error)

// Compute returns the pre- and post-discount totals in cents for the
// given items. Discounts are applied in ascending id order so the
// insertion order of the set never influences the result. The running
// total is clamped at zero; a discount never drives it negative.
//
// A lookup failure fails the whole computation. Items are never
// silently skipped.
func Compute(items []domain.CartItem, discounts []domain.Discount, priceOf PriceOf) (pre, post int64, err error) {
	for _, it := range items {
		unit, err := priceOf(it.SKU)
		if err != nil {
			return 0, 0, fmt.Errorf("price %s: %w", it.SKU, err)
		}
		pre += unit * int64(it.Quantity)
	}

	ordered := make([]domain.Discount, len(discounts))
	copy(ordered, discounts)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	post = pre
	for _, d := range ordered {
		post, err = apply(post, d)
		if err != nil {
			return 0, 0, err
		}
		if post < 0 {
			post = 0
		}
	}
	return pre, post, nil
}

func apply(total int64, d domain.Discount) (int64, error) {
	switch d.Kind {
	case domain.DiscountRelative:
		off := decimal.NewFromInt(total).
			Mul(decimal.NewFromInt(int64(d.Permyriad))).
			Div(decimal.NewFromInt(10000)).
			Round(0)
		return total - off.IntPart(), nil
	case domain.DiscountAbsolute:
		return total - d.AmountCents, nil
	}
	return 0, fmt.Errorf("discount %s: unknown kind %q", d.ID, d.Kind)
}
