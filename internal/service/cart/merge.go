package cart

import (
	"context"
	"errors"
	"sort"

	"bazaar/internal/domain"
)

// MergeForCustomer folds the anonymous cart into the customer's cart.
// With no existing customer cart the anonymous cart is promoted in
// place, keeping its id. Otherwise quantities are summed per SKU,
// discount sets are unioned, totals are recomputed from the merged
// items, and the anonymous cart is deleted in the same storage
// transaction that updates the target.
func (s *Service) MergeForCustomer(ctx context.Context, customerID, anonymousCartID string) (*domain.Cart, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		anon, err := s.repo.GetByID(ctx, anonymousCartID)
		if err != nil {
			return nil, err
		}
		if anon.Owner.Kind != domain.OwnerAnonymous {
			return nil, domain.ErrNotFound
		}

		target, err := s.repo.GetByCustomer(ctx, customerID)
		if errors.Is(err, domain.ErrNotFound) {
			promoted, err := s.repo.Promote(ctx, anon.ID, anon.Version, customerID)
			if err == nil {
				return promoted, nil
			}
			if errors.Is(err, domain.ErrVersionConflict) {
				continue
			}
			return nil, err
		}
		if err != nil {
			return nil, err
		}

		items, discounts, err := mergeCarts(anon, target)
		if err != nil {
			return nil, err
		}
		target.Items = items
		target.Discounts = discounts
		if err := s.reprice(ctx, target); err != nil {
			return nil, err
		}

		merged, err := s.repo.MergeInto(ctx, *target, anon.ID, anon.Version)
		if err == nil {
			return merged, nil
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		return nil, err
	}
	return nil, domain.ErrConflictRetryExceeded
}

// mergeCarts unions the two carts' items by SKU with quantities summed,
// and unions their discount sets. Neither input is modified.
func mergeCarts(anon, target *domain.Cart) ([]domain.CartItem, []string, error) {
	if anon.Currency != target.Currency {
		return nil, nil, domain.ErrCurrencyMismatch
	}

	items := make([]domain.CartItem, len(target.Items))
	copy(items, target.Items)
	for _, in := range anon.Items {
		found := false
		for i := range items {
			if items[i].SKU == in.SKU {
				items[i].Quantity += in.Quantity
				found = true
				break
			}
		}
		if !found {
			items = append(items, in)
		}
	}

	set := make(map[string]struct{}, len(target.Discounts)+len(anon.Discounts))
	for _, d := range target.Discounts {
		set[d] = struct{}{}
	}
	for _, d := range anon.Discounts {
		set[d] = struct{}{}
	}
	discounts := make([]string, 0, len(set))
	for d := range set {
		discounts = append(discounts, d)
	}
	sort.Strings(discounts)

	return items, discounts, nil
}
