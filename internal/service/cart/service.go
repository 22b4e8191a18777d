// Package cart implements the cart store and the merge engine. Every
// mutation is a read-modify-write with an optimistic version check and
// recomputes both totals before persisting; stale totals never survive
// a mutation.
package cart

import (
	"context"
	"errors"
	"fmt"

	"bazaar/internal/domain"
	"bazaar/internal/pricing"
	cartrepo "bazaar/internal/repository/cart"
	"github.com/google/uuid"
)

// maxAttempts bounds retries on contended carts before surfacing
// domain.ErrConflictRetryExceeded.
const maxAttempts = 3

type Service struct {
	repo  cartRepo
	items itemRepo
}

type cartRepo interface {
	Create(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	Update(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	Promote(ctx context.Context, cartID string, version int, customerID string) (*domain.Cart, error)
	MergeInto(ctx context.Context, target domain.Cart, anonymousCartID string, anonymousVersion int) (*domain.Cart, error)
}

type itemRepo interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	GetDiscounts(ctx context.Context, ids []string) ([]domain.Discount, error)
}

func New(repo cartrepo.Repository, items itemRepo) *Service {
	return &Service{repo: repo, items: items}
}

// Create opens a new empty cart. The currency is fixed for the cart's
// lifetime.
func (s *Service) Create(ctx context.Context, owner domain.CartOwner, currency string) (*domain.Cart, error) {
	cur, err := domain.ParseCurrency(currency)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Cart{
		ID:       uuid.NewString(),
		Owner:    owner,
		Currency: cur,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, id)
}

// ForCustomer returns the customer's active cart, creating an empty one
// when none exists.
func (s *Service) ForCustomer(ctx context.Context, customerID, currency string) (*domain.Cart, error) {
	cart, err := s.repo.GetByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.Create(ctx, domain.KnownOwner(customerID), currency)
}

// AddItem increments the quantity for the SKU, inserting the entry when
// absent.
func (s *Service) AddItem(ctx context.Context, id, sku string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].SKU == sku {
				cart.Items[i].Quantity += quantity
				return nil
			}
		}
		cart.Items = append(cart.Items, domain.CartItem{SKU: sku, Quantity: quantity})
		return nil
	})
}

// RemoveItem decrements the quantity for the SKU, deleting the entry
// when it reaches zero. Removing more than the cart holds fails with
// domain.ErrInvalidQuantity and leaves the cart untouched.
func (s *Service) RemoveItem(ctx context.Context, id, sku string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].SKU != sku {
				continue
			}
			switch {
			case cart.Items[i].Quantity < quantity:
				return domain.ErrInvalidQuantity
			case cart.Items[i].Quantity == quantity:
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			default:
				cart.Items[i].Quantity -= quantity
			}
			return nil
		}
		return domain.ErrInvalidQuantity
	})
}

// ApplyDiscount adds the discount id to the cart's set. Applying an
// already-applied id changes nothing.
func (s *Service) ApplyDiscount(ctx context.Context, id, discountID string) (*domain.Cart, error) {
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		if !cart.HasDiscount(discountID) {
			cart.Discounts = append(cart.Discounts, discountID)
		}
		return nil
	})
}

// RemoveDiscount drops the discount id from the cart's set; removing an
// absent id is a no-op.
func (s *Service) RemoveDiscount(ctx context.Context, id, discountID string) (*domain.Cart, error) {
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		for i, d := range cart.Discounts {
			if d == discountID {
				cart.Discounts = append(cart.Discounts[:i], cart.Discounts[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		cart, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(cart); err != nil {
			return nil, err
		}
		if err := s.reprice(ctx, cart); err != nil {
			return nil, err
		}
		updated, err := s.repo.Update(ctx, *cart)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, domain.ErrConflictRetryExceeded
}

// reprice recomputes both totals from the cart's current items and
// discounts.
func (s *Service) reprice(ctx context.Context, cart *domain.Cart) error {
	discounts, err := s.items.GetDiscounts(ctx, cart.Discounts)
	if err != nil {
		return err
	}
	prices := make(map[string]int64, len(cart.Items))
	for _, it := range cart.Items {
		item, err := s.items.GetBySKU(ctx, it.SKU)
		if err != nil {
			return err
		}
		if item.Currency != cart.Currency {
			return fmt.Errorf("item %s priced in %s: %w", it.SKU, item.Currency, domain.ErrCurrencyMismatch)
		}
		prices[it.SKU] = item.PriceCents
	}
	pre, post, err := pricing.Compute(cart.Items, discounts, func(sku string) (int64, error) {
		price, ok := prices[sku]
		if !ok {
			return 0, domain.ErrUnknownSKU
		}
		return price, nil
	})
	if err != nil {
		return err
	}
	cart.PriceBeforeDiscounts = pre
	cart.PriceAfterDiscounts = post
	return nil
}
