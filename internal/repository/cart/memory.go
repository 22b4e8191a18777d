package cart

import (
	"context"
	"sync"
	"time"

	"bazaar/internal/domain"
)

type memoryRepo struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

// NewMemory returns an in-process Repository with the same
// version-check semantics as the Postgres implementation.
func NewMemory() Repository {
	return &memoryRepo{carts: make(map[string]domain.Cart)}
}

func (r *memoryRepo) Create(_ context.Context, cart domain.Cart) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cart.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	now := time.Now().UTC()
	cart.Version = 1
	cart.CreatedAt = now
	cart.LastModified = now
	r.carts[cart.ID] = clone(cart)
	out := clone(cart)
	return &out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(cart)
	return &out, nil
}

func (r *memoryRepo) GetByCustomer(_ context.Context, customerID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cart := range r.carts {
		if cart.Owner.Kind == domain.OwnerKnown && cart.Owner.CustomerID == customerID {
			out := clone(cart)
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Update(_ context.Context, cart domain.Cart) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(cart)
}

func (r *memoryRepo) Promote(_ context.Context, cartID string, version int, customerID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[cartID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if stored.Version != version || stored.Owner.Kind != domain.OwnerAnonymous {
		return nil, domain.ErrVersionConflict
	}
	stored.Owner = domain.KnownOwner(customerID)
	stored.Version++
	stored.LastModified = time.Now().UTC()
	r.carts[cartID] = clone(stored)
	out := clone(stored)
	return &out, nil
}

func (r *memoryRepo) MergeInto(_ context.Context, target domain.Cart, anonymousCartID string, anonymousVersion int) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	anon, ok := r.carts[anonymousCartID]
	if !ok || anon.Owner.Kind != domain.OwnerAnonymous {
		return nil, domain.ErrNotFound
	}
	if anon.Version != anonymousVersion {
		return nil, domain.ErrVersionConflict
	}
	out, err := r.applyLocked(target)
	if err != nil {
		return nil, err
	}
	delete(r.carts, anonymousCartID)
	return out, nil
}

func (r *memoryRepo) applyLocked(cart domain.Cart) (*domain.Cart, error) {
	stored, ok := r.carts[cart.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if stored.Version != cart.Version {
		return nil, domain.ErrVersionConflict
	}
	stored.Items = cart.Items
	stored.Discounts = cart.Discounts
	stored.PriceBeforeDiscounts = cart.PriceBeforeDiscounts
	stored.PriceAfterDiscounts = cart.PriceAfterDiscounts
	stored.Version++
	stored.LastModified = time.Now().UTC()
	r.carts[cart.ID] = clone(stored)
	out := clone(stored)
	return &out, nil
}

func clone(cart domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	discounts := make([]string, len(cart.Discounts))
	copy(discounts, cart.Discounts)
	cart.Items = items
	cart.Discounts = discounts
	return cart
}
