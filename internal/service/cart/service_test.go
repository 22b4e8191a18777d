package cart

import (
	"context"
	"errors"
	"testing"

	"bazaar/internal/domain"
	cartrepo "bazaar/internal/repository/cart"
)

type stubItems struct {
	prices     map[string]int64
	currencies map[string]domain.Currency
	discounts  map[string]domain.Discount
}

func (s *stubItems) GetBySKU(_ context.Context, sku string) (*domain.Item, error) {
	price, ok := s.prices[sku]
	if !ok {
		return nil, domain.ErrUnknownSKU
	}
	currency := s.currencies[sku]
	if currency == "" {
		currency = domain.CurrencyUSD
	}
	return &domain.Item{SKU: sku, Name: sku, PriceCents: price, Currency: currency}, nil
}

func (s *stubItems) GetDiscounts(_ context.Context, ids []string) ([]domain.Discount, error) {
	out := make([]domain.Discount, 0, len(ids))
	for _, id := range ids {
		d, ok := s.discounts[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		out = append(out, d)
	}
	return out, nil
}

// conflictRepo forces a number of version conflicts before delegating.
type conflictRepo struct {
	cartRepo
	failures int
}

func (c *conflictRepo) Update(ctx context.Context, cart domain.Cart) (*domain.Cart, error) {
	if c.failures > 0 {
		c.failures--
		return nil, domain.ErrVersionConflict
	}
	return c.cartRepo.Update(ctx, cart)
}

func newTestService(items *stubItems) (*Service, cartrepo.Repository) {
	repo := cartrepo.NewMemory()
	return New(repo, items), repo
}

func usdItems() *stubItems {
	return &stubItems{
		prices: map[string]int64{"SKU-A": 1000, "SKU-B": 250},
		discounts: map[string]domain.Discount{
			"half": {ID: "half", Kind: domain.DiscountRelative, Permyriad: 5000},
		},
	}
}

func TestCreateRejectsUnknownCurrency(t *testing.T) {
	svc, _ := newTestService(usdItems())
	if _, err := svc.Create(context.Background(), domain.AnonymousOwner(), "XYZ"); err == nil {
		t.Fatalf("expected currency error")
	}
}

func TestAddItemMergesSKUs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())

	cart, err := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddItem(ctx, cart.ID, "SKU-A", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := svc.AddItem(ctx, cart.ID, "SKU-A", 2)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 3 {
		t.Fatalf("expected single entry with quantity 3, got %+v", got.Items)
	}
	if got.PriceBeforeDiscounts != 3000 || got.PriceAfterDiscounts != 3000 {
		t.Fatalf("unexpected totals %d/%d", got.PriceBeforeDiscounts, got.PriceAfterDiscounts)
	}
}

func TestAddItemUnknownSKU(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())

	cart, _ := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	if _, err := svc.AddItem(ctx, cart.ID, "SKU-NOPE", 1); !errors.Is(err, domain.ErrUnknownSKU) {
		t.Fatalf("expected ErrUnknownSKU, got %v", err)
	}
	got, err := svc.Get(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("failed mutation must not persist, got %+v", got.Items)
	}
}

func TestAddItemRejectsForeignCurrencyPrice(t *testing.T) {
	ctx := context.Background()
	items := usdItems()
	items.prices["SKU-GBP"] = 700
	items.currencies = map[string]domain.Currency{"SKU-GBP": domain.CurrencyGBP}
	svc, _ := newTestService(items)

	cart, _ := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	if _, err := svc.AddItem(ctx, cart.ID, "SKU-GBP", 1); !errors.Is(err, domain.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	got, err := svc.Get(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("failed mutation must not persist, got %+v", got.Items)
	}
}

func TestRemoveItemDeletesAtZero(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())

	cart, _ := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	if _, err := svc.AddItem(ctx, cart.ID, "SKU-A", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := svc.RemoveItem(ctx, cart.ID, "SKU-A", 2)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected entry deleted, got %+v", got.Items)
	}
	if got.PriceBeforeDiscounts != 0 || got.PriceAfterDiscounts != 0 {
		t.Fatalf("unexpected totals %d/%d", got.PriceBeforeDiscounts, got.PriceAfterDiscounts)
	}
}

func TestRemoveItemBelowZeroFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())

	cart, _ := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	if _, err := svc.AddItem(ctx, cart.ID, "SKU-A", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.RemoveItem(ctx, cart.ID, "SKU-A", 3); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	got, _ := svc.Get(ctx, cart.ID)
	if got.Quantity("SKU-A") != 2 {
		t.Fatalf("quantity must remain 2, got %d", got.Quantity("SKU-A"))
	}
}

func TestMutationsOnMissingCart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())
	if _, err := svc.AddItem(ctx, "no-such-cart", "SKU-A", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyDiscountIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())

	cart, _ := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	if _, err := svc.AddItem(ctx, cart.ID, "SKU-A", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	first, err := svc.ApplyDiscount(ctx, cart.ID, "half")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	second, err := svc.ApplyDiscount(ctx, cart.ID, "half")
	if err != nil {
		t.Fatalf("apply again: %v", err)
	}
	if len(second.Discounts) != 1 {
		t.Fatalf("expected one discount, got %v", second.Discounts)
	}
	if first.PriceAfterDiscounts != 500 || second.PriceAfterDiscounts != 500 {
		t.Fatalf("unexpected totals %d then %d", first.PriceAfterDiscounts, second.PriceAfterDiscounts)
	}
}

func TestApplyUnknownDiscount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())

	cart, _ := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	if _, err := svc.ApplyDiscount(ctx, cart.ID, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveDiscountRestoresTotal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(usdItems())

	cart, _ := svc.Create(ctx, domain.AnonymousOwner(), "USD")
	_, _ = svc.AddItem(ctx, cart.ID, "SKU-A", 1)
	_, _ = svc.ApplyDiscount(ctx, cart.ID, "half")
	got, err := svc.RemoveDiscount(ctx, cart.ID, "half")
	if err != nil {
		t.Fatalf("remove discount: %v", err)
	}
	if len(got.Discounts) != 0 || got.PriceAfterDiscounts != 1000 {
		t.Fatalf("expected full price back, got %v %d", got.Discounts, got.PriceAfterDiscounts)
	}
}

func TestMutateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	items := usdItems()
	mem := cartrepo.NewMemory()
	repo := &conflictRepo{cartRepo: mem, failures: 2}
	svc := &Service{repo: repo, items: items}

	cart, err := mem.Create(ctx, domain.Cart{ID: "c1", Owner: domain.AnonymousOwner(), Currency: domain.CurrencyUSD})
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	got, err := svc.AddItem(ctx, cart.ID, "SKU-A", 1)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got.Quantity("SKU-A") != 1 {
		t.Fatalf("unexpected cart %+v", got)
	}
}

func TestMutateConflictRetryExceeded(t *testing.T) {
	ctx := context.Background()
	mem := cartrepo.NewMemory()
	repo := &conflictRepo{cartRepo: mem, failures: maxAttempts}
	svc := &Service{repo: repo, items: usdItems()}

	if _, err := mem.Create(ctx, domain.Cart{ID: "c1", Owner: domain.AnonymousOwner(), Currency: domain.CurrencyUSD}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := svc.AddItem(ctx, "c1", "SKU-A", 1); !errors.Is(err, domain.ErrConflictRetryExceeded) {
		t.Fatalf("expected ErrConflictRetryExceeded, got %v", err)
	}
}
