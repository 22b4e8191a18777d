package domain

import (
	"fmt"
	"strings"
	"time"
)

type Currency string

const (
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
)

// ParseCurrency validates a currency code against the supported set.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case CurrencyGBP:
		return CurrencyGBP, nil
	case CurrencyUSD:
		return CurrencyUSD, nil
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

type OwnerKind string

const (
	OwnerAnonymous OwnerKind = "anonymous"
	OwnerKnown     OwnerKind = "known"
)

// CartOwner tags a cart as anonymous or bound to a customer.
// CustomerID is set only when Kind is OwnerKnown.
type CartOwner struct {
	Kind       OwnerKind `json:"kind"`
	CustomerID string    `json:"customerId,omitempty"`
}

func AnonymousOwner() CartOwner {
	return CartOwner{Kind: OwnerAnonymous}
}

func KnownOwner(customerID string) CartOwner {
	return CartOwner{Kind: OwnerKnown, CustomerID: customerID}
}

// CartItem is identified by its SKU; one cart never holds two entries
// for the same SKU.
type CartItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type Cart struct {
	ID                   string     `json:"id"`
	Owner                CartOwner  `json:"owner"`
	Currency             Currency   `json:"currency"`
	Items                []CartItem `json:"items"`
	Discounts            []string   `json:"discounts"`
	PriceBeforeDiscounts int64      `json:"priceBeforeDiscounts"`
	PriceAfterDiscounts  int64      `json:"priceAfterDiscounts"`
	Version              int        `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	LastModified         time.Time  `json:"lastModified"`
}

// Quantity returns the quantity held for sku, zero if absent.
func (c *Cart) Quantity(sku string) int {
	for _, it := range c.Items {
		if it.SKU == sku {
			return it.Quantity
		}
	}
	return 0
}

// HasDiscount reports whether the discount id is already applied.
func (c *Cart) HasDiscount(id string) bool {
	for _, d := range c.Discounts {
		if d == id {
			return true
		}
	}
	return false
}
