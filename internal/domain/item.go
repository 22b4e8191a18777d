package domain

// Item is a priced catalog entry consulted when cart totals are computed.
type Item struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PriceCents  int64    `json:"priceCents"`
	Currency    Currency `json:"currency"`
}
