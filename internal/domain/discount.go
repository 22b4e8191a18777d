package domain

type DiscountKind string

const (
	// DiscountRelative takes a permyriad share off the running total.
	DiscountRelative DiscountKind = "relative"
	// DiscountAbsolute takes a fixed amount of cents off the running total.
	DiscountAbsolute DiscountKind = "absolute"
)

type Discount struct {
	ID          string       `json:"id"`
	Kind        DiscountKind `json:"kind"`
	Permyriad   int          `json:"permyriad,omitempty"`
	AmountCents int64        `json:"amountCents,omitempty"`
	Description string       `json:"description,omitempty"`
}
