package domain

import "time"

// PromoType distinguishes the two supported discount computations.
type PromoType string

const (
	// PromoPercentage discounts value percent of the subtotal.
	PromoPercentage PromoType = "percentage"

	// PromoFixed discounts a fixed cent amount, capped at the subtotal.
	PromoFixed PromoType = "fixed"
)

// PromoCode is a discount code with an activity window, a usage cap, and a
// minimum-order threshold. CurrentUses only ever increases, and only inside
// the checkout transaction.
type PromoCode struct {
	ID   int64
	Code string
	Type PromoType

	// Value is a percentage (0-100) for PromoPercentage, cents for PromoFixed.
	Value int64

	MinOrderCents int64

	// MaxUses is nil for unlimited codes.
	MaxUses     *int32
	CurrentUses int32

	// StartsAt/EndsAt bound the activity window; nil means unbounded.
	StartsAt *time.Time
	EndsAt   *time.Time

	IsActive bool
}

// Exhausted reports whether the usage cap has been reached.
func (p *PromoCode) Exhausted() bool {
	return p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}

// Discount is the result of evaluating a promo code against a subtotal.
type Discount struct {
	PromoID     int64     `json:"-"`
	Code        string    `json:"code"`
	Type        PromoType `json:"type"`
	Value       int64     `json:"value"`
	AmountCents int64     `json:"amountCents"`
}
