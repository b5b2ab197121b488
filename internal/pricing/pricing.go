// Package pricing computes order totals from a subtotal and an optional
// discount. All amounts are integer cents; tax is rounded half-up so quotes
// are deterministic and reproducible at commit time.
package pricing

import "math"

// Config holds the pricing knobs. Rates and thresholds come from
// configuration so storefronts can tune them without a deploy.
type Config struct {
	// TaxRate is a fraction, e.g. 0.08 for 8%.
	TaxRate float64

	// FreeShippingThresholdCents waives the flat fee when the subtotal
	// meets or exceeds it.
	FreeShippingThresholdCents int64

	// FlatShippingFeeCents is charged below the threshold.
	FlatShippingFeeCents int64
}

// DefaultConfig mirrors the storefront defaults: 8% tax, free shipping at
// $50, $9.99 flat fee below it.
func DefaultConfig() Config {
	return Config{
		TaxRate:                    0.08,
		FreeShippingThresholdCents: 5000,
		FlatShippingFeeCents:       999,
	}
}

// Amounts is a fully priced order. Total = Subtotal + Shipping + Tax - Discount.
type Amounts struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	TaxCents      int64 `json:"taxCents"`
	DiscountCents int64 `json:"discountCents"`
	TotalCents    int64 `json:"totalCents"`
}

// Calculator prices orders with a fixed Config. It is stateless and safe for
// concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator returns a Calculator for cfg.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Shipping returns the shipping charge for a subtotal. The free-shipping
// threshold is evaluated against the undiscounted subtotal.
func (c *Calculator) Shipping(subtotalCents int64) int64 {
	if subtotalCents >= c.cfg.FreeShippingThresholdCents {
		return 0
	}
	return c.cfg.FlatShippingFeeCents
}

// Tax returns the tax on a subtotal, rounded half-up to the nearest cent.
// Tax applies to the undiscounted subtotal; discounts reduce the total, not
// the tax base.
func (c *Calculator) Tax(subtotalCents int64) int64 {
	return int64(math.Round(float64(subtotalCents) * c.cfg.TaxRate))
}

// Quote prices an order. discountCents is clamped to the subtotal so the
// total can never go negative from an oversized fixed discount.
func (c *Calculator) Quote(subtotalCents, discountCents int64) Amounts {
	if discountCents < 0 {
		discountCents = 0
	}
	if discountCents > subtotalCents {
		discountCents = subtotalCents
	}
	shipping := c.Shipping(subtotalCents)
	tax := c.Tax(subtotalCents)
	return Amounts{
		SubtotalCents: subtotalCents,
		ShippingCents: shipping,
		TaxCents:      tax,
		DiscountCents: discountCents,
		TotalCents:    subtotalCents + shipping + tax - discountCents,
	}
}
