package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShipping(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	assert.Equal(t, int64(999), calc.Shipping(0))
	assert.Equal(t, int64(999), calc.Shipping(4999))
	assert.Equal(t, int64(0), calc.Shipping(5000), "threshold is inclusive")
	assert.Equal(t, int64(0), calc.Shipping(12500))
}

func TestTax(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	assert.Equal(t, int64(0), calc.Tax(0))
	assert.Equal(t, int64(96), calc.Tax(1200))
	// 8% of 1006 = 80.48, rounds down to 80
	assert.Equal(t, int64(80), calc.Tax(1006))
	// 8% of 1007 = 80.56, rounds up to 81
	assert.Equal(t, int64(81), calc.Tax(1007))
}

func TestQuote(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	t.Run("no discount, under free shipping", func(t *testing.T) {
		got := calc.Quote(1200, 0)
		assert.Equal(t, Amounts{
			SubtotalCents: 1200,
			ShippingCents: 999,
			TaxCents:      96,
			DiscountCents: 0,
			TotalCents:    2295,
		}, got)
	})

	t.Run("percentage discount does not shrink tax base", func(t *testing.T) {
		// 10% off $12.00: tax stays 8% of the undiscounted subtotal.
		got := calc.Quote(1200, 120)
		assert.Equal(t, Amounts{
			SubtotalCents: 1200,
			ShippingCents: 999,
			TaxCents:      96,
			DiscountCents: 120,
			TotalCents:    2175,
		}, got)
	})

	t.Run("free shipping at threshold", func(t *testing.T) {
		got := calc.Quote(5000, 0)
		assert.Equal(t, int64(0), got.ShippingCents)
		assert.Equal(t, int64(5400), got.TotalCents)
	})

	t.Run("oversized fixed discount clamps to subtotal", func(t *testing.T) {
		got := calc.Quote(1000, 2500)
		assert.Equal(t, int64(1000), got.DiscountCents)
		// shipping and tax still apply, so total stays positive
		assert.Equal(t, int64(999+80), got.TotalCents)
	})

	t.Run("negative discount treated as zero", func(t *testing.T) {
		got := calc.Quote(1000, -5)
		assert.Equal(t, int64(0), got.DiscountCents)
	})

	t.Run("empty cart", func(t *testing.T) {
		got := calc.Quote(0, 0)
		assert.Equal(t, int64(999), got.ShippingCents)
		assert.Equal(t, int64(999), got.TotalCents)
	})
}
