package domain

import "time"

// CartLine is one row of purchase intent: a (user, product, variant) tuple
// with a quantity. At most one line exists per tuple; re-adding the same
// tuple merges quantities instead of creating a duplicate row.
type CartLine struct {
	ID        int64
	UserID    int64
	ProductID int64
	VariantID *int64

	// Quantity is always in [1, MaxLineQuantity].
	Quantity int32

	// UnitPriceCents is the price captured when the line was added or last
	// updated. Display and checkout always recompute from the live catalog;
	// this is retained for audit only.
	UnitPriceCents int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity int32 = 99

// CartLineDetail joins a cart line with its current catalog state.
type CartLineDetail struct {
	Line    CartLine
	Product Product
	Variant *Variant
}

// CartLineView is a cart line priced against the live catalog.
type CartLineView struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`

	ProductName string `json:"productName"`
	ProductSlug string `json:"productSlug"`
	SKU         string `json:"sku"`
	ImageURL    string `json:"image,omitempty"`

	VariantName  string `json:"variantName,omitempty"`
	VariantValue string `json:"variantValue,omitempty"`

	Quantity       int32 `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
	LineTotalCents int64 `json:"lineTotalCents"`
	StockQuantity  int32 `json:"stockQuantity"`

	// Unavailable marks a line whose product has been deactivated. The line
	// stays visible but is excluded from the subtotal and cannot be committed.
	Unavailable bool `json:"unavailable,omitempty"`
}

// CartView is the full cart priced against the live catalog. Unavailable
// lines are listed but contribute nothing to SubtotalCents or ItemCount.
type CartView struct {
	Lines         []CartLineView `json:"lines"`
	SubtotalCents int64          `json:"subtotalCents"`
	ItemCount     int32          `json:"itemCount"`
}
