package domain

// Product is the catalog view the engine reads. The catalog itself is
// maintained elsewhere; this core only reads price, stock, and activity,
// and decrements stock inside the checkout transaction.
type Product struct {
	ID                int64
	Name              string
	Slug              string
	SKU               string
	ImageURL          string
	PriceCents        int64
	StockQuantity     int32
	LowStockThreshold int32
	IsActive          bool
}

// Variant is a purchasable sub-option of a product (e.g. Size/M) with its
// own stock pool and a price adjustment added to the parent product price.
type Variant struct {
	ID                   int64
	ProductID            int64
	Name                 string
	Value                string
	PriceAdjustmentCents int64
	StockQuantity        int32
}

// UnitPriceCents returns the effective unit price for a product with an
// optional variant applied.
func UnitPriceCents(p *Product, v *Variant) int64 {
	price := p.PriceCents
	if v != nil {
		price += v.PriceAdjustmentCents
	}
	return price
}
