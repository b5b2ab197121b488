package postgres

import (
	"context"
	"fmt"

	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/service"
)

const productColumns = `id, name, slug, sku, image_url, price_cents, stock_quantity, low_stock_threshold, is_active`

func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.ImageURL,
		&p.PriceCents, &p.StockQuantity, &p.LowStockThreshold, &p.IsActive,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) GetVariant(ctx context.Context, id int64) (domain.Variant, error) {
	var v domain.Variant
	err := s.db.QueryRow(ctx,
		`SELECT id, product_id, name, value, price_adjustment_cents, stock_quantity
		 FROM product_variants WHERE id = $1`, id,
	).Scan(&v.ID, &v.ProductID, &v.Name, &v.Value, &v.PriceAdjustmentCents, &v.StockQuantity)
	if err != nil {
		return domain.Variant{}, fmt.Errorf("failed to get variant %d: %w", id, err)
	}
	return v, nil
}

// DecrementProductStock takes quantity from the product's stock pool. The
// WHERE guard refuses to go negative; a concurrent buyer who drained the
// stock first surfaces here as pgx.ErrNoRows.
func (s *Store) DecrementProductStock(ctx context.Context, id int64, quantity int32) (service.StockLevel, error) {
	var level service.StockLevel
	err := s.db.QueryRow(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $2, updated_at = now()
		 WHERE id = $1 AND stock_quantity >= $2
		 RETURNING stock_quantity, low_stock_threshold`,
		id, quantity,
	).Scan(&level.Remaining, &level.LowStockThreshold)
	if err != nil {
		return service.StockLevel{}, err
	}
	return level, nil
}

// DecrementVariantStock is DecrementProductStock for a variant's own stock
// pool. The low stock threshold comes from the parent product.
func (s *Store) DecrementVariantStock(ctx context.Context, id int64, quantity int32) (service.StockLevel, error) {
	var level service.StockLevel
	err := s.db.QueryRow(ctx,
		`UPDATE product_variants v
		 SET stock_quantity = v.stock_quantity - $2, updated_at = now()
		 FROM products p
		 WHERE v.id = $1 AND v.stock_quantity >= $2 AND p.id = v.product_id
		 RETURNING v.stock_quantity, p.low_stock_threshold`,
		id, quantity,
	).Scan(&level.Remaining, &level.LowStockThreshold)
	if err != nil {
		return service.StockLevel{}, err
	}
	return level, nil
}
