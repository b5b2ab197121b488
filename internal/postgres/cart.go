package postgres

import (
	"context"
	"fmt"

	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/service"
)

const cartLineColumns = `id, user_id, product_id, variant_id, quantity, unit_price_cents, created_at, updated_at`

// ListCartLines returns the user's cart joined with the current catalog
// state, oldest line first.
func (s *Store) ListCartLines(ctx context.Context, userID int64) ([]domain.CartLineDetail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT cl.id, cl.user_id, cl.product_id, cl.variant_id, cl.quantity, cl.unit_price_cents,
		        cl.created_at, cl.updated_at,
		        p.name, p.slug, p.sku, p.image_url, p.price_cents, p.stock_quantity,
		        p.low_stock_threshold, p.is_active,
		        v.id, v.name, v.value, v.price_adjustment_cents, v.stock_quantity
		 FROM cart_lines cl
		 JOIN products p ON p.id = cl.product_id
		 LEFT JOIN product_variants v ON v.id = cl.variant_id
		 WHERE cl.user_id = $1
		 ORDER BY cl.created_at, cl.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	defer rows.Close()

	var details []domain.CartLineDetail
	for rows.Next() {
		var d domain.CartLineDetail
		var variantID *int64
		var variantName, variantValue *string
		var variantAdjustment *int64
		var variantStock *int32

		err := rows.Scan(
			&d.Line.ID, &d.Line.UserID, &d.Line.ProductID, &d.Line.VariantID,
			&d.Line.Quantity, &d.Line.UnitPriceCents, &d.Line.CreatedAt, &d.Line.UpdatedAt,
			&d.Product.Name, &d.Product.Slug, &d.Product.SKU, &d.Product.ImageURL,
			&d.Product.PriceCents, &d.Product.StockQuantity,
			&d.Product.LowStockThreshold, &d.Product.IsActive,
			&variantID, &variantName, &variantValue, &variantAdjustment, &variantStock,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		d.Product.ID = d.Line.ProductID

		if variantID != nil {
			d.Variant = &domain.Variant{
				ID:                   *variantID,
				ProductID:            d.Line.ProductID,
				Name:                 *variantName,
				Value:                *variantValue,
				PriceAdjustmentCents: *variantAdjustment,
				StockQuantity:        *variantStock,
			}
		}

		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}
	return details, nil
}

func (s *Store) GetCartLine(ctx context.Context, id int64) (domain.CartLine, error) {
	var l domain.CartLine
	err := s.db.QueryRow(ctx,
		`SELECT `+cartLineColumns+` FROM cart_lines WHERE id = $1`, id,
	).Scan(&l.ID, &l.UserID, &l.ProductID, &l.VariantID, &l.Quantity, &l.UnitPriceCents, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("failed to get cart line %d: %w", id, err)
	}
	return l, nil
}

// UpsertCartLine inserts a line or merges into the existing line for the
// same (user, product, variant) tuple, capping the merged quantity. The
// unique index treats NULL variant ids as equal so product-only lines
// consolidate too.
func (s *Store) UpsertCartLine(ctx context.Context, arg service.UpsertCartLineParams) (domain.CartLine, error) {
	var l domain.CartLine
	err := s.db.QueryRow(ctx,
		`INSERT INTO cart_lines (user_id, product_id, variant_id, quantity, unit_price_cents)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, product_id, variant_id)
		 DO UPDATE SET
		     quantity = LEAST(cart_lines.quantity + EXCLUDED.quantity, $6::int),
		     unit_price_cents = EXCLUDED.unit_price_cents,
		     updated_at = now()
		 RETURNING `+cartLineColumns,
		arg.UserID, arg.ProductID, arg.VariantID, arg.Quantity, arg.UnitPriceCents, domain.MaxLineQuantity,
	).Scan(&l.ID, &l.UserID, &l.ProductID, &l.VariantID, &l.Quantity, &l.UnitPriceCents, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("failed to upsert cart line: %w", err)
	}
	return l, nil
}

func (s *Store) UpdateCartLineQuantity(ctx context.Context, id int64, quantity int32) (domain.CartLine, error) {
	var l domain.CartLine
	err := s.db.QueryRow(ctx,
		`UPDATE cart_lines SET quantity = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+cartLineColumns,
		id, quantity,
	).Scan(&l.ID, &l.UserID, &l.ProductID, &l.VariantID, &l.Quantity, &l.UnitPriceCents, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("failed to update cart line %d: %w", id, err)
	}
	return l, nil
}

func (s *Store) DeleteCartLine(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete cart line %d: %w", id, err)
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
