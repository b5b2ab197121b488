package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/service"
)

const orderColumns = `id, user_id, order_number, status, shipping_address, billing_address,
	subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents,
	payment_method, payment_status, shipping_method, tracking_number, promo_code_id,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	var shipping, billing []byte
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &shipping, &billing,
		&o.SubtotalCents, &o.ShippingCents, &o.TaxCents, &o.DiscountCents, &o.TotalCents,
		&o.PaymentMethod, &o.PaymentStatus, &o.ShippingMethod, &o.TrackingNumber, &o.PromoCodeID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return domain.Order{}, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	if err := json.Unmarshal(billing, &o.BillingAddress); err != nil {
		return domain.Order{}, fmt.Errorf("failed to decode billing address: %w", err)
	}
	return o, nil
}

// CreateOrder inserts the order header. Addresses are stored as JSONB
// snapshots of the submitted payload.
func (s *Store) CreateOrder(ctx context.Context, arg service.CreateOrderParams) (domain.Order, error) {
	shipping, err := json.Marshal(arg.ShippingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to encode shipping address: %w", err)
	}
	billing, err := json.Marshal(arg.BillingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to encode billing address: %w", err)
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO orders (
		     user_id, order_number, status, shipping_address, billing_address,
		     subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents,
		     payment_method, payment_status, shipping_method, promo_code_id
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+orderColumns,
		arg.UserID, arg.OrderNumber, arg.Status, shipping, billing,
		arg.SubtotalCents, arg.ShippingCents, arg.TaxCents, arg.DiscountCents, arg.TotalCents,
		arg.PaymentMethod, arg.PaymentStatus, arg.ShippingMethod, arg.PromoCodeID,
	)
	order, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (s *Store) CreateOrderItem(ctx context.Context, arg service.CreateOrderItemParams) (domain.OrderItem, error) {
	snapshot, err := json.Marshal(arg.Snapshot)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("failed to encode product snapshot: %w", err)
	}

	var item domain.OrderItem
	var raw []byte
	err = s.db.QueryRow(ctx,
		`INSERT INTO order_items (
		     order_id, product_id, variant_id, quantity,
		     unit_price_cents, total_price_cents, product_snapshot
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, order_id, product_id, variant_id, quantity,
		           unit_price_cents, total_price_cents, product_snapshot`,
		arg.OrderID, arg.ProductID, arg.VariantID, arg.Quantity,
		arg.UnitPriceCents, arg.TotalPriceCents, snapshot,
	).Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Quantity,
		&item.UnitPriceCents, &item.TotalPriceCents, &raw)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("failed to create order item: %w", err)
	}
	if err := json.Unmarshal(raw, &item.Snapshot); err != nil {
		return domain.OrderItem{}, fmt.Errorf("failed to decode product snapshot: %w", err)
	}
	return item, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	order, err := scanOrder(s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	))
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, arg service.ListOrdersParams) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		arg.UserID, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

func (s *Store) CountOrders(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (s *Store) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, order_id, product_id, variant_id, quantity,
		        unit_price_cents, total_price_cents, product_snapshot
		 FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var raw []byte
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Quantity,
			&item.UnitPriceCents, &item.TotalPriceCents, &raw)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if err := json.Unmarshal(raw, &item.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode product snapshot: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return items, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, arg service.UpdateOrderStatusParams) (domain.Order, error) {
	order, err := scanOrder(s.db.QueryRow(ctx,
		`UPDATE orders
		 SET status = $2, tracking_number = COALESCE($3, tracking_number), updated_at = now()
		 WHERE id = $1
		 RETURNING `+orderColumns,
		arg.OrderID, arg.Status, arg.TrackingNumber,
	))
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}
