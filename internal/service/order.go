package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/events"
	"github.com/shopflow/shopflow/internal/telemetry"
)

// OrderService provides business logic for order history and lifecycle
// operations. Orders are immutable after creation except for status moves.
type OrderService interface {
	// ListOrders pages through a user's orders, newest first.
	ListOrders(ctx context.Context, userID int64, page, limit int32) (*OrderPage, error)

	// GetOrder retrieves a single order with its items, scoped to the owner.
	GetOrder(ctx context.Context, userID, orderID int64) (*domain.OrderDetail, error)

	// Cancel cancels an order that has not shipped yet.
	Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error)

	// UpdateStatus moves an order along the fulfillment path. Shipping an
	// order assigns a tracking number. This is an operator action and is
	// not owner-scoped.
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)

	// Reorder repopulates the cart from a past order at current prices.
	// All items must still be purchasable or nothing changes.
	Reorder(ctx context.Context, userID, orderID int64) (*domain.CartView, error)
}

// OrderPage is one page of order history.
type OrderPage struct {
	Orders []domain.Order `json:"orders"`
	Page   int32          `json:"page"`
	Limit  int32          `json:"limit"`
	Total  int64          `json:"total"`
}

const (
	defaultOrdersPerPage int32 = 10
	maxOrdersPerPage     int32 = 50
)

type orderService struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(store Store, publisher events.Publisher, logger *slog.Logger) OrderService {
	return &orderService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *orderService) ListOrders(ctx context.Context, userID int64, page, limit int32) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultOrdersPerPage
	}
	if limit > maxOrdersPerPage {
		limit = maxOrdersPerPage
	}

	orders, err := s.store.ListOrders(ctx, ListOrdersParams{
		UserID: userID,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	total, err := s.store.CountOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	return &OrderPage{
		Orders: orders,
		Page:   page,
		Limit:  limit,
		Total:  total,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID int64) (*domain.OrderDetail, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	return &domain.OrderDetail{Order: order, Items: items}, nil
}

func (s *orderService) Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanCancel(order.Status) {
		return nil, ErrOrderNotCancelable
	}

	updated, err := s.store.UpdateOrderStatus(ctx, UpdateOrderStatusParams{
		OrderID: order.ID,
		Status:  domain.OrderCancelled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.publishStatusChange(ctx, events.SubjectOrderCancelled, order, updated.Status)
	if telemetry.Business != nil {
		telemetry.Business.OrdersCancelled.Inc()
	}
	s.logger.Info("order cancelled",
		"order_number", order.OrderNumber,
		"user_id", userID,
	)

	return &updated, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, ErrInvalidTransition
	}

	params := UpdateOrderStatusParams{OrderID: order.ID, Status: status}
	if status == domain.OrderShipped && order.TrackingNumber == nil {
		tracking, err := GenerateTrackingNumber(time.Now())
		if err != nil {
			return nil, err
		}
		params.TrackingNumber = &tracking
	}

	updated, err := s.store.UpdateOrderStatus(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.publishStatusChange(ctx, events.SubjectOrderStatus, order, status)
	s.logger.Info("order status updated",
		"order_number", order.OrderNumber,
		"from", order.Status,
		"to", status,
	)

	return &updated, nil
}

// Reorder validates every item of a past order against the current catalog
// and, if all are purchasable, replaces the cart contents with them at
// current prices.
func (s *orderService) Reorder(ctx context.Context, userID, orderID int64) (*domain.CartView, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		type addition struct {
			item    domain.OrderItem
			product domain.Product
			variant *domain.Variant
		}

		additions := make([]addition, 0, len(items))
		var unavailable []string
		for _, item := range items {
			product, err := tx.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					unavailable = append(unavailable, item.Snapshot.Name)
					continue
				}
				return fmt.Errorf("failed to get product: %w", err)
			}
			if !product.IsActive {
				unavailable = append(unavailable, product.Name)
				continue
			}

			var variant *domain.Variant
			stock := product.StockQuantity
			if item.VariantID != nil {
				v, err := tx.GetVariant(ctx, *item.VariantID)
				if err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						unavailable = append(unavailable, item.Snapshot.Name)
						continue
					}
					return fmt.Errorf("failed to get variant: %w", err)
				}
				variant = &v
				stock = v.StockQuantity
			}
			if item.Quantity > stock {
				unavailable = append(unavailable, product.Name)
				continue
			}

			additions = append(additions, addition{item: item, product: product, variant: variant})
		}

		if len(unavailable) > 0 {
			return domain.Errorf(domain.EINVALID, "",
				"Cannot reorder, some items are unavailable: %s",
				strings.Join(unavailable, ", "))
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		for _, a := range additions {
			_, err := tx.UpsertCartLine(ctx, UpsertCartLineParams{
				UserID:         userID,
				ProductID:      a.product.ID,
				VariantID:      a.item.VariantID,
				Quantity:       a.item.Quantity,
				UnitPriceCents: domain.UnitPriceCents(&a.product, a.variant),
			})
			if err != nil {
				return fmt.Errorf("failed to upsert cart line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order reordered",
		"order_number", order.OrderNumber,
		"user_id", userID,
	)

	details, err := s.store.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	return buildCartView(details), nil
}

func (s *orderService) ownedOrder(ctx context.Context, userID, orderID int64) (domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != userID {
		return domain.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) publishStatusChange(ctx context.Context, subject string, order domain.Order, to domain.OrderStatus) {
	if err := s.publisher.Publish(ctx, subject, events.OrderStatusChanged{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		From:        string(order.Status),
		To:          string(to),
	}); err != nil {
		s.logger.Error("failed to publish order status event",
			"order_number", order.OrderNumber,
			"error", err,
		)
	}
}
