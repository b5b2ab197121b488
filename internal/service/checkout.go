package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/events"
	"github.com/shopflow/shopflow/internal/pricing"
	"github.com/shopflow/shopflow/internal/telemetry"
)

// CheckoutService converts a cart into an order.
type CheckoutService interface {
	// Commit atomically creates the order: it revalidates every cart line
	// and the promo code against current state, reprices from the live
	// catalog, decrements stock, and records promo usage. Either the whole
	// order exists afterward or nothing changed.
	Commit(ctx context.Context, userID int64, arg CommitParams) (*domain.OrderDetail, error)
}

// CommitParams is the checkout submission. BillingAddress may be omitted,
// in which case the shipping address is billed.
type CommitParams struct {
	ShippingAddress domain.Address  `json:"shippingAddress" validate:"required"`
	BillingAddress  *domain.Address `json:"billingAddress" validate:"omitempty"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required"`
	ShippingMethod  string          `json:"shippingMethod"`
	PromoCode       string          `json:"promoCode"`
}

type checkoutService struct {
	store     Store
	calc      *pricing.Calculator
	publisher events.Publisher
	logger    *slog.Logger
}

// NewCheckoutService creates a new CheckoutService instance.
func NewCheckoutService(store Store, calc *pricing.Calculator, publisher events.Publisher, logger *slog.Logger) CheckoutService {
	return &checkoutService{
		store:     store,
		calc:      calc,
		publisher: publisher,
		logger:    logger,
	}
}

// maxOrderNumberRetries bounds retries when a generated order number collides
// with an existing one.
const maxOrderNumberRetries = 3

func (s *checkoutService) Commit(ctx context.Context, userID int64, arg CommitParams) (*domain.OrderDetail, error) {
	if arg.ShippingMethod == "" {
		arg.ShippingMethod = "standard"
	}
	if arg.BillingAddress == nil {
		arg.BillingAddress = &arg.ShippingAddress
	}

	var detail *domain.OrderDetail
	var err error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		detail, err = s.commitOnce(ctx, userID, arg)
		if err == nil {
			break
		}
		if !isOrderNumberCollision(err) {
			return nil, err
		}
		s.logger.Warn("order number collision, retrying", "attempt", attempt+1)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	// The order exists from here on. Cart cleanup and notifications must
	// not fail the response.
	if err := s.store.ClearCart(ctx, userID); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			"user_id", userID,
			"order_number", detail.Order.OrderNumber,
			"error", err,
		)
	} else if telemetry.Business != nil {
		telemetry.Business.CartCleared.WithLabelValues("purchase").Inc()
	}

	if err := s.publisher.Publish(ctx, events.SubjectOrderCreated, events.OrderCreated{
		OrderID:     detail.Order.ID,
		OrderNumber: detail.Order.OrderNumber,
		UserID:      userID,
		TotalCents:  detail.Order.TotalCents,
		ItemCount:   orderItemCount(detail.Items),
		PromoCode:   NormalizePromoCode(arg.PromoCode),
		CreatedAt:   detail.Order.CreatedAt,
	}); err != nil {
		s.logger.Error("failed to publish order created event",
			"order_number", detail.Order.OrderNumber,
			"error", err,
		)
	}

	if telemetry.Business != nil {
		telemetry.Business.OrdersCreated.Inc()
		telemetry.Business.OrderValue.Observe(float64(detail.Order.TotalCents))
		telemetry.Business.OrderItemCount.Observe(float64(orderItemCount(detail.Items)))
	}

	s.logger.Info("order committed",
		"user_id", userID,
		"order_number", detail.Order.OrderNumber,
		"total_cents", detail.Order.TotalCents,
		"items", len(detail.Items),
	)

	return detail, nil
}

// commitOnce runs one full checkout transaction attempt.
func (s *checkoutService) commitOnce(ctx context.Context, userID int64, arg CommitParams) (*domain.OrderDetail, error) {
	var detail *domain.OrderDetail

	err := s.store.WithTx(ctx, func(tx Store) error {
		details, err := tx.ListCartLines(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list cart lines: %w", err)
		}
		if len(details) == 0 {
			return ErrEmptyCart
		}

		// Revalidate and reprice every line against current catalog state.
		// Prices captured at add-to-cart time are advisory only.
		var subtotal int64
		for _, d := range details {
			if !d.Product.IsActive {
				return &domain.Error{
					Code:    domain.EINVALID,
					Message: fmt.Sprintf("%s is no longer available", d.Product.Name),
					Err:     ErrProductUnavailable,
				}
			}
			stock := d.Product.StockQuantity
			if d.Variant != nil {
				stock = d.Variant.StockQuantity
			}
			if d.Line.Quantity > stock {
				return insufficientStock(d.Product.Name, stock)
			}
			subtotal += domain.UnitPriceCents(&d.Product, d.Variant) * int64(d.Line.Quantity)
		}

		var promo *domain.PromoCode
		var discountCents int64
		if arg.PromoCode != "" {
			promo, err = lookupPromo(ctx, tx, arg.PromoCode)
			if err != nil {
				return err
			}
			discount, err := EvaluatePromo(promo, subtotal, time.Now())
			if err != nil {
				return err
			}
			discountCents = discount.AmountCents
		}

		amounts := s.calc.Quote(subtotal, discountCents)

		number, err := GenerateOrderNumber(time.Now())
		if err != nil {
			return err
		}

		params := CreateOrderParams{
			UserID:          userID,
			OrderNumber:     number,
			Status:          domain.OrderPending,
			ShippingAddress: arg.ShippingAddress,
			BillingAddress:  *arg.BillingAddress,
			SubtotalCents:   amounts.SubtotalCents,
			ShippingCents:   amounts.ShippingCents,
			TaxCents:        amounts.TaxCents,
			DiscountCents:   amounts.DiscountCents,
			TotalCents:      amounts.TotalCents,
			PaymentMethod:   arg.PaymentMethod,
			PaymentStatus:   "paid",
			ShippingMethod:  arg.ShippingMethod,
		}
		if promo != nil {
			params.PromoCodeID = &promo.ID
		}

		order, err := tx.CreateOrder(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		items := make([]domain.OrderItem, 0, len(details))
		for _, d := range details {
			unitPrice := domain.UnitPriceCents(&d.Product, d.Variant)
			snapshot := domain.ProductSnapshot{
				Name:           d.Product.Name,
				Image:          d.Product.ImageURL,
				SKU:            d.Product.SKU,
				UnitPriceCents: unitPrice,
			}
			if d.Variant != nil {
				snapshot.VariantName = d.Variant.Name
				snapshot.VariantValue = d.Variant.Value
			}

			item, err := tx.CreateOrderItem(ctx, CreateOrderItemParams{
				OrderID:         order.ID,
				ProductID:       d.Product.ID,
				VariantID:       d.Line.VariantID,
				Quantity:        d.Line.Quantity,
				UnitPriceCents:  unitPrice,
				TotalPriceCents: unitPrice * int64(d.Line.Quantity),
				Snapshot:        snapshot,
			})
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			items = append(items, item)

			if err := s.decrementStock(ctx, tx, d); err != nil {
				return err
			}
		}

		if promo != nil {
			if err := tx.IncrementPromoUses(ctx, promo.ID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrPromoExhausted
				}
				return fmt.Errorf("failed to increment promo uses: %w", err)
			}
		}

		detail = &domain.OrderDetail{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// decrementStock takes inventory for one committed line. The store's guarded
// update reports pgx.ErrNoRows when another transaction drained the stock
// first.
func (s *checkoutService) decrementStock(ctx context.Context, tx Store, d domain.CartLineDetail) error {
	var level StockLevel
	var err error
	if d.Line.VariantID != nil {
		level, err = tx.DecrementVariantStock(ctx, *d.Line.VariantID, d.Line.Quantity)
	} else {
		level, err = tx.DecrementProductStock(ctx, d.Line.ProductID, d.Line.Quantity)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			stock := d.Product.StockQuantity
			if d.Variant != nil {
				stock = d.Variant.StockQuantity
			}
			return insufficientStock(d.Product.Name, stock)
		}
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if level.Remaining <= level.LowStockThreshold {
		s.logger.Warn("product low on stock",
			"product_id", d.Product.ID,
			"sku", d.Product.SKU,
			"remaining", level.Remaining,
		)
		if telemetry.Business != nil {
			telemetry.Business.LowStock.WithLabelValues(d.Product.SKU).Inc()
		}
	}
	return nil
}

// isOrderNumberCollision detects a unique violation on the order number
// column, the one write conflict worth retrying.
func isOrderNumberCollision(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "order_number")
}

func orderItemCount(items []domain.OrderItem) int32 {
	var n int32
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
