package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/telemetry"
)

// CartService provides business logic for shopping cart operations.
// Carts are keyed by user; every view is repriced against the live catalog.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (*domain.CartView, error)
	AddLine(ctx context.Context, userID int64, arg AddLineParams) (*domain.CartView, error)
	UpdateLine(ctx context.Context, userID int64, lineID int64, quantity int32) (*domain.CartView, error)
	RemoveLine(ctx context.Context, userID int64, lineID int64) (*domain.CartView, error)
}

// AddLineParams identifies what to add and how many.
type AddLineParams struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	VariantID *int64 `json:"variantId" validate:"omitempty,gt=0"`
	Quantity  int32  `json:"quantity" validate:"required,gt=0"`
}

type cartService struct {
	store Store
}

// NewCartService creates a new CartService instance.
func NewCartService(store Store) CartService {
	return &cartService{store: store}
}

// GetCart returns the cart priced against the live catalog. Lines whose
// product has been deactivated are marked unavailable and excluded from the
// subtotal.
func (s *cartService) GetCart(ctx context.Context, userID int64) (*domain.CartView, error) {
	details, err := s.store.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	return buildCartView(details), nil
}

// AddLine adds a product (optionally a specific variant) to the cart. Adding
// a tuple that is already in the cart merges quantities, capped at
// domain.MaxLineQuantity.
func (s *cartService) AddLine(ctx context.Context, userID int64, arg AddLineParams) (*domain.CartView, error) {
	if arg.Quantity < 1 || arg.Quantity > domain.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := s.store.GetProduct(ctx, arg.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	var variant *domain.Variant
	if arg.VariantID != nil {
		v, err := s.store.GetVariant(ctx, *arg.VariantID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrVariantNotFound
			}
			return nil, fmt.Errorf("failed to get variant: %w", err)
		}
		if v.ProductID != product.ID {
			return nil, ErrVariantNotFound
		}
		variant = &v
	}

	// Variant stock governs when a variant is selected; otherwise the
	// product pool does.
	stock := product.StockQuantity
	if variant != nil {
		stock = variant.StockQuantity
	}
	if arg.Quantity > stock {
		return nil, insufficientStock(product.Name, stock)
	}

	_, err = s.store.UpsertCartLine(ctx, UpsertCartLineParams{
		UserID:         userID,
		ProductID:      product.ID,
		VariantID:      arg.VariantID,
		Quantity:       arg.Quantity,
		UnitPriceCents: domain.UnitPriceCents(&product, variant),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart line: %w", err)
	}

	if telemetry.Business != nil {
		telemetry.Business.CartItemsAdded.WithLabelValues(product.Slug).Add(float64(arg.Quantity))
	}

	return s.GetCart(ctx, userID)
}

// UpdateLine sets the quantity of an existing line. A quantity of zero
// removes the line.
func (s *cartService) UpdateLine(ctx context.Context, userID int64, lineID int64, quantity int32) (*domain.CartView, error) {
	if quantity == 0 {
		return s.RemoveLine(ctx, userID, lineID)
	}
	if quantity < 0 || quantity > domain.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductUnavailable
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	stock := product.StockQuantity
	if line.VariantID != nil {
		variant, err := s.store.GetVariant(ctx, *line.VariantID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrProductUnavailable
			}
			return nil, fmt.Errorf("failed to get variant: %w", err)
		}
		stock = variant.StockQuantity
	}
	if quantity > stock {
		return nil, insufficientStock(product.Name, stock)
	}

	if _, err := s.store.UpdateCartLineQuantity(ctx, lineID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart line quantity: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// RemoveLine deletes a line from the cart.
func (s *cartService) RemoveLine(ctx context.Context, userID int64, lineID int64) (*domain.CartView, error) {
	if _, err := s.ownedLine(ctx, userID, lineID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteCartLine(ctx, lineID); err != nil {
		return nil, fmt.Errorf("failed to delete cart line: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// ownedLine loads a cart line and verifies it belongs to userID. Lines owned
// by other users are reported as not found rather than forbidden.
func (s *cartService) ownedLine(ctx context.Context, userID, lineID int64) (domain.CartLine, error) {
	line, err := s.store.GetCartLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartLine{}, ErrCartLineNotFound
		}
		return domain.CartLine{}, fmt.Errorf("failed to get cart line: %w", err)
	}
	if line.UserID != userID {
		return domain.CartLine{}, ErrCartLineNotFound
	}
	return line, nil
}

// buildCartView reprices cart lines against the catalog state in details.
func buildCartView(details []domain.CartLineDetail) *domain.CartView {
	view := &domain.CartView{Lines: make([]domain.CartLineView, 0, len(details))}

	for _, d := range details {
		lv := domain.CartLineView{
			ID:          d.Line.ID,
			ProductID:   d.Product.ID,
			VariantID:   d.Line.VariantID,
			ProductName: d.Product.Name,
			ProductSlug: d.Product.Slug,
			SKU:         d.Product.SKU,
			ImageURL:    d.Product.ImageURL,
			Quantity:    d.Line.Quantity,
		}

		if !d.Product.IsActive {
			lv.Unavailable = true
			view.Lines = append(view.Lines, lv)
			continue
		}

		lv.UnitPriceCents = domain.UnitPriceCents(&d.Product, d.Variant)
		lv.LineTotalCents = lv.UnitPriceCents * int64(d.Line.Quantity)
		lv.StockQuantity = d.Product.StockQuantity
		if d.Variant != nil {
			lv.VariantName = d.Variant.Name
			lv.VariantValue = d.Variant.Value
			lv.StockQuantity = d.Variant.StockQuantity
		}

		view.SubtotalCents += lv.LineTotalCents
		view.ItemCount += d.Line.Quantity
		view.Lines = append(view.Lines, lv)
	}

	return view
}

// insufficientStock builds a per-item stock error that still matches
// ErrInsufficientStock via errors.Is.
func insufficientStock(productName string, available int32) error {
	return &domain.Error{
		Code:    domain.ECONFLICT,
		Message: fmt.Sprintf("Insufficient stock for %s (%d available)", productName, available),
		Err:     ErrInsufficientStock,
	}
}
