package service

import (
	"context"

	"github.com/shopflow/shopflow/internal/domain"
)

// Store is the persistence boundary for the fulfillment engine. The postgres
// package provides the production implementation; tests substitute fakes.
//
// Row-not-found is reported as pgx.ErrNoRows so services can translate it
// into domain errors. Guarded updates (stock decrements, promo usage
// increments) also report pgx.ErrNoRows when the guard rejects the row.
type Store interface {
	// Catalog (read-only except for stock decrements at commit time)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	GetVariant(ctx context.Context, id int64) (domain.Variant, error)
	DecrementProductStock(ctx context.Context, id int64, quantity int32) (StockLevel, error)
	DecrementVariantStock(ctx context.Context, id int64, quantity int32) (StockLevel, error)

	// Cart
	ListCartLines(ctx context.Context, userID int64) ([]domain.CartLineDetail, error)
	GetCartLine(ctx context.Context, id int64) (domain.CartLine, error)
	UpsertCartLine(ctx context.Context, arg UpsertCartLineParams) (domain.CartLine, error)
	UpdateCartLineQuantity(ctx context.Context, id int64, quantity int32) (domain.CartLine, error)
	DeleteCartLine(ctx context.Context, id int64) error
	ClearCart(ctx context.Context, userID int64) error

	// Promo codes
	GetPromoByCode(ctx context.Context, code string) (domain.PromoCode, error)
	IncrementPromoUses(ctx context.Context, id int64) error

	// Orders
	CreateOrder(ctx context.Context, arg CreateOrderParams) (domain.Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	ListOrders(ctx context.Context, arg ListOrdersParams) ([]domain.Order, error)
	CountOrders(ctx context.Context, userID int64) (int64, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (domain.Order, error)

	// WithTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// StockLevel is what a guarded stock decrement returns for the affected row.
type StockLevel struct {
	Remaining         int32
	LowStockThreshold int32
}

// UpsertCartLineParams inserts a cart line or merges into an existing line
// for the same (user, product, variant) tuple. The store caps the merged
// quantity at domain.MaxLineQuantity.
type UpsertCartLineParams struct {
	UserID         int64
	ProductID      int64
	VariantID      *int64
	Quantity       int32
	UnitPriceCents int64
}

// CreateOrderParams creates the order header row.
type CreateOrderParams struct {
	UserID      int64
	OrderNumber string
	Status      domain.OrderStatus

	ShippingAddress domain.Address
	BillingAddress  domain.Address

	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	DiscountCents int64
	TotalCents    int64

	PaymentMethod  string
	PaymentStatus  string
	ShippingMethod string

	PromoCodeID *int64
}

// CreateOrderItemParams creates one immutable order line with its product
// snapshot.
type CreateOrderItemParams struct {
	OrderID   int64
	ProductID int64
	VariantID *int64

	Quantity        int32
	UnitPriceCents  int64
	TotalPriceCents int64

	Snapshot domain.ProductSnapshot
}

// ListOrdersParams pages through a user's order history, newest first.
type ListOrdersParams struct {
	UserID int64
	Limit  int32
	Offset int32
}

// UpdateOrderStatusParams moves an order to a new status. TrackingNumber is
// only set when the order ships.
type UpdateOrderStatusParams struct {
	OrderID        int64
	Status         domain.OrderStatus
	TrackingNumber *string
}
