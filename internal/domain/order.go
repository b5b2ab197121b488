package domain

import "time"

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// statusRank orders the forward fulfillment path.
var statusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanCancel reports whether an order in status s may be cancelled.
// Cancellation is only allowed before the order ships.
func CanCancel(s OrderStatus) bool {
	return s == OrderPending || s == OrderProcessing
}

// CanTransition reports whether an order may move from one status to
// another. The fulfillment path is strictly forward (pending, processing,
// shipped, delivered); cancelled is reachable from pending or processing
// only; delivered and cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == OrderCancelled {
		return CanCancel(from)
	}
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// Address is the structured shipping/billing address persisted on the order
// as an opaque snapshot. Field names follow the storefront payload.
type Address struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	StreetAddress string `json:"street_address" validate:"required"`
	Apartment     string `json:"apartment,omitempty"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	PostalCode    string `json:"postal_code" validate:"required"`
	Country       string `json:"country" validate:"required"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
}

// Order is created once by the checkout transaction. Status transitions are
// the only permitted mutation afterward; orders are never deleted.
type Order struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"-"`
	OrderNumber string      `json:"orderNumber"`
	Status      OrderStatus `json:"status"`

	ShippingAddress Address `json:"shippingAddress"`
	BillingAddress  Address `json:"billingAddress"`

	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	TaxCents      int64 `json:"taxCents"`
	DiscountCents int64 `json:"discountCents"`
	TotalCents    int64 `json:"totalCents"`

	PaymentMethod  string `json:"paymentMethod"`
	PaymentStatus  string `json:"paymentStatus"`
	ShippingMethod string `json:"shippingMethod"`

	TrackingNumber *string `json:"trackingNumber,omitempty"`
	PromoCodeID    *int64  `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductSnapshot is the immutable copy of product data captured at commit
// time. Orders stay historically accurate even if the product is later
// renamed, repriced, or deleted.
type ProductSnapshot struct {
	Name           string `json:"name"`
	Image          string `json:"image,omitempty"`
	SKU            string `json:"sku"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	VariantName    string `json:"variantName,omitempty"`
	VariantValue   string `json:"variantValue,omitempty"`
}

// OrderItem belongs to exactly one order and is never mutated. ProductID and
// VariantID are kept for traceability; Snapshot is authoritative for display.
type OrderItem struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"-"`
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`

	Quantity        int32 `json:"quantity"`
	UnitPriceCents  int64 `json:"unitPriceCents"`
	TotalPriceCents int64 `json:"totalPriceCents"`

	Snapshot ProductSnapshot `json:"productSnapshot"`
}

// OrderDetail aggregates an order with its items.
type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
