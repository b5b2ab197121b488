package service

import (
	"github.com/shopflow/shopflow/internal/domain"
)

// Catalog/cart errors - use domain.ENOTFOUND
var (
	ErrProductNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrVariantNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Variant not found")
	ErrCartLineNotFound = domain.Errorf(domain.ENOTFOUND, "", "Cart item not found")
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidQuantity    = domain.Errorf(domain.EINVALID, "", "Quantity must be between 1 and 99")
	ErrProductUnavailable = domain.Errorf(domain.EINVALID, "", "Product is no longer available")
	ErrEmptyCart          = domain.Errorf(domain.EINVALID, "", "Cart is empty")
)

// Stock errors - use domain.ECONFLICT
// ErrInsufficientStock is wrapped by per-item errors so callers can match it
// with errors.Is while the message names the offending product.
var (
	ErrInsufficientStock = domain.Errorf(domain.ECONFLICT, "", "Insufficient stock for one or more items")
)

// Promo code errors
var (
	ErrPromoNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Invalid promo code")
	ErrPromoNotStarted = domain.Errorf(domain.EINVALID, "", "Promo code is not active yet")
	ErrPromoExpired    = domain.Errorf(domain.EINVALID, "", "Promo code has expired")
	ErrPromoExhausted  = domain.Errorf(domain.ECONFLICT, "", "Promo code usage limit reached")
)

// Order-related errors. Rejected lifecycle moves are EINVALID so the
// cancel and reorder routes answer 400, matching the storefront contract.
var (
	ErrOrderNotFound      = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrOrderNotCancelable = domain.Errorf(domain.EINVALID, "", "Order can no longer be cancelled")
	ErrInvalidStatus      = domain.Errorf(domain.EINVALID, "", "Invalid order status")
	ErrInvalidTransition  = domain.Errorf(domain.EINVALID, "", "Order cannot move to the requested status")
)
