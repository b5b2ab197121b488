package routes

import (
	"log/slog"

	"github.com/shopflow/shopflow/internal/handler/api"
	"github.com/shopflow/shopflow/internal/middleware"
)

// APIDeps contains dependencies for the storefront API routes
type APIDeps struct {
	// JWTSecret signs and verifies bearer tokens
	JWTSecret string

	// Logger is the base logger request-scoped loggers derive from
	Logger *slog.Logger

	// Cart (consolidated: view, lines, promo quote)
	CartHandler *api.CartHandler

	// Checkout
	CheckoutHandler *api.CheckoutHandler

	// Orders (consolidated: history, detail, cancel, status, reorder)
	OrderHandler *api.OrderHandler

	// CheckoutLimiter throttles order placement per client IP
	CheckoutLimiter *middleware.RateLimiter
}
