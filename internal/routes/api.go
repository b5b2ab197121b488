package routes

import (
	"log/slog"

	"github.com/shopflow/shopflow/internal/middleware"
	"github.com/shopflow/shopflow/internal/router"
)

// RegisterAPIRoutes registers the storefront API. Every route requires a
// bearer token; status updates additionally require the admin role.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Request logger runs after auth so it can tag entries with the user ID.
	authed := r.Group(
		middleware.RequireUser(deps.JWTSecret),
		middleware.WithRequestLogger(logger),
	)

	// Cart
	authed.Get("/api/cart", deps.CartHandler.View)
	authed.Post("/api/cart/lines", deps.CartHandler.AddLine)
	authed.Put("/api/cart/lines/{id}", deps.CartHandler.UpdateLine)
	authed.Delete("/api/cart/lines/{id}", deps.CartHandler.RemoveLine)

	// Checkout
	authed.Post("/api/checkout/promo", deps.CheckoutHandler.ApplyPromo)
	if deps.CheckoutLimiter != nil {
		authed.Post("/api/checkout/commit", deps.CheckoutHandler.Commit, deps.CheckoutLimiter.Middleware)
	} else {
		authed.Post("/api/checkout/commit", deps.CheckoutHandler.Commit)
	}

	// Orders
	authed.Get("/api/orders", deps.OrderHandler.List)
	authed.Get("/api/orders/{id}", deps.OrderHandler.Get)
	authed.Post("/api/orders/{id}/cancel", deps.OrderHandler.Cancel)
	authed.Post("/api/orders/{id}/status", deps.OrderHandler.UpdateStatus, middleware.RequireAdmin)
	authed.Post("/api/orders/{id}/reorder", deps.OrderHandler.Reorder)
}
