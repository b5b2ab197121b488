package api

import (
	"net/http"

	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/pricing"
	"github.com/shopflow/shopflow/internal/service"
)

// CartHandler handles all cart routes
type CartHandler struct {
	cartService service.CartService
	calc        *pricing.Calculator
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService service.CartService, calc *pricing.Calculator) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		calc:        calc,
	}
}

// cartResponse is a cart view plus an undiscounted price quote.
type cartResponse struct {
	*domain.CartView
	Amounts pricing.Amounts `json:"amounts"`
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, cart *domain.CartView) {
	respondJSON(w, status, cartResponse{
		CartView: cart,
		Amounts:  h.calc.Quote(cart.SubtotalCents, 0),
	})
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), uid)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.respondCart(w, http.StatusOK, cart)
}

// AddLine handles POST /api/cart/lines
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var params service.AddLineParams
	if err := decodeJSON(r, &params); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.cartService.AddLine(r.Context(), uid, params)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.respondCart(w, http.StatusCreated, cart)
}

// UpdateLine handles PUT /api/cart/lines/{id}
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	lineID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var body struct {
		Quantity int32 `json:"quantity" validate:"gte=0"`
	}
	if err := decodeJSON(r, &body); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.cartService.UpdateLine(r.Context(), uid, lineID, body.Quantity)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.respondCart(w, http.StatusOK, cart)
}

// RemoveLine handles DELETE /api/cart/lines/{id}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	lineID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.cartService.RemoveLine(r.Context(), uid, lineID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.respondCart(w, http.StatusOK, cart)
}
