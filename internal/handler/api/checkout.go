package api

import (
	"net/http"

	"github.com/shopflow/shopflow/internal/service"
)

// CheckoutHandler handles promo quoting and order placement
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	promoService    service.PromoService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService service.CheckoutService, promoService service.PromoService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		promoService:    promoService,
	}
}

// ApplyPromo handles POST /api/checkout/promo. It prices the cart with
// the promo applied without committing anything.
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var body struct {
		Code string `json:"code" validate:"required"`
	}
	if err := decodeJSON(r, &body); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	quote, err := h.promoService.Apply(r.Context(), uid, body.Code)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Commit handles POST /api/checkout/commit
func (h *CheckoutHandler) Commit(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var params service.CommitParams
	if err := decodeJSON(r, &params); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.checkoutService.Commit(r.Context(), uid, params)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
