package api

import (
	"net/http"
	"strconv"

	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/service"
)

// OrderHandler handles order history and lifecycle routes
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /api/orders?page=1&limit=10
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	page := queryInt32(r, "page", 1)
	limit := queryInt32(r, "limit", 10)

	result, err := h.orderService.ListOrders(r.Context(), uid, page, limit)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), uid, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orderService.Cancel(r.Context(), uid, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// UpdateStatus handles POST /api/orders/{id}/status. Operator only;
// the route is gated by RequireAdmin so the order is looked up without
// an owner scope.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if err := decodeJSON(r, &body); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, domain.OrderStatus(body.Status))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Reorder handles POST /api/orders/{id}/reorder
func (h *OrderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	orderID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.orderService.Reorder(r.Context(), uid, orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// queryInt32 parses an int query parameter, falling back to def on
// missing or malformed values. Range clamping happens in the service.
func queryInt32(r *http.Request, name string, def int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}
