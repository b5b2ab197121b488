package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/middleware"
	"github.com/shopflow/shopflow/internal/pricing"
	"github.com/shopflow/shopflow/internal/service"
)

// mockCartService implements service.CartService for testing
type mockCartService struct {
	getCartFunc    func(ctx context.Context, userID int64) (*domain.CartView, error)
	addLineFunc    func(ctx context.Context, userID int64, arg service.AddLineParams) (*domain.CartView, error)
	updateLineFunc func(ctx context.Context, userID, lineID int64, quantity int32) (*domain.CartView, error)
	removeLineFunc func(ctx context.Context, userID, lineID int64) (*domain.CartView, error)
}

func (m *mockCartService) GetCart(ctx context.Context, userID int64) (*domain.CartView, error) {
	if m.getCartFunc != nil {
		return m.getCartFunc(ctx, userID)
	}
	return &domain.CartView{}, nil
}

func (m *mockCartService) AddLine(ctx context.Context, userID int64, arg service.AddLineParams) (*domain.CartView, error) {
	if m.addLineFunc != nil {
		return m.addLineFunc(ctx, userID, arg)
	}
	return &domain.CartView{}, nil
}

func (m *mockCartService) UpdateLine(ctx context.Context, userID, lineID int64, quantity int32) (*domain.CartView, error) {
	if m.updateLineFunc != nil {
		return m.updateLineFunc(ctx, userID, lineID, quantity)
	}
	return &domain.CartView{}, nil
}

func (m *mockCartService) RemoveLine(ctx context.Context, userID, lineID int64) (*domain.CartView, error) {
	if m.removeLineFunc != nil {
		return m.removeLineFunc(ctx, userID, lineID)
	}
	return &domain.CartView{}, nil
}

func newCartHandler(cart service.CartService) *CartHandler {
	return NewCartHandler(cart, pricing.NewCalculator(pricing.DefaultConfig()))
}

// asUser attaches an authenticated user ID the way RequireUser does.
func asUser(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

func decodeErrorCode(t *testing.T, body string) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp.Error.Code
}

func TestCartHandler_View(t *testing.T) {
	cart := &mockCartService{
		getCartFunc: func(ctx context.Context, userID int64) (*domain.CartView, error) {
			assert.Equal(t, int64(7), userID)
			return &domain.CartView{
				Lines: []domain.CartLineView{
					{ID: 1, ProductID: 2, ProductName: "Pour Over Kettle", Quantity: 2, UnitPriceCents: 600, LineTotalCents: 1200},
				},
				SubtotalCents: 1200,
				ItemCount:     2,
			}, nil
		},
	}
	h := newCartHandler(cart)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/cart", nil), 7)
	rec := httptest.NewRecorder()

	h.View(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var view struct {
		domain.CartView
		Amounts pricing.Amounts `json:"amounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, int64(1200), view.SubtotalCents)
	assert.Len(t, view.Lines, 1)

	// The quote block prices the cart without a promo: below the free
	// shipping threshold, flat fee plus 8% tax.
	assert.Equal(t, int64(999), view.Amounts.ShippingCents)
	assert.Equal(t, int64(96), view.Amounts.TaxCents)
	assert.Equal(t, int64(2295), view.Amounts.TotalCents)
}

func TestCartHandler_View_Unauthenticated(t *testing.T) {
	h := newCartHandler(&mockCartService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	h.View(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.EUNAUTHORIZED, decodeErrorCode(t, rec.Body.String()))
}

func TestCartHandler_AddLine(t *testing.T) {
	var got service.AddLineParams
	cart := &mockCartService{
		addLineFunc: func(ctx context.Context, userID int64, arg service.AddLineParams) (*domain.CartView, error) {
			got = arg
			return &domain.CartView{ItemCount: arg.Quantity}, nil
		},
	}
	h := newCartHandler(cart)

	body := `{"productId": 3, "quantity": 2}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/cart/lines", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()

	h.AddLine(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(3), got.ProductID)
	assert.Equal(t, int32(2), got.Quantity)
	assert.Nil(t, got.VariantID)
}

func TestCartHandler_AddLine_RejectsUnknownFields(t *testing.T) {
	h := newCartHandler(&mockCartService{})

	body := `{"productId": 3, "quantity": 2, "price": 1}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/cart/lines", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()

	h.AddLine(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.EINVALID, decodeErrorCode(t, rec.Body.String()))
}

func TestCartHandler_AddLine_ValidationError(t *testing.T) {
	h := newCartHandler(&mockCartService{})

	// Missing quantity
	body := `{"productId": 3}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/cart/lines", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()

	h.AddLine(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_AddLine_ServiceError(t *testing.T) {
	cart := &mockCartService{
		addLineFunc: func(ctx context.Context, userID int64, arg service.AddLineParams) (*domain.CartView, error) {
			return nil, service.ErrProductNotFound
		},
	}
	h := newCartHandler(cart)

	body := `{"productId": 99, "quantity": 1}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/cart/lines", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()

	h.AddLine(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.ENOTFOUND, decodeErrorCode(t, rec.Body.String()))
}

func TestCartHandler_UpdateLine(t *testing.T) {
	var gotLineID int64
	var gotQuantity int32
	cart := &mockCartService{
		updateLineFunc: func(ctx context.Context, userID, lineID int64, quantity int32) (*domain.CartView, error) {
			gotLineID = lineID
			gotQuantity = quantity
			return &domain.CartView{}, nil
		},
	}
	h := newCartHandler(cart)

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/cart/lines/5", strings.NewReader(`{"quantity": 3}`)), 7)
	req.SetPathValue("id", "5")
	rec := httptest.NewRecorder()

	h.UpdateLine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), gotLineID)
	assert.Equal(t, int32(3), gotQuantity)
}

func TestCartHandler_UpdateLine_BadID(t *testing.T) {
	h := newCartHandler(&mockCartService{})

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/cart/lines/abc", strings.NewReader(`{"quantity": 3}`)), 7)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()

	h.UpdateLine(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_RemoveLine(t *testing.T) {
	cart := &mockCartService{
		removeLineFunc: func(ctx context.Context, userID, lineID int64) (*domain.CartView, error) {
			assert.Equal(t, int64(5), lineID)
			return &domain.CartView{}, nil
		},
	}
	h := newCartHandler(cart)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/cart/lines/5", nil), 7)
	req.SetPathValue("id", "5")
	rec := httptest.NewRecorder()

	h.RemoveLine(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
