package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(store Store) OrderService {
	return NewOrderService(store, events.NewNoopPublisher(), testLogger())
}

func orderInStatus(status domain.OrderStatus) domain.Order {
	return domain.Order{
		ID:          1001,
		UserID:      7,
		OrderNumber: "ORD-20250615-A3K9",
		Status:      status,
		TotalCents:  2175,
	}
}

func TestListOrders_ClampsPaging(t *testing.T) {
	var got ListOrdersParams
	store := &mockStore{
		ListOrdersFunc: func(ctx context.Context, arg ListOrdersParams) ([]domain.Order, error) {
			got = arg
			return nil, nil
		},
		CountOrdersFunc: func(ctx context.Context, userID int64) (int64, error) {
			return 0, nil
		},
	}

	page, err := newOrderService(store).ListOrders(context.Background(), 7, -3, 500)
	require.NoError(t, err)

	assert.Equal(t, int32(1), page.Page)
	assert.Equal(t, maxOrdersPerPage, page.Limit)
	assert.Equal(t, int32(0), got.Offset)
	assert.Equal(t, maxOrdersPerPage, got.Limit)
}

func TestListOrders_SecondPageOffset(t *testing.T) {
	var got ListOrdersParams
	store := &mockStore{
		ListOrdersFunc: func(ctx context.Context, arg ListOrdersParams) ([]domain.Order, error) {
			got = arg
			return []domain.Order{orderInStatus(domain.OrderPending)}, nil
		},
		CountOrdersFunc: func(ctx context.Context, userID int64) (int64, error) {
			return 11, nil
		},
	}

	page, err := newOrderService(store).ListOrders(context.Background(), 7, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, int32(10), got.Offset)
	assert.Equal(t, int64(11), page.Total)
}

func TestGetOrder_OtherUsersOrderHidden(t *testing.T) {
	store := &mockStore{
		GetOrderFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			o := orderInStatus(domain.OrderPending)
			o.UserID = 99
			return o, nil
		},
	}

	_, err := newOrderService(store).GetOrder(context.Background(), 7, 1001)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancel(t *testing.T) {
	tests := []struct {
		status  domain.OrderStatus
		wantErr error
	}{
		{domain.OrderPending, nil},
		{domain.OrderProcessing, nil},
		{domain.OrderShipped, ErrOrderNotCancelable},
		{domain.OrderDelivered, ErrOrderNotCancelable},
		{domain.OrderCancelled, ErrOrderNotCancelable},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			var updated *UpdateOrderStatusParams
			store := &mockStore{
				GetOrderFunc: func(ctx context.Context, id int64) (domain.Order, error) {
					return orderInStatus(tt.status), nil
				},
				UpdateOrderStatusFunc: func(ctx context.Context, arg UpdateOrderStatusParams) (domain.Order, error) {
					updated = &arg
					o := orderInStatus(arg.Status)
					return o, nil
				},
			}

			order, err := newOrderService(store).Cancel(context.Background(), 7, 1001)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, updated, "no status write on rejected cancel")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.OrderCancelled, order.Status)
		})
	}
}

func TestUpdateStatus_RejectsBackwardMove(t *testing.T) {
	store := &mockStore{
		GetOrderFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			return orderInStatus(domain.OrderShipped), nil
		},
	}

	_, err := newOrderService(store).UpdateStatus(context.Background(), 1001, domain.OrderProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	_, err := newOrderService(&mockStore{}).UpdateStatus(context.Background(), 1001, "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_ShippingAssignsTracking(t *testing.T) {
	var got UpdateOrderStatusParams
	store := &mockStore{
		GetOrderFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			return orderInStatus(domain.OrderProcessing), nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, arg UpdateOrderStatusParams) (domain.Order, error) {
			got = arg
			o := orderInStatus(arg.Status)
			o.TrackingNumber = arg.TrackingNumber
			return o, nil
		},
	}

	order, err := newOrderService(store).UpdateStatus(context.Background(), 1001, domain.OrderShipped)
	require.NoError(t, err)

	require.NotNil(t, got.TrackingNumber)
	assert.True(t, strings.HasPrefix(*got.TrackingNumber, "TRK-"))
	assert.Equal(t, got.TrackingNumber, order.TrackingNumber)
}

func TestUpdateStatus_TerminalOrderImmutable(t *testing.T) {
	store := &mockStore{
		GetOrderFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			return orderInStatus(domain.OrderDelivered), nil
		},
	}

	_, err := newOrderService(store).UpdateStatus(context.Background(), 1001, domain.OrderCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func reorderStore(items []domain.OrderItem, products map[int64]domain.Product, cleared *bool, upserts *[]UpsertCartLineParams) *mockStore {
	return &mockStore{
		GetOrderFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			return orderInStatus(domain.OrderDelivered), nil
		},
		ListOrderItemsFunc: func(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
			return items, nil
		},
		GetProductFunc: func(ctx context.Context, id int64) (domain.Product, error) {
			p, ok := products[id]
			if !ok {
				return domain.Product{}, pgx.ErrNoRows
			}
			return p, nil
		},
		ClearCartFunc: func(ctx context.Context, userID int64) error {
			*cleared = true
			return nil
		},
		UpsertCartLineFunc: func(ctx context.Context, arg UpsertCartLineParams) (domain.CartLine, error) {
			*upserts = append(*upserts, arg)
			return domain.CartLine{ID: int64(len(*upserts))}, nil
		},
	}
}

func TestReorder_AllOrNothing(t *testing.T) {
	items := []domain.OrderItem{
		{ID: 1, OrderID: 1001, ProductID: 1, Quantity: 2, Snapshot: domain.ProductSnapshot{Name: "Pour Over Kettle"}},
		{ID: 2, OrderID: 1001, ProductID: 2, Quantity: 1, Snapshot: domain.ProductSnapshot{Name: "Gone Grinder"}},
	}
	products := map[int64]domain.Product{
		1: activeProduct(),
		// product 2 was deleted from the catalog
	}

	var cleared bool
	var upserts []UpsertCartLineParams
	store := reorderStore(items, products, &cleared, &upserts)

	_, err := newOrderService(store).Reorder(context.Background(), 7, 1001)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "Gone Grinder")
	assert.False(t, cleared, "cart untouched when any item is unavailable")
	assert.Empty(t, upserts)
}

func TestReorder_RepopulatesAtCurrentPrices(t *testing.T) {
	items := []domain.OrderItem{
		// Bought at $5.00; the catalog now charges $6.00.
		{ID: 1, OrderID: 1001, ProductID: 1, Quantity: 2, UnitPriceCents: 500},
	}
	products := map[int64]domain.Product{1: activeProduct()}

	var cleared bool
	var upserts []UpsertCartLineParams
	store := reorderStore(items, products, &cleared, &upserts)

	_, err := newOrderService(store).Reorder(context.Background(), 7, 1001)
	require.NoError(t, err)

	assert.True(t, cleared)
	require.Len(t, upserts, 1)
	assert.Equal(t, int64(600), upserts[0].UnitPriceCents)
	assert.Equal(t, int32(2), upserts[0].Quantity)
}

func TestReorder_InsufficientStockBlocks(t *testing.T) {
	items := []domain.OrderItem{
		{ID: 1, OrderID: 1001, ProductID: 1, Quantity: 50},
	}
	products := map[int64]domain.Product{1: activeProduct()} // stock 10

	var cleared bool
	var upserts []UpsertCartLineParams
	store := reorderStore(items, products, &cleared, &upserts)

	_, err := newOrderService(store).Reorder(context.Background(), 7, 1001)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.False(t, cleared)
}
