package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopflow/shopflow/internal/domain"
)

// mockStore implements Store for testing. Unset read funcs report
// pgx.ErrNoRows; unset write funcs fail loudly. WithTx runs the callback
// against the mock itself.
type mockStore struct {
	GetProductFunc            func(ctx context.Context, id int64) (domain.Product, error)
	GetVariantFunc            func(ctx context.Context, id int64) (domain.Variant, error)
	DecrementProductStockFunc func(ctx context.Context, id int64, quantity int32) (StockLevel, error)
	DecrementVariantStockFunc func(ctx context.Context, id int64, quantity int32) (StockLevel, error)

	ListCartLinesFunc          func(ctx context.Context, userID int64) ([]domain.CartLineDetail, error)
	GetCartLineFunc            func(ctx context.Context, id int64) (domain.CartLine, error)
	UpsertCartLineFunc         func(ctx context.Context, arg UpsertCartLineParams) (domain.CartLine, error)
	UpdateCartLineQuantityFunc func(ctx context.Context, id int64, quantity int32) (domain.CartLine, error)
	DeleteCartLineFunc         func(ctx context.Context, id int64) error
	ClearCartFunc              func(ctx context.Context, userID int64) error

	GetPromoByCodeFunc     func(ctx context.Context, code string) (domain.PromoCode, error)
	IncrementPromoUsesFunc func(ctx context.Context, id int64) error

	CreateOrderFunc       func(ctx context.Context, arg CreateOrderParams) (domain.Order, error)
	CreateOrderItemFunc   func(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error)
	GetOrderFunc          func(ctx context.Context, id int64) (domain.Order, error)
	ListOrdersFunc        func(ctx context.Context, arg ListOrdersParams) ([]domain.Order, error)
	CountOrdersFunc       func(ctx context.Context, userID int64) (int64, error)
	ListOrderItemsFunc    func(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateOrderStatusFunc func(ctx context.Context, arg UpdateOrderStatusParams) (domain.Order, error)

	WithTxFunc func(ctx context.Context, fn func(Store) error) error
}

func (m *mockStore) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return domain.Product{}, pgx.ErrNoRows
}

func (m *mockStore) GetVariant(ctx context.Context, id int64) (domain.Variant, error) {
	if m.GetVariantFunc != nil {
		return m.GetVariantFunc(ctx, id)
	}
	return domain.Variant{}, pgx.ErrNoRows
}

func (m *mockStore) DecrementProductStock(ctx context.Context, id int64, quantity int32) (StockLevel, error) {
	if m.DecrementProductStockFunc != nil {
		return m.DecrementProductStockFunc(ctx, id, quantity)
	}
	return StockLevel{Remaining: 100, LowStockThreshold: 5}, nil
}

func (m *mockStore) DecrementVariantStock(ctx context.Context, id int64, quantity int32) (StockLevel, error) {
	if m.DecrementVariantStockFunc != nil {
		return m.DecrementVariantStockFunc(ctx, id, quantity)
	}
	return StockLevel{Remaining: 100, LowStockThreshold: 5}, nil
}

func (m *mockStore) ListCartLines(ctx context.Context, userID int64) ([]domain.CartLineDetail, error) {
	if m.ListCartLinesFunc != nil {
		return m.ListCartLinesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) GetCartLine(ctx context.Context, id int64) (domain.CartLine, error) {
	if m.GetCartLineFunc != nil {
		return m.GetCartLineFunc(ctx, id)
	}
	return domain.CartLine{}, pgx.ErrNoRows
}

func (m *mockStore) UpsertCartLine(ctx context.Context, arg UpsertCartLineParams) (domain.CartLine, error) {
	if m.UpsertCartLineFunc != nil {
		return m.UpsertCartLineFunc(ctx, arg)
	}
	return domain.CartLine{}, errors.New("UpsertCartLine not implemented")
}

func (m *mockStore) UpdateCartLineQuantity(ctx context.Context, id int64, quantity int32) (domain.CartLine, error) {
	if m.UpdateCartLineQuantityFunc != nil {
		return m.UpdateCartLineQuantityFunc(ctx, id, quantity)
	}
	return domain.CartLine{}, errors.New("UpdateCartLineQuantity not implemented")
}

func (m *mockStore) DeleteCartLine(ctx context.Context, id int64) error {
	if m.DeleteCartLineFunc != nil {
		return m.DeleteCartLineFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) ClearCart(ctx context.Context, userID int64) error {
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, userID)
	}
	return nil
}

func (m *mockStore) GetPromoByCode(ctx context.Context, code string) (domain.PromoCode, error) {
	if m.GetPromoByCodeFunc != nil {
		return m.GetPromoByCodeFunc(ctx, code)
	}
	return domain.PromoCode{}, pgx.ErrNoRows
}

func (m *mockStore) IncrementPromoUses(ctx context.Context, id int64) error {
	if m.IncrementPromoUsesFunc != nil {
		return m.IncrementPromoUsesFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) CreateOrder(ctx context.Context, arg CreateOrderParams) (domain.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, arg)
	}
	return domain.Order{}, errors.New("CreateOrder not implemented")
}

func (m *mockStore) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error) {
	if m.CreateOrderItemFunc != nil {
		return m.CreateOrderItemFunc(ctx, arg)
	}
	return domain.OrderItem{}, errors.New("CreateOrderItem not implemented")
}

func (m *mockStore) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return domain.Order{}, pgx.ErrNoRows
}

func (m *mockStore) ListOrders(ctx context.Context, arg ListOrdersParams) ([]domain.Order, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockStore) CountOrders(ctx context.Context, userID int64) (int64, error) {
	if m.CountOrdersFunc != nil {
		return m.CountOrdersFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockStore) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	if m.ListOrderItemsFunc != nil {
		return m.ListOrderItemsFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *mockStore) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (domain.Order, error) {
	if m.UpdateOrderStatusFunc != nil {
		return m.UpdateOrderStatusFunc(ctx, arg)
	}
	return domain.Order{}, errors.New("UpdateOrderStatus not implemented")
}

func (m *mockStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	return fn(m)
}
