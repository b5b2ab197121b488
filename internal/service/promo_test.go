package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int32ptr(v int32) *int32 { return &v }

func timeptr(t time.Time) *time.Time { return &t }

func tenPercent() *domain.PromoCode {
	return &domain.PromoCode{
		ID:       1,
		Code:     "SAVE10",
		Type:     domain.PromoPercentage,
		Value:    10,
		IsActive: true,
	}
}

func TestEvaluatePromo(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("percentage discount rounds to nearest cent", func(t *testing.T) {
		d, err := EvaluatePromo(tenPercent(), 1255, now)
		require.NoError(t, err)
		// 10% of 1255 = 125.5, rounds to 126
		assert.Equal(t, int64(126), d.AmountCents)
	})

	t.Run("fixed discount capped at subtotal", func(t *testing.T) {
		promo := &domain.PromoCode{ID: 2, Code: "FIVEOFF", Type: domain.PromoFixed, Value: 500, IsActive: true}

		d, err := EvaluatePromo(promo, 300, now)
		require.NoError(t, err)
		assert.Equal(t, int64(300), d.AmountCents)
	})

	t.Run("not started yet", func(t *testing.T) {
		promo := tenPercent()
		promo.StartsAt = timeptr(now.Add(time.Hour))

		_, err := EvaluatePromo(promo, 1000, now)
		assert.ErrorIs(t, err, ErrPromoNotStarted)
	})

	t.Run("expired", func(t *testing.T) {
		promo := tenPercent()
		promo.EndsAt = timeptr(now.Add(-time.Hour))

		_, err := EvaluatePromo(promo, 1000, now)
		assert.ErrorIs(t, err, ErrPromoExpired)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		promo := tenPercent()
		promo.StartsAt = timeptr(now)
		promo.EndsAt = timeptr(now)

		_, err := EvaluatePromo(promo, 1000, now)
		assert.NoError(t, err)
	})

	t.Run("usage cap reached", func(t *testing.T) {
		promo := tenPercent()
		promo.MaxUses = int32ptr(100)
		promo.CurrentUses = 100

		_, err := EvaluatePromo(promo, 1000, now)
		assert.ErrorIs(t, err, ErrPromoExhausted)
	})

	t.Run("minimum order not met", func(t *testing.T) {
		promo := tenPercent()
		promo.MinOrderCents = 2000

		_, err := EvaluatePromo(promo, 1999, now)
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.Contains(t, domain.ErrorMessage(err), "$20.00")
	})

	t.Run("minimum order boundary", func(t *testing.T) {
		promo := tenPercent()
		promo.MinOrderCents = 2000

		d, err := EvaluatePromo(promo, 2000, now)
		require.NoError(t, err)
		assert.Equal(t, int64(200), d.AmountCents)
	})
}

func TestNormalizePromoCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizePromoCode("  save10 "))
	assert.Equal(t, "", NormalizePromoCode("   "))
}

func applyFixture(promo *domain.PromoCode) *mockStore {
	return &mockStore{
		ListCartLinesFunc: func(ctx context.Context, userID int64) ([]domain.CartLineDetail, error) {
			return []domain.CartLineDetail{
				{
					Line:    domain.CartLine{ID: 11, UserID: userID, ProductID: 1, Quantity: 2},
					Product: activeProduct(), // 600 each
				},
			}, nil
		},
		GetPromoByCodeFunc: func(ctx context.Context, code string) (domain.PromoCode, error) {
			if promo != nil && code == promo.Code {
				return *promo, nil
			}
			return domain.PromoCode{}, pgx.ErrNoRows
		},
	}
}

func TestApply_EmptyCart(t *testing.T) {
	store := &mockStore{}
	svc := NewPromoService(store, pricing.NewCalculator(pricing.DefaultConfig()))

	_, err := svc.Apply(context.Background(), 7, "SAVE10")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestApply_UnknownCode(t *testing.T) {
	svc := NewPromoService(applyFixture(nil), pricing.NewCalculator(pricing.DefaultConfig()))

	_, err := svc.Apply(context.Background(), 7, "NOPE")
	assert.ErrorIs(t, err, ErrPromoNotFound)
}

func TestApply_InactiveCodeIndistinguishable(t *testing.T) {
	promo := tenPercent()
	promo.IsActive = false
	svc := NewPromoService(applyFixture(promo), pricing.NewCalculator(pricing.DefaultConfig()))

	_, err := svc.Apply(context.Background(), 7, "SAVE10")
	assert.ErrorIs(t, err, ErrPromoNotFound)
}

func TestApply_QuotesDiscountedTotals(t *testing.T) {
	svc := NewPromoService(applyFixture(tenPercent()), pricing.NewCalculator(pricing.DefaultConfig()))

	quote, err := svc.Apply(context.Background(), 7, "save10")
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", quote.Discount.Code)
	assert.Equal(t, int64(120), quote.Discount.AmountCents)
	assert.Equal(t, pricing.Amounts{
		SubtotalCents: 1200,
		ShippingCents: 999,
		TaxCents:      96,
		DiscountCents: 120,
		TotalCents:    2175,
	}, quote.Amounts)
}
