package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/pricing"
	"github.com/shopflow/shopflow/internal/telemetry"
)

// PromoService validates a promo code against the caller's cart and returns
// the quoted totals. Applying a code never consumes a use; usage is counted
// only when an order commits with the code.
type PromoService interface {
	Apply(ctx context.Context, userID int64, code string) (*PromoQuote, error)
}

// PromoQuote is the priced result of applying a promo code to a cart.
type PromoQuote struct {
	Discount domain.Discount `json:"discount"`
	Amounts  pricing.Amounts `json:"amounts"`
}

type promoService struct {
	store Store
	calc  *pricing.Calculator
}

// NewPromoService creates a new PromoService instance.
func NewPromoService(store Store, calc *pricing.Calculator) PromoService {
	return &promoService{store: store, calc: calc}
}

func (s *promoService) Apply(ctx context.Context, userID int64, code string) (*PromoQuote, error) {
	details, err := s.store.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	cart := buildCartView(details)
	if cart.ItemCount == 0 {
		return nil, ErrEmptyCart
	}

	promo, err := lookupPromo(ctx, s.store, code)
	if err != nil {
		recordPromoResult(err)
		return nil, err
	}

	discount, err := EvaluatePromo(promo, cart.SubtotalCents, time.Now())
	if err != nil {
		recordPromoResult(err)
		return nil, err
	}
	recordPromoResult(nil)

	return &PromoQuote{
		Discount: *discount,
		Amounts:  s.calc.Quote(cart.SubtotalCents, discount.AmountCents),
	}, nil
}

// NormalizePromoCode canonicalizes user input; codes are stored uppercase.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// lookupPromo fetches a promo code by its normalized form. Unknown and
// inactive codes are indistinguishable to callers.
func lookupPromo(ctx context.Context, store Store, code string) (*domain.PromoCode, error) {
	normalized := NormalizePromoCode(code)
	if normalized == "" {
		return nil, ErrPromoNotFound
	}

	promo, err := store.GetPromoByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	if !promo.IsActive {
		return nil, ErrPromoNotFound
	}
	return &promo, nil
}

// EvaluatePromo checks every promo constraint against a subtotal and returns
// the discount it grants. It is pure so the quote path and the commit path
// cannot disagree on eligibility.
func EvaluatePromo(promo *domain.PromoCode, subtotalCents int64, now time.Time) (*domain.Discount, error) {
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return nil, ErrPromoNotStarted
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return nil, ErrPromoExpired
	}
	if promo.Exhausted() {
		return nil, ErrPromoExhausted
	}
	if subtotalCents < promo.MinOrderCents {
		return nil, domain.Errorf(domain.EINVALID, "",
			"Order minimum of $%.2f not met for promo code %s",
			float64(promo.MinOrderCents)/100, promo.Code)
	}

	var amount int64
	switch promo.Type {
	case domain.PromoPercentage:
		amount = int64(math.Round(float64(subtotalCents) * float64(promo.Value) / 100))
	case domain.PromoFixed:
		amount = promo.Value
		if amount > subtotalCents {
			amount = subtotalCents
		}
	default:
		return nil, domain.Errorf(domain.EINTERNAL, "promo.evaluate", "unknown promo type: %s", promo.Type)
	}

	return &domain.Discount{
		PromoID:     promo.ID,
		Code:        promo.Code,
		Type:        promo.Type,
		Value:       promo.Value,
		AmountCents: amount,
	}, nil
}

func recordPromoResult(err error) {
	if telemetry.Business == nil {
		return
	}
	result := "accepted"
	if err != nil {
		result = domain.ErrorCode(err)
	}
	telemetry.Business.PromoApplied.WithLabelValues(result).Inc()
}
