package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopflow/shopflow/internal/domain"
)

func (s *Store) GetPromoByCode(ctx context.Context, code string) (domain.PromoCode, error) {
	var p domain.PromoCode
	err := s.db.QueryRow(ctx,
		`SELECT id, code, type, value, min_order_cents, max_uses, current_uses,
		        starts_at, ends_at, is_active
		 FROM promo_codes WHERE code = $1`, code,
	).Scan(&p.ID, &p.Code, &p.Type, &p.Value, &p.MinOrderCents, &p.MaxUses, &p.CurrentUses,
		&p.StartsAt, &p.EndsAt, &p.IsActive)
	if err != nil {
		return domain.PromoCode{}, fmt.Errorf("failed to get promo code: %w", err)
	}
	return p, nil
}

// IncrementPromoUses counts one redemption. The guard keeps current_uses
// under max_uses even when two checkouts race for the last slot; the loser
// gets pgx.ErrNoRows.
func (s *Store) IncrementPromoUses(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE promo_codes
		 SET current_uses = current_uses + 1, updated_at = now()
		 WHERE id = $1 AND (max_uses IS NULL OR current_uses < max_uses)`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment promo uses: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
