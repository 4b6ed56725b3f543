package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

// UsageRepo accounts promo code usage. Uses are never read from a cached
// promo code row when an order is placed: the row is locked and re-read inside
// the order transaction.
type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// LockPromoCode re-reads the promo code row and locks it until tx ends, which
// serializes concurrent orders using the same code.
func (r *UsageRepo) LockPromoCode(ctx context.Context, tx *sql.Tx, id int64) (*models.PromoCode, error) {
	query := `SELECT ` + promoCodeColumns + ` FROM promo_codes WHERE id = $1 FOR UPDATE`

	c, err := scanPromoCode(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("lock promo code %d: %w", id, translate(err))
	}
	return c, nil
}

// CountUserUses counts the user's orders placed with the promo code. tx may be nil.
func (r *UsageRepo) CountUserUses(ctx context.Context, tx *sql.Tx, promoCodeID int64, userID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM orders WHERE promo_code_id = $1 AND user_id = $2`

	if err := pick(r.db, tx).QueryRowContext(ctx, query, promoCodeID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count uses of promo code %d: %w", promoCodeID, err)
	}
	return n, nil
}

// IncrementUsage consumes one use of the promo code. The guarded update never
// lets usage_count pass usage_limit; ErrUsageLimitReached is returned instead.
func (r *UsageRepo) IncrementUsage(ctx context.Context, tx *sql.Tx, promoCodeID int64) error {
	query := `
		UPDATE promo_codes
		SET usage_count = usage_count + 1,
		    updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)
	`
	res, err := tx.ExecContext(ctx, query, promoCodeID)
	if err != nil {
		return fmt.Errorf("increment usage of promo code %d: %w", promoCodeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment usage of promo code %d: %w", promoCodeID, err)
	}
	if n == 0 {
		return ErrUsageLimitReached
	}
	return nil
}
