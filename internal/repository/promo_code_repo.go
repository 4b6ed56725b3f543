package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

type PromoCodeRepo struct {
	db *sql.DB
}

func NewPromoCodeRepo(db *sql.DB) *PromoCodeRepo {
	return &PromoCodeRepo{db: db}
}

const promoCodeColumns = `
	id, code, discount_type, amount, min_cart_amount,
	usage_limit, usage_count, per_user_limit, start_date, end_date,
	is_active, free_shipping_method_id, created_at, updated_at
`

func scanPromoCode(row interface{ Scan(...interface{}) error }) (*models.PromoCode, error) {
	var c models.PromoCode
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Type,
		&c.Amount,
		&c.MinCartAmount,
		&c.UsageLimit,
		&c.UsageCount,
		&c.PerUserLimit,
		&c.StartDate,
		&c.EndDate,
		&c.IsActive,
		&c.FreeShippingMethodID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode expects code in its normalized (upper-case) form.
func (r *PromoCodeRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `SELECT ` + promoCodeColumns + ` FROM promo_codes WHERE code = $1`

	c, err := scanPromoCode(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("get promo code %q: %w", code, translate(err))
	}
	return c, nil
}

func (r *PromoCodeRepo) Create(ctx context.Context, c *models.PromoCode) error {
	query := `
		INSERT INTO promo_codes
		(code, discount_type, amount, min_cart_amount, usage_limit, per_user_limit,
		 start_date, end_date, is_active, free_shipping_method_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, usage_count, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.Code,
		c.Type,
		c.Amount,
		c.MinCartAmount,
		c.UsageLimit,
		c.PerUserLimit,
		c.StartDate,
		c.EndDate,
		c.IsActive,
		c.FreeShippingMethodID,
	).Scan(&c.ID, &c.UsageCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create promo code %q: %w", c.Code, translate(err))
	}
	return nil
}
