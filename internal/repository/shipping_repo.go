package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

type ShippingRepo struct {
	db *sql.DB
}

func NewShippingRepo(db *sql.DB) *ShippingRepo {
	return &ShippingRepo{db: db}
}

// GetActiveByMode loads the active method for mode with its rate brackets in
// declaration order.
func (r *ShippingRepo) GetActiveByMode(ctx context.Context, mode models.DeliveryMode) (*models.ShippingMethod, error) {
	var m models.ShippingMethod

	query := `
		SELECT id, mode, name, is_active, free_shipping_threshold
		FROM shipping_methods
		WHERE mode = $1 AND is_active
	`
	err := r.db.QueryRowContext(ctx, query, mode).Scan(&m.ID, &m.Mode, &m.Name, &m.IsActive, &m.FreeShippingThreshold)
	if err != nil {
		return nil, fmt.Errorf("get shipping method %s: %w", mode, translate(err))
	}

	rates, err := r.getRates(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Rates = rates

	return &m, nil
}

func (r *ShippingRepo) getRates(ctx context.Context, methodID int64) ([]models.ShippingRate, error) {
	query := `
		SELECT id, method_id, min_weight, max_weight, price, position
		FROM shipping_rates
		WHERE method_id = $1
		ORDER BY position, id
	`
	rows, err := r.db.QueryContext(ctx, query, methodID)
	if err != nil {
		return nil, fmt.Errorf("list shipping rates of method %d: %w", methodID, err)
	}
	defer rows.Close()

	rates := []models.ShippingRate{}
	for rows.Next() {
		var rt models.ShippingRate
		if err := rows.Scan(&rt.ID, &rt.MethodID, &rt.MinWeight, &rt.MaxWeight, &rt.Price, &rt.Position); err != nil {
			return nil, err
		}
		rates = append(rates, rt)
	}
	return rates, rows.Err()
}

// Create inserts m and its rates. Rate positions follow the order of m.Rates.
func (r *ShippingRepo) Create(ctx context.Context, tx *sql.Tx, m *models.ShippingMethod) error {
	q := pick(r.db, tx)

	insert := `
		INSERT INTO shipping_methods (mode, name, is_active, free_shipping_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := q.QueryRowContext(ctx, insert, m.Mode, m.Name, m.IsActive, m.FreeShippingThreshold).Scan(&m.ID); err != nil {
		return fmt.Errorf("create shipping method %s: %w", m.Mode, translate(err))
	}

	stmt := `
		INSERT INTO shipping_rates (method_id, min_weight, max_weight, price, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i := range m.Rates {
		rt := &m.Rates[i]
		rt.MethodID = m.ID
		rt.Position = i
		if err := q.QueryRowContext(ctx, stmt, m.ID, rt.MinWeight, rt.MaxWeight, rt.Price, rt.Position).Scan(&rt.ID); err != nil {
			return fmt.Errorf("create shipping rate: %w", translate(err))
		}
	}
	return nil
}
