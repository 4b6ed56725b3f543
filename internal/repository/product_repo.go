package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// GetProduct loads an active product with its promotion associations in
// attachment order.
func (r *ProductRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product

	query := `
		SELECT id, name, price, weight, is_active
		FROM products
		WHERE id = $1 AND is_active
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Weight, &p.IsActive)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, translate(err))
	}

	promos, err := r.getPromotions(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Promotions = promos

	return &p, nil
}

func (r *ProductRepo) getPromotions(ctx context.Context, productID int64) ([]models.PromotionAssociation, error) {
	query := `
		SELECT pp.product_id, pp.position,
		       pr.id, pr.name, pr.discount_type, pr.amount, pr.is_active,
		       pr.start_date, pr.end_date, pr.created_at, pr.updated_at
		FROM product_promotions pp
		JOIN promotions pr ON pr.id = pp.promotion_id
		WHERE pp.product_id = $1
		ORDER BY pp.position, pr.id
	`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list promotions of product %d: %w", productID, err)
	}
	defer rows.Close()

	var assocs []models.PromotionAssociation
	for rows.Next() {
		var a models.PromotionAssociation
		pr := &a.Promotion
		if err := rows.Scan(
			&a.ProductID,
			&a.Position,
			&pr.ID,
			&pr.Name,
			&pr.Type,
			&pr.Amount,
			&pr.IsActive,
			&pr.StartDate,
			&pr.EndDate,
			&pr.CreatedAt,
			&pr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		assocs = append(assocs, a)
	}
	return assocs, rows.Err()
}

func (r *ProductRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, price, weight, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, p.Name, p.Price, p.Weight, p.IsActive).Scan(&p.ID); err != nil {
		return fmt.Errorf("create product: %w", translate(err))
	}
	return nil
}

// CreatePromotion inserts p and attaches it to productIDs. A product's
// position for p is its index in productIDs.
func (r *ProductRepo) CreatePromotion(ctx context.Context, tx *sql.Tx, p *models.Promotion, productIDs []int64) error {
	q := pick(r.db, tx)

	insert := `
		INSERT INTO promotions (name, discount_type, amount, is_active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRowContext(ctx, insert,
		p.Name,
		p.Type,
		p.Amount,
		p.IsActive,
		p.StartDate,
		p.EndDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create promotion: %w", translate(err))
	}

	if len(productIDs) == 0 {
		return nil
	}

	attach := `
		INSERT INTO product_promotions (product_id, promotion_id, position)
		SELECT t.product_id, $1, t.ord - 1
		FROM unnest($2::bigint[]) WITH ORDINALITY AS t(product_id, ord)
	`
	if _, err := q.ExecContext(ctx, attach, p.ID, pq.Array(productIDs)); err != nil {
		return fmt.Errorf("attach promotion %d: %w", p.ID, translate(err))
	}
	return nil
}
