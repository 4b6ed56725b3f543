package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

// Storage dependencies, satisfied by the repository package.

type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	CreatePromotion(ctx context.Context, tx *sql.Tx, p *models.Promotion, productIDs []int64) error
}

type PromoCodeStore interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	Create(ctx context.Context, c *models.PromoCode) error
}

type UsageStore interface {
	LockPromoCode(ctx context.Context, tx *sql.Tx, id int64) (*models.PromoCode, error)
	CountUserUses(ctx context.Context, tx *sql.Tx, promoCodeID int64, userID string) (int, error)
	IncrementUsage(ctx context.Context, tx *sql.Tx, promoCodeID int64) error
}

type ShippingStore interface {
	GetActiveByMode(ctx context.Context, mode models.DeliveryMode) (*models.ShippingMethod, error)
	Create(ctx context.Context, tx *sql.Tx, m *models.ShippingMethod) error
}

type OrderStore interface {
	Create(ctx context.Context, tx *sql.Tx, o *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}
