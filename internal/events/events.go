package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     uuid.UUID          `json:"orderId"`
	UserID      string             `json:"userId"`
	Status      models.OrderStatus `json:"status"`
	Total       decimal.Decimal    `json:"total"`
	PromoCodeID *int64             `json:"promoCodeId,omitempty"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

func NewOrderEvent(eventType string, o *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		Total:       o.Total,
		PromoCodeID: o.PromoCodeID,
		OccurredAt:  at.UTC(),
	}
}

type Publisher interface {
	PublishOrderEvent(ctx context.Context, e OrderEvent) error
	Close() error
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
