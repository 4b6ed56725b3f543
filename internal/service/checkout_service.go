package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/events"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/pricing"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/repository"
)

const checkoutTimeout = 8 * time.Second

// CheckoutService turns a priced cart into an order and consumes the promo
// code use in the same transaction.
type CheckoutService struct {
	pricing   *PricingService
	usage     UsageStore
	orders    OrderStore
	tx        TxRunner
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(
	pricingSvc *PricingService,
	usage UsageStore,
	orders OrderStore,
	tx TxRunner,
	publisher events.Publisher,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		pricing:   pricingSvc,
		usage:     usage,
		orders:    orders,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder prices req and stores it as a pending order. A promo code the
// customer typed must be valid, otherwise nothing is stored.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CartRequest) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	cart, err := s.pricing.loadCart(ctx, req)
	if err != nil {
		return nil, err
	}
	now := s.now()
	priced, err := pricing.PriceCart(cart, now)
	if err != nil {
		return nil, err
	}
	if priced.PromoError != "" {
		return nil, &PromoCodeRejectedError{Message: priced.PromoError}
	}

	order := newOrder(req.UserID, priced)

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if priced.PromoCode != nil {
			if err := s.consumePromoCode(ctx, tx, priced.PromoCode.ID, req.UserID, priced, now); err != nil {
				return err
			}
		}
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID),
		zap.String("total", order.Total.StringFixed(2)),
	)
	s.publish(ctx, events.TypeOrderPlaced, order)
	return order, nil
}

// consumePromoCode re-checks the locked promo code row and takes one use.
// The row lock makes concurrent orders with the same code wait for each
// other, so both the global and the per-user limit hold.
func (s *CheckoutService) consumePromoCode(ctx context.Context, tx *sql.Tx, id int64, userID string, priced models.CartPricing, now time.Time) error {
	pc, err := s.usage.LockPromoCode(ctx, tx, id)
	if err != nil {
		return err
	}

	uses := 0
	if pricing.NeedsUserUsage(pc, userID) {
		if uses, err = s.usage.CountUserUses(ctx, tx, id, userID); err != nil {
			return err
		}
	}

	if v := pricing.ValidatePromoCode(pc, priced.Subtotal, userID, uses, now); !v.IsValid {
		return &PromoCodeRejectedError{Message: v.Error}
	}

	err = s.usage.IncrementUsage(ctx, tx, id)
	if errors.Is(err, repository.ErrUsageLimitReached) {
		return ErrPromoCodeExhausted
	}
	return err
}

func newOrder(userID string, priced models.CartPricing) *models.Order {
	o := &models.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       models.OrderPending,
		DeliveryMode: priced.DeliveryMode,
		Items:        make([]models.OrderItem, 0, len(priced.Lines)),
		Subtotal:     priced.Subtotal,
		Discount:     priced.Discount,
		ShippingCost: priced.Shipping.Cost,
		Weight:       priced.Weight,
		Total:        priced.Total,
	}
	if priced.PromoCode != nil {
		id := priced.PromoCode.ID
		o.PromoCodeID = &id
	}
	for _, l := range priced.Lines {
		o.Items = append(o.Items, models.OrderItem{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			OriginalPrice: l.UnitPrice.OriginalPrice,
			UnitPrice:     l.UnitPrice.FinalPrice,
			LineTotal:     l.LineTotal,
		})
	}
	return o
}

func (s *CheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, err
}

// UpdateOrderStatus moves the order to next when the transition is allowed.
// A concurrent update of the same order makes the call fail with
// models.ErrInvalidStatusTransition.
func (s *CheckoutService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Status.CheckTransition(next); err != nil {
		return nil, err
	}

	err = s.orders.UpdateStatus(ctx, id, o.Status, next)
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("%w: order %s changed concurrently", models.ErrInvalidStatusTransition, id)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("order_id", id.String()),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
	)
	o.Status = next
	o.UpdatedAt = s.now()
	s.publish(ctx, events.TypeOrderStatusChanged, o)
	return o, nil
}

// publish never fails the caller: the order is already committed.
func (s *CheckoutService) publish(ctx context.Context, eventType string, o *models.Order) {
	e := events.NewOrderEvent(eventType, o, s.now())
	if err := s.publisher.PublishOrderEvent(ctx, e); err != nil {
		s.logger.Error("publish order event failed",
			zap.String("type", eventType),
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}
