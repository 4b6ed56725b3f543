package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/pricing"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// AdminService creates catalog, promo code and shipping rows.
type AdminService struct {
	products   ProductStore
	promoCodes PromoCodeStore
	shipping   ShippingStore
	tx         TxRunner
	pricing    *PricingService
	logger     *zap.Logger
}

func NewAdminService(
	products ProductStore,
	promoCodes PromoCodeStore,
	shipping ShippingStore,
	tx TxRunner,
	pricingSvc *PricingService,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		products:   products,
		promoCodes: promoCodes,
		shipping:   shipping,
		tx:         tx,
		pricing:    pricingSvc,
		logger:     logger,
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (s *AdminService) CreateProduct(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("product name is required")
	}
	if p.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if p.Weight.IsNegative() {
		return invalid("weight must not be negative")
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID))
	return nil
}

func validateDiscount(t models.DiscountType, amount decimal.Decimal) error {
	if !t.Valid() {
		return invalid("unknown discount type %q", t)
	}
	if amount.IsNegative() {
		return invalid("amount must not be negative")
	}
	if t == models.DiscountPercent && amount.GreaterThan(hundred) {
		return invalid("percent amount must not exceed 100")
	}
	return nil
}

func (s *AdminService) CreatePromoCode(ctx context.Context, pc *models.PromoCode) error {
	pc.Code = pricing.NormalizeCode(pc.Code)
	if pc.Code == "" {
		return invalid("code is required")
	}
	if err := validateDiscount(pc.Type, pc.Amount); err != nil {
		return err
	}
	if pc.StartDate != nil && pc.EndDate != nil && pc.EndDate.Before(*pc.StartDate) {
		return invalid("end date is before start date")
	}
	if pc.UsageLimit != nil && *pc.UsageLimit < 0 {
		return invalid("usage limit must not be negative")
	}
	if pc.PerUserLimit != nil && *pc.PerUserLimit < 0 {
		return invalid("per-user limit must not be negative")
	}

	err := s.promoCodes.Create(ctx, pc)
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%w: %s", ErrPromoCodeExists, pc.Code)
	}
	if err != nil {
		return err
	}
	s.logger.Info("promo code created", zap.String("code", pc.Code), zap.Int64("promo_code_id", pc.ID))
	return nil
}

// CreatePromotion stores p and attaches it to productIDs, in that order.
func (s *AdminService) CreatePromotion(ctx context.Context, p *models.Promotion, productIDs []int64) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("promotion name is required")
	}
	if err := validateDiscount(p.Type, p.Amount); err != nil {
		return err
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return invalid("end date is before start date")
	}
	seen := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		if seen[id] {
			return invalid("product %d listed twice", id)
		}
		seen[id] = true
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.products.CreatePromotion(ctx, tx, p, productIDs)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}
	if err != nil {
		return err
	}
	s.logger.Info("promotion created", zap.Int64("promotion_id", p.ID), zap.Int("products", len(productIDs)))
	return nil
}

// CreateShippingMethod stores m with its brackets and drops the cached method
// for its mode.
func (s *AdminService) CreateShippingMethod(ctx context.Context, m *models.ShippingMethod) error {
	mode, ok := models.ParseDeliveryMode(string(m.Mode))
	if !ok {
		return ErrInvalidDeliveryMode
	}
	m.Mode = mode
	if m.FreeShippingThreshold != nil && m.FreeShippingThreshold.IsNegative() {
		return invalid("free shipping threshold must not be negative")
	}
	for i, r := range m.Rates {
		if r.MinWeight.IsNegative() || r.MaxWeight.LessThan(r.MinWeight) {
			return invalid("rate %d has an invalid weight range", i)
		}
		if r.Price.IsNegative() {
			return invalid("rate %d has a negative price", i)
		}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.shipping.Create(ctx, tx, m)
	})
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%w: %s", ErrShippingModeExists, m.Mode)
	}
	if err != nil {
		return err
	}

	s.pricing.InvalidateShipping(ctx, m.Mode)
	s.logger.Info("shipping method created", zap.String("mode", string(m.Mode)), zap.Int("rates", len(m.Rates)))
	return nil
}
