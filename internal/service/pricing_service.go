package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/cache"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/concurrency"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/pricing"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/repository"
)

// MaxLineQuantity caps the quantity of one product in a cart, after duplicate
// lines are merged.
const MaxLineQuantity = 10_000

// shippingLoadTimeout bounds the shared shipping method load, which outlives
// the request that started it.
const shippingLoadTimeout = 5 * time.Second

type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CartRequest struct {
	UserID       string              `json:"userId"`
	Items        []CartItemRequest   `json:"items"`
	PromoCode    string              `json:"promoCode"`
	DeliveryMode models.DeliveryMode `json:"deliveryMode"`
}

// PricingService loads the rows a price computation needs and hands them to
// the pricing package. It never stores a computed price.
type PricingService struct {
	products   ProductStore
	promoCodes PromoCodeStore
	usage      UsageStore
	shipping   ShippingStore
	cache      cache.ShippingCache
	sfg        singleflight.Group
	workers    int
	logger     *zap.Logger
	now        func() time.Time
}

func NewPricingService(
	products ProductStore,
	promoCodes PromoCodeStore,
	usage UsageStore,
	shipping ShippingStore,
	shippingCache cache.ShippingCache,
	workers int,
	logger *zap.Logger,
) *PricingService {
	return &PricingService{
		products:   products,
		promoCodes: promoCodes,
		usage:      usage,
		shipping:   shipping,
		cache:      shippingCache,
		workers:    workers,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *PricingService) PriceCart(ctx context.Context, req CartRequest) (models.CartPricing, error) {
	cart, err := s.loadCart(ctx, req)
	if err != nil {
		return models.CartPricing{}, err
	}
	return pricing.PriceCart(cart, s.now())
}

func (s *PricingService) ProductPrice(ctx context.Context, productID int64) (models.PriceCalculation, error) {
	p, err := s.getProduct(ctx, productID)
	if err != nil {
		return models.PriceCalculation{}, err
	}
	return pricing.ProductPrice(*p, s.now()), nil
}

// ValidatePromoCode checks code against cartTotal without consuming a use.
func (s *PricingService) ValidatePromoCode(ctx context.Context, code string, cartTotal decimal.Decimal, userID string) (models.ValidationResult, error) {
	pc, uses, err := s.lookupPromoCode(ctx, pricing.NormalizeCode(code), userID)
	if err != nil {
		return models.ValidationResult{}, err
	}
	return pricing.ValidatePromoCode(pc, cartTotal, userID, uses, s.now()), nil
}

// QuoteShipping returns the bracket price for weight. The free-shipping
// threshold is reported but not applied; only cart pricing waives it.
func (s *PricingService) QuoteShipping(ctx context.Context, mode models.DeliveryMode, weight decimal.Decimal) (models.ShippingCost, error) {
	mode, ok := models.ParseDeliveryMode(string(mode))
	if !ok {
		return models.ShippingCost{}, ErrInvalidDeliveryMode
	}
	var method *models.ShippingMethod
	if mode != models.DeliveryPharmacyPickup {
		var err error
		if method, err = s.shippingMethod(ctx, mode); err != nil {
			return models.ShippingCost{}, err
		}
	}
	return pricing.CalculateShippingCost(mode, weight, method)
}

// loadCart fetches every row needed to price req. Lines for the same product
// are merged, keeping the position of the first one.
func (s *PricingService) loadCart(ctx context.Context, req CartRequest) (models.Cart, error) {
	mode, ok := models.ParseDeliveryMode(string(req.DeliveryMode))
	if !ok {
		return models.Cart{}, ErrInvalidDeliveryMode
	}

	lines, err := mergeLines(req.Items)
	if err != nil {
		return models.Cart{}, err
	}

	items := make([]models.CartItem, len(lines))
	err = concurrency.ForEach(ctx, s.workers, len(lines), func(ctx context.Context, i int) error {
		p, err := s.getProduct(ctx, lines[i].ProductID)
		if err != nil {
			return err
		}
		items[i] = models.CartItem{Product: *p, Quantity: lines[i].Quantity}
		return nil
	})
	if err != nil {
		return models.Cart{}, err
	}

	weight := decimal.Zero
	for _, it := range items {
		weight = weight.Add(it.Product.Weight.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	cart := models.Cart{
		UserID:       req.UserID,
		Items:        items,
		AppliedCode:  pricing.NormalizeCode(req.PromoCode),
		DeliveryMode: mode,
		Weight:       weight,
	}

	if cart.AppliedCode != "" {
		cart.PromoCode, cart.UserPromoUses, err = s.lookupPromoCode(ctx, cart.AppliedCode, req.UserID)
		if err != nil {
			return models.Cart{}, err
		}
	}

	if mode != models.DeliveryPharmacyPickup {
		cart.ShippingMethod, err = s.shippingMethod(ctx, mode)
		if err != nil {
			return models.Cart{}, err
		}
	}

	return cart, nil
}

func mergeLines(items []CartItemRequest) ([]CartItemRequest, error) {
	merged := make([]CartItemRequest, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || it.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, it.ProductID)
		}
		if i, ok := index[it.ProductID]; ok {
			// Both sides are at most MaxLineQuantity, so the sum cannot overflow.
			if merged[i].Quantity+it.Quantity > MaxLineQuantity {
				return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, it.ProductID)
			}
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

func (s *PricingService) getProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return p, err
}

// lookupPromoCode returns a nil promo code when none matches. The user's
// previous uses are only counted when the code has a per-user limit.
func (s *PricingService) lookupPromoCode(ctx context.Context, code, userID string) (*models.PromoCode, int, error) {
	if code == "" {
		return nil, 0, nil
	}
	pc, err := s.promoCodes.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	if !pricing.NeedsUserUsage(pc, userID) {
		return pc, 0, nil
	}
	uses, err := s.usage.CountUserUses(ctx, nil, pc.ID, userID)
	if err != nil {
		return nil, 0, err
	}
	return pc, uses, nil
}

// shippingMethod reads through the cache. A missing method is returned as
// nil so the resolver reports it. Concurrent misses for one mode share a
// single database read. The shared read is detached from the caller's
// cancellation so one client going away does not fail the others.
func (s *PricingService) shippingMethod(ctx context.Context, mode models.DeliveryMode) (*models.ShippingMethod, error) {
	v, err, _ := s.sfg.Do(string(mode), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shippingLoadTimeout)
		defer cancel()

		m, err := s.cache.Get(ctx, mode)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("shipping cache get failed", zap.String("mode", string(mode)), zap.Error(err))
		}

		m, err = s.shipping.GetActiveByMode(ctx, mode)
		if errors.Is(err, repository.ErrNotFound) {
			return (*models.ShippingMethod)(nil), nil
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, m); err != nil {
			s.logger.Warn("shipping cache set failed", zap.String("mode", string(mode)), zap.Error(err))
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ShippingMethod), nil
}

// InvalidateShipping drops the cached method for mode.
func (s *PricingService) InvalidateShipping(ctx context.Context, mode models.DeliveryMode) {
	if err := s.cache.Delete(ctx, mode); err != nil {
		s.logger.Warn("shipping cache delete failed", zap.String("mode", string(mode)), zap.Error(err))
	}
}
