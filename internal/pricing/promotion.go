package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

// IsPromotionEffective reports whether p is active and now falls inside its window.
func IsPromotionEffective(p *models.Promotion, now time.Time) bool {
	return p != nil && p.IsActive && withinWindow(p.StartDate, p.EndDate, now)
}

// ResolveActivePromotion returns the first effective promotion in association
// order, or nil.
func ResolveActivePromotion(assocs []models.PromotionAssociation, now time.Time) *models.Promotion {
	for i := range assocs {
		p := assocs[i].Promotion
		if IsPromotionEffective(&p, now) {
			return &p
		}
	}
	return nil
}

// ComputeDiscountedPrice applies p to originalPrice. The promotion is checked
// again here; callers may pass a stale or unresolved one.
//
// A flat discount is reported as configured even when it exceeds the price;
// only FinalPrice is clamped at zero.
func ComputeDiscountedPrice(originalPrice decimal.Decimal, p *models.Promotion, now time.Time) models.PriceCalculation {
	res := models.PriceCalculation{
		OriginalPrice:  originalPrice,
		DiscountAmount: decimal.Zero,
		FinalPrice:     originalPrice,
	}
	if !IsPromotionEffective(p, now) {
		return res
	}

	var discount decimal.Decimal
	switch p.Type {
	case models.DiscountFlat:
		discount = p.Amount
	case models.DiscountPercent:
		discount = originalPrice.Mul(p.Amount).Div(hundred)
	default:
		return res
	}

	promo := *p
	res.DiscountAmount = discount
	res.FinalPrice = clampZero(originalPrice.Sub(discount))
	res.HasPromotion = true
	res.Promotion = &promo
	return res
}

// ProductPrice resolves the display price of one unit of product at now.
func ProductPrice(product models.Product, now time.Time) models.PriceCalculation {
	return ComputeDiscountedPrice(product.Price, ResolveActivePromotion(product.Promotions, now), now)
}
