package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

// PriceCart computes subtotal, promo discount, shipping and total of cart at now.
//
// The promo code is validated again against the subtotal computed here. A
// refused code does not fail the run: the discount stays zero and PromoError
// carries the reason. Shipping failures (unknown method, no bracket) are
// returned as errors.
func PriceCart(cart models.Cart, now time.Time) (models.CartPricing, error) {
	out := models.CartPricing{
		Lines:        make([]models.CartLine, 0, len(cart.Items)),
		Subtotal:     decimal.Zero,
		Discount:     decimal.Zero,
		DeliveryMode: cart.DeliveryMode,
		Weight:       cart.Weight,
	}

	for _, item := range cart.Items {
		unit := ProductPrice(item.Product, now)
		line := unit.FinalPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		out.Lines = append(out.Lines, models.CartLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: line,
		})
		out.Subtotal = out.Subtotal.Add(line)
	}

	codeShipsFree := false
	if strings.TrimSpace(cart.AppliedCode) != "" {
		v := ValidatePromoCode(cart.PromoCode, out.Subtotal, cart.UserID, cart.UserPromoUses, now)
		if v.IsValid {
			out.PromoCode = v.PromoCode
			out.Discount = CalculateDiscount(out.Subtotal, v.PromoCode)
			codeShipsFree = cart.ShippingMethod != nil &&
				v.PromoCode.FreeShippingMethodID != nil &&
				*v.PromoCode.FreeShippingMethodID == cart.ShippingMethod.ID
		} else {
			out.PromoError = v.Error
		}
	}

	shipping, err := CalculateShippingCost(cart.DeliveryMode, cart.Weight, cart.ShippingMethod)
	if err != nil {
		return models.CartPricing{}, fmt.Errorf("price cart: %w", err)
	}
	if !shipping.IsFree && (codeShipsFree || reachesThreshold(out.Subtotal, shipping.FreeThreshold)) {
		shipping.Cost = decimal.Zero
		shipping.IsFree = true
	}
	out.Shipping = shipping

	out.Total = clampZero(out.Subtotal.Sub(out.Discount).Add(shipping.Cost))
	return out, nil
}

func reachesThreshold(subtotal decimal.Decimal, threshold *decimal.Decimal) bool {
	return threshold != nil && subtotal.GreaterThanOrEqual(*threshold)
}
