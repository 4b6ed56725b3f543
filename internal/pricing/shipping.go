package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

var (
	ErrShippingMethodNotFound = errors.New("shipping method not found")
	ErrNoApplicableRate       = errors.New("no shipping rate for this weight")
)

// FindRate returns the first bracket, in declaration order, whose
// [MinWeight, MaxWeight] contains weight.
func FindRate(rates []models.ShippingRate, weight decimal.Decimal) (models.ShippingRate, bool) {
	for _, r := range rates {
		if weight.GreaterThanOrEqual(r.MinWeight) && weight.LessThanOrEqual(r.MaxWeight) {
			return r, true
		}
	}
	return models.ShippingRate{}, false
}

// CalculateShippingCost prices a delivery of weight kilograms with method.
// Pharmacy pickup is always free. For the other modes the bracket price is
// returned as is: the free-shipping threshold is only reported, waiving it is
// up to PriceCart, which knows the cart subtotal.
func CalculateShippingCost(mode models.DeliveryMode, weight decimal.Decimal, method *models.ShippingMethod) (models.ShippingCost, error) {
	// Pickup is free by mode, whatever the weight or subtotal. This is not the
	// threshold waiver, which only PriceCart applies.
	if mode == models.DeliveryPharmacyPickup {
		res := models.ShippingCost{Cost: decimal.Zero, IsFree: true}
		if method != nil {
			res.FreeThreshold = method.FreeShippingThreshold
		}
		return res, nil
	}

	if method == nil || !method.IsActive || method.Mode != mode {
		return models.ShippingCost{}, fmt.Errorf("%w: %s", ErrShippingMethodNotFound, mode)
	}

	rate, ok := FindRate(method.Rates, weight)
	if !ok {
		return models.ShippingCost{}, fmt.Errorf("%w: %s kg (%s)", ErrNoApplicableRate, weight.String(), mode)
	}

	return models.ShippingCost{
		Cost:          rate.Price,
		IsFree:        false,
		FreeThreshold: method.FreeShippingThreshold,
	}, nil
}
