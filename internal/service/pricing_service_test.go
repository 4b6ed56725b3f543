package service

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/pricing"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func homeCart(items ...CartItemRequest) CartRequest {
	return CartRequest{UserID: "u1", Items: items, DeliveryMode: models.DeliveryHome}
}

func TestPriceCart_LoadsCatalogAndShipping(t *testing.T) {
	f := newFixture()

	res, err := f.pricing.PriceCart(context.Background(), homeCart(
		CartItemRequest{ProductID: 1, Quantity: 2},
		CartItemRequest{ProductID: 2, Quantity: 1},
	))

	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assertDecimal(t, "8", res.Lines[0].UnitPrice.FinalPrice)
	assert.True(t, res.Lines[0].UnitPrice.HasPromotion)
	assertDecimal(t, "16", res.Lines[0].LineTotal)
	assertDecimal(t, "22", res.Subtotal)
	assertDecimal(t, "2.2", res.Weight)
	assertDecimal(t, "4.90", res.Shipping.Cost)
	assert.False(t, res.Shipping.IsFree)
	assertDecimal(t, "26.90", res.Total)
}

func TestPriceCart_MergesDuplicateLines(t *testing.T) {
	f := newFixture()

	res, err := f.pricing.PriceCart(context.Background(), homeCart(
		CartItemRequest{ProductID: 1, Quantity: 1},
		CartItemRequest{ProductID: 2, Quantity: 1},
		CartItemRequest{ProductID: 1, Quantity: 1},
	))

	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, int64(1), res.Lines[0].ProductID)
	assert.Equal(t, 2, res.Lines[0].Quantity)
	assertDecimal(t, "22", res.Subtotal)
}

func TestPriceCart_RejectsBadInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.pricing.PriceCart(ctx, homeCart(CartItemRequest{ProductID: 1, Quantity: 0}))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.pricing.PriceCart(ctx, homeCart(CartItemRequest{ProductID: 99, Quantity: 1}))
	assert.ErrorIs(t, err, ErrProductNotFound)

	req := homeCart(CartItemRequest{ProductID: 1, Quantity: 1})
	req.DeliveryMode = "DRONE"
	_, err = f.pricing.PriceCart(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidDeliveryMode)
}

func TestPriceCart_AcceptsLowercaseDeliveryMode(t *testing.T) {
	f := newFixture()
	req := homeCart(CartItemRequest{ProductID: 2, Quantity: 1})
	req.DeliveryMode = " home "

	res, err := f.pricing.PriceCart(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.DeliveryHome, res.DeliveryMode)
}

func TestPriceCart_AppliesPromoCode(t *testing.T) {
	f := newFixture()
	f.addCode(&models.PromoCode{ID: 5, Code: "WELCOME10", Type: models.DiscountPercent, Amount: dec("10"),
		MinCartAmount: decPtr("20"), IsActive: true})

	req := homeCart(CartItemRequest{ProductID: 1, Quantity: 2}, CartItemRequest{ProductID: 2, Quantity: 1})
	req.PromoCode = "  welcome10 "
	res, err := f.pricing.PriceCart(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, res.PromoCode)
	assert.Equal(t, "WELCOME10", res.PromoCode.Code)
	assert.Empty(t, res.PromoError)
	assertDecimal(t, "2.2", res.Discount)
	assertDecimal(t, "24.70", res.Total)
	assert.Zero(t, f.usage.CountCalls)
}

func TestPriceCart_RefusedPromoCodeKeepsPricing(t *testing.T) {
	f := newFixture()
	f.addCode(&models.PromoCode{ID: 6, Code: "ONCE", Type: models.DiscountFlat, Amount: dec("5"),
		PerUserLimit: intPtr(1), IsActive: true})
	f.usage.UserUses["u1"] = 1

	req := homeCart(CartItemRequest{ProductID: 2, Quantity: 1})
	req.PromoCode = "once"
	res, err := f.pricing.PriceCart(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, res.PromoCode)
	assert.Equal(t, pricing.MsgAlreadyUsed, res.PromoError)
	assertDecimal(t, "0", res.Discount)
	assertDecimal(t, "10.90", res.Total)
	assert.Equal(t, 1, f.usage.CountCalls)
}

func TestPriceCart_UnknownPromoCode(t *testing.T) {
	f := newFixture()
	req := homeCart(CartItemRequest{ProductID: 2, Quantity: 1})
	req.PromoCode = "NOPE"

	res, err := f.pricing.PriceCart(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, pricing.MsgInvalidCode, res.PromoError)
}

func TestPriceCart_FreeShippingThreshold(t *testing.T) {
	f := newFixture()

	res, err := f.pricing.PriceCart(context.Background(), homeCart(CartItemRequest{ProductID: 1, Quantity: 7}))

	require.NoError(t, err)
	assertDecimal(t, "56", res.Subtotal)
	assert.True(t, res.Shipping.IsFree)
	assertDecimal(t, "0", res.Shipping.Cost)
	assertDecimal(t, "56", res.Total)
}

func TestPriceCart_PromoCodeLinkedToShippingMethod(t *testing.T) {
	f := newFixture()
	relay := int64(11)
	f.addCode(&models.PromoCode{ID: 7, Code: "RELAIS", Type: models.DiscountFlat, Amount: dec("1"),
		IsActive: true, FreeShippingMethodID: &relay})

	req := CartRequest{Items: []CartItemRequest{{ProductID: 2, Quantity: 1}}, PromoCode: "RELAIS",
		DeliveryMode: models.DeliveryRelayPoint}
	res, err := f.pricing.PriceCart(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, res.Shipping.IsFree)
	assertDecimal(t, "1", res.Discount)
	assertDecimal(t, "5", res.Total)
}

func TestPriceCart_PickupSkipsShippingLookup(t *testing.T) {
	f := newFixture()
	req := CartRequest{Items: []CartItemRequest{{ProductID: 2, Quantity: 1}}, DeliveryMode: models.DeliveryPharmacyPickup}

	res, err := f.pricing.PriceCart(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, res.Shipping.IsFree)
	assertDecimal(t, "6", res.Total)
	assert.Zero(t, f.shipping.Calls)
}

func TestPriceCart_ShippingErrors(t *testing.T) {
	f := newFixture()
	delete(f.shipping.Methods, models.DeliveryRelayPoint)
	ctx := context.Background()

	req := CartRequest{Items: []CartItemRequest{{ProductID: 2, Quantity: 1}}, DeliveryMode: models.DeliveryRelayPoint}
	_, err := f.pricing.PriceCart(ctx, req)
	assert.ErrorIs(t, err, pricing.ErrShippingMethodNotFound)

	// 9 x 1.2 kg is past the last HOME bracket.
	_, err = f.pricing.PriceCart(ctx, homeCart(CartItemRequest{ProductID: 2, Quantity: 9}))
	assert.ErrorIs(t, err, pricing.ErrNoApplicableRate)
}

func TestPriceCart_CachesShippingMethod(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.pricing.PriceCart(ctx, homeCart(CartItemRequest{ProductID: 2, Quantity: 1}))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.shipping.Calls)

	f.pricing.InvalidateShipping(ctx, models.DeliveryHome)
	_, err := f.pricing.PriceCart(ctx, homeCart(CartItemRequest{ProductID: 2, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, f.shipping.Calls)
}

func TestValidatePromoCode(t *testing.T) {
	f := newFixture()
	f.addCode(&models.PromoCode{ID: 5, Code: "WELCOME10", Type: models.DiscountPercent, Amount: dec("10"),
		MinCartAmount: decPtr("20"), IsActive: true})
	ctx := context.Background()

	ok, err := f.pricing.ValidatePromoCode(ctx, "welcome10", dec("25"), "")
	require.NoError(t, err)
	assert.True(t, ok.IsValid)
	assertDecimal(t, "2.5", pricing.CalculateDiscount(dec("25"), ok.PromoCode))

	low, err := f.pricing.ValidatePromoCode(ctx, "WELCOME10", dec("10"), "")
	require.NoError(t, err)
	assert.False(t, low.IsValid)
	assert.Equal(t, models.KindConstraintViolation, low.Kind)
	assert.Equal(t, "Le montant minimum de commande pour ce code est de 20.00 €", low.Error)

	missing, err := f.pricing.ValidatePromoCode(ctx, "GHOST", dec("10"), "")
	require.NoError(t, err)
	assert.Equal(t, models.KindNotFound, missing.Kind)
}

func TestQuoteShipping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cost, err := f.pricing.QuoteShipping(ctx, models.DeliveryHome, dec("6"))
	require.NoError(t, err)
	assertDecimal(t, "7.90", cost.Cost)
	assert.False(t, cost.IsFree)
	require.NotNil(t, cost.FreeThreshold)
	assertDecimal(t, "49", *cost.FreeThreshold)

	pickup, err := f.pricing.QuoteShipping(ctx, models.DeliveryPharmacyPickup, dec("20"))
	require.NoError(t, err)
	assert.True(t, pickup.IsFree)

	_, err = f.pricing.QuoteShipping(ctx, "DRONE", dec("1"))
	assert.ErrorIs(t, err, ErrInvalidDeliveryMode)
}

func TestProductPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.pricing.ProductPrice(ctx, 1)
	require.NoError(t, err)
	assertDecimal(t, "10", p.OriginalPrice)
	assertDecimal(t, "2", p.DiscountAmount)
	assertDecimal(t, "8", p.FinalPrice)

	_, err = f.pricing.ProductPrice(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPriceCart_QuantityBounds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		items []CartItemRequest
	}{
		{"single line above cap", []CartItemRequest{{ProductID: 1, Quantity: MaxLineQuantity + 1}}},
		{"huge single line", []CartItemRequest{{ProductID: 1, Quantity: math.MaxInt64}}},
		{"merged lines would overflow", []CartItemRequest{{ProductID: 1, Quantity: math.MaxInt64}, {ProductID: 1, Quantity: 2}}},
		{"merged lines above cap", []CartItemRequest{{ProductID: 1, Quantity: MaxLineQuantity}, {ProductID: 1, Quantity: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pricing.PriceCart(ctx, homeCart(tt.items...))
			assert.ErrorIs(t, err, ErrInvalidQuantity)
		})
	}
	assert.Zero(t, f.products.Calls)
}

func TestPriceCart_MergedQuantityAtCap(t *testing.T) {
	f := newFixture()
	req := CartRequest{Items: []CartItemRequest{
		{ProductID: 2, Quantity: MaxLineQuantity - 1},
		{ProductID: 2, Quantity: 1},
	}, DeliveryMode: models.DeliveryPharmacyPickup}

	res, err := f.pricing.PriceCart(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, MaxLineQuantity, res.Lines[0].Quantity)
	assertDecimal(t, "60000", res.Subtotal)
}

func TestQuoteShipping_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cost, err := f.pricing.QuoteShipping(ctx, models.DeliveryHome, dec("1"))

	require.NoError(t, err)
	assertDecimal(t, "4.90", cost.Cost)
	assert.Equal(t, 1, f.shipping.Calls)
}
