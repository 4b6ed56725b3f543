package models

import "github.com/shopspring/decimal"

type Product struct {
	ID         int64                  `json:"id"`
	Name       string                 `json:"name"`
	Price      decimal.Decimal        `json:"price"`
	Weight     decimal.Decimal        `json:"weight"`
	IsActive   bool                   `json:"isActive"`
	Promotions []PromotionAssociation `json:"promotions,omitempty"`
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart is the already-fetched input of a pricing run. AppliedCode is what the
// customer typed; PromoCode is the matching row, nil when none exists.
type Cart struct {
	UserID         string
	Items          []CartItem
	AppliedCode    string
	PromoCode      *PromoCode
	UserPromoUses  int
	DeliveryMode   DeliveryMode
	ShippingMethod *ShippingMethod
	Weight         decimal.Decimal
}

type CartLine struct {
	ProductID int64            `json:"productId"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	UnitPrice PriceCalculation `json:"unitPrice"`
	LineTotal decimal.Decimal  `json:"lineTotal"`
}

type CartPricing struct {
	Lines        []CartLine      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	PromoCode    *PromoCode      `json:"promoCode,omitempty"`
	PromoError   string          `json:"promoError,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	DeliveryMode DeliveryMode    `json:"deliveryMode"`
	Shipping     ShippingCost    `json:"shipping"`
	Weight       decimal.Decimal `json:"weight"`
	Total        decimal.Decimal `json:"total"`
}
