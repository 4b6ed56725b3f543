package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountFlat    DiscountType = "FLAT"
	DiscountPercent DiscountType = "PERCENT"
)

func (t DiscountType) Valid() bool {
	return t == DiscountFlat || t == DiscountPercent
}

type Promotion struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      DiscountType    `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	IsActive  bool            `json:"isActive"`
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PromotionAssociation is the product -> promotion join row. Position keeps
// the order in which promotions were attached to the product.
type PromotionAssociation struct {
	ProductID int64     `json:"productId"`
	Position  int       `json:"position"`
	Promotion Promotion `json:"promotion"`
}

// PriceCalculation is the display price of a single product unit.
type PriceCalculation struct {
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalPrice     decimal.Decimal `json:"finalPrice"`
	HasPromotion   bool            `json:"hasPromotion"`
	Promotion      *Promotion      `json:"promotion,omitempty"`
}
