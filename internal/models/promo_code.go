package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromoCode struct {
	ID                   int64            `json:"id"`
	Code                 string           `json:"code"`
	Type                 DiscountType     `json:"type"`
	Amount               decimal.Decimal  `json:"amount"`
	MinCartAmount        *decimal.Decimal `json:"minCartAmount,omitempty"`
	UsageLimit           *int             `json:"usageLimit,omitempty"`
	UsageCount           int              `json:"usageCount"`
	PerUserLimit         *int             `json:"perUserLimit,omitempty"`
	StartDate            *time.Time       `json:"startDate,omitempty"`
	EndDate              *time.Time       `json:"endDate,omitempty"`
	IsActive             bool             `json:"isActive"`
	FreeShippingMethodID *int64           `json:"freeShippingMethodId,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// ValidationErrorKind classifies why a promo code was refused.
type ValidationErrorKind string

const (
	KindNotFound            ValidationErrorKind = "not_found"
	KindInactive            ValidationErrorKind = "inactive"
	KindConstraintViolation ValidationErrorKind = "constraint_violation"
)

type ValidationResult struct {
	IsValid   bool                `json:"isValid"`
	Error     string              `json:"error,omitempty"`
	Kind      ValidationErrorKind `json:"kind,omitempty"`
	PromoCode *PromoCode          `json:"promoCode,omitempty"`
}
