package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

// Customer-facing promo code messages.
const (
	MsgInvalidCode       = "Code promo invalide"
	MsgInactiveCode      = "Ce code promo n'est plus actif"
	MsgNotYetValid       = "Ce code promo n'est pas encore valide"
	MsgExpired           = "Ce code promo a expiré"
	MsgMinimumNotMet     = "Le montant minimum de commande pour ce code est de %s €"
	MsgUsageLimitReached = "Ce code promo a atteint sa limite d'utilisation"
	MsgAlreadyUsed       = "Vous avez déjà utilisé ce code promo"
)

// NormalizeCode is the canonical form codes are stored and looked up in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NeedsUserUsage reports whether validating pc for userID needs the count of
// the user's previous orders with this code.
func NeedsUserUsage(pc *models.PromoCode, userID string) bool {
	return pc != nil && pc.PerUserLimit != nil && userID != ""
}

// ValidatePromoCode runs the promo code checks in order and stops at the first
// failure. pc is nil when no code matched. userUses is the number of the
// user's orders already placed with pc; it is ignored unless NeedsUserUsage.
func ValidatePromoCode(pc *models.PromoCode, cartTotal decimal.Decimal, userID string, userUses int, now time.Time) models.ValidationResult {
	if pc == nil {
		return refused(models.KindNotFound, MsgInvalidCode)
	}
	if !pc.IsActive {
		return refused(models.KindInactive, MsgInactiveCode)
	}
	if pc.StartDate != nil && now.Before(*pc.StartDate) {
		return refused(models.KindInactive, MsgNotYetValid)
	}
	if pc.EndDate != nil && now.After(*pc.EndDate) {
		return refused(models.KindInactive, MsgExpired)
	}
	if pc.MinCartAmount != nil && cartTotal.LessThan(*pc.MinCartAmount) {
		return refused(models.KindConstraintViolation, fmt.Sprintf(MsgMinimumNotMet, pc.MinCartAmount.StringFixed(2)))
	}
	if pc.UsageLimit != nil && pc.UsageCount >= *pc.UsageLimit {
		return refused(models.KindConstraintViolation, MsgUsageLimitReached)
	}
	if NeedsUserUsage(pc, userID) && userUses >= *pc.PerUserLimit {
		return refused(models.KindConstraintViolation, MsgAlreadyUsed)
	}
	return models.ValidationResult{IsValid: true, PromoCode: pc}
}

func refused(kind models.ValidationErrorKind, msg string) models.ValidationResult {
	return models.ValidationResult{IsValid: false, Kind: kind, Error: msg}
}

// CalculateDiscount returns the cart discount granted by pc. Flat codes never
// discount more than the cart total.
func CalculateDiscount(cartTotal decimal.Decimal, pc *models.PromoCode) decimal.Decimal {
	if pc == nil {
		return decimal.Zero
	}
	switch pc.Type {
	case models.DiscountPercent:
		return cartTotal.Mul(pc.Amount).Div(hundred)
	case models.DiscountFlat:
		return decimal.Min(pc.Amount, cartTotal)
	}
	return decimal.Zero
}
