package service

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to order")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidDeliveryMode = errors.New("unknown delivery mode")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("unknown order status")
	ErrPromoCodeRejected   = errors.New("promo code rejected")
	ErrPromoCodeExhausted  = errors.New("promo code usage limit reached")
	ErrPromoCodeExists     = errors.New("promo code already exists")
	ErrShippingModeExists  = errors.New("shipping method already exists for this mode")
	ErrInvalidInput        = errors.New("invalid input")
)

// PromoCodeRejectedError carries the customer-facing reason a promo code was
// refused at checkout.
type PromoCodeRejectedError struct {
	Message string
}

func (e *PromoCodeRejectedError) Error() string {
	return "promo code rejected: " + e.Message
}

func (e *PromoCodeRejectedError) Unwrap() error {
	return ErrPromoCodeRejected
}
