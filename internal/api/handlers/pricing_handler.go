package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/pricing"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/service"
)

type PricingService interface {
	PriceCart(ctx context.Context, req service.CartRequest) (models.CartPricing, error)
	ValidatePromoCode(ctx context.Context, code string, cartTotal decimal.Decimal, userID string) (models.ValidationResult, error)
	QuoteShipping(ctx context.Context, mode models.DeliveryMode, weight decimal.Decimal) (models.ShippingCost, error)
	ProductPrice(ctx context.Context, productID int64) (models.PriceCalculation, error)
}

// --- Request / Response DTOs ---

type ValidatePromoCodeRequest struct {
	Code      string          `json:"code"`
	CartTotal decimal.Decimal `json:"cartTotal"`
	UserID    string          `json:"userId"`
}

type ValidatePromoCodeResponse struct {
	IsValid   bool                       `json:"isValid"`
	Error     string                     `json:"error,omitempty"`
	Kind      models.ValidationErrorKind `json:"kind,omitempty"`
	PromoCode *models.PromoCode          `json:"promoCode,omitempty"`
	Discount  *decimal.Decimal           `json:"discount,omitempty"`
}

type QuoteShippingRequest struct {
	DeliveryMode models.DeliveryMode `json:"deliveryMode"`
	Weight       decimal.Decimal     `json:"weight"`
}

type PricingHandler struct {
	service PricingService
	logger  *zap.Logger
}

func NewPricingHandler(svc PricingService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{service: svc, logger: logger}
}

// PriceCart handles POST /cart/price
func (h *PricingHandler) PriceCart(w http.ResponseWriter, r *http.Request) {
	var req service.CartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.PriceCart(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ValidatePromoCode handles POST /promo-codes/validate. A refused code is
// answered with 422 and the same body shape, carrying the customer message.
func (h *PricingHandler) ValidatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.ValidatePromoCode(r.Context(), req.Code, req.CartTotal, req.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	if !res.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, ValidatePromoCodeResponse{IsValid: false, Error: res.Error, Kind: res.Kind})
		return
	}

	discount := pricing.CalculateDiscount(req.CartTotal, res.PromoCode)
	writeJSON(w, http.StatusOK, ValidatePromoCodeResponse{
		IsValid:   true,
		PromoCode: res.PromoCode,
		Discount:  &discount,
	})
}

// QuoteShipping handles POST /shipping/quote
func (h *PricingHandler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	var req QuoteShippingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.QuoteShipping(r.Context(), req.DeliveryMode, req.Weight)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ProductPrice handles GET /products/{id}/price
func (h *PricingHandler) ProductPrice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_product_id"})
		return
	}

	res, err := h.service.ProductPrice(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
