package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/pricing"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: err.Error()})
		return false
	}
	return true
}

func parseTimeOrEmpty(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// errorStatus maps service and core errors onto a status and an error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, pricing.ErrShippingMethodNotFound):
		return http.StatusNotFound, "shipping_method_not_found"
	case errors.Is(err, pricing.ErrNoApplicableRate):
		return http.StatusUnprocessableEntity, "no_shipping_rate"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, "invalid_quantity"
	case errors.Is(err, service.ErrInvalidDeliveryMode):
		return http.StatusUnprocessableEntity, "invalid_delivery_mode"
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, "invalid_status"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, service.ErrPromoCodeRejected):
		return http.StatusUnprocessableEntity, "promo_code_rejected"
	case errors.Is(err, service.ErrPromoCodeExhausted):
		return http.StatusConflict, "promo_code_exhausted"
	case errors.Is(err, service.ErrPromoCodeExists):
		return http.StatusConflict, "promo_code_exists"
	case errors.Is(err, service.ErrShippingModeExists):
		return http.StatusConflict, "shipping_method_exists"
	case errors.Is(err, models.ErrInvalidStatusTransition):
		return http.StatusConflict, "invalid_status_transition"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError logs unexpected failures and hides their detail from the client.
func writeError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	code, name := errorStatus(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, code, errorResponse{Error: name})
		return
	}

	msg := err.Error()
	var rejected *service.PromoCodeRejectedError
	if errors.As(err, &rejected) {
		msg = rejected.Message
	}
	writeJSON(w, code, errorResponse{Error: name, Message: msg})
}
