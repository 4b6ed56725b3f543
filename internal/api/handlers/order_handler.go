package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/service"
)

type CheckoutService interface {
	PlaceOrder(ctx context.Context, req service.CartRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) (*models.Order, error)
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type OrderHandler struct {
	service CheckoutService
	logger  *zap.Logger
}

func NewOrderHandler(svc CheckoutService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_order_id"})
		return uuid.Nil, false
	}
	return id, true
}

// PlaceOrder handles POST /orders. Totals are always recomputed server side.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// GetOrder handles GET /orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// UpdateStatus handles PATCH /admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.service.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
