package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

type AdminService interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	CreatePromoCode(ctx context.Context, pc *models.PromoCode) error
	CreatePromotion(ctx context.Context, p *models.Promotion, productIDs []int64) error
	CreateShippingMethod(ctx context.Context, m *models.ShippingMethod) error
}

// --- Request DTOs ---

type CreateProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Weight   decimal.Decimal `json:"weight"`
	IsActive *bool           `json:"isActive"`
}

type CreatePromoCodeRequest struct {
	Code                 string              `json:"code"`
	Type                 models.DiscountType `json:"type"`
	Amount               decimal.Decimal     `json:"amount"`
	MinCartAmount        *decimal.Decimal    `json:"minCartAmount,omitempty"`
	UsageLimit           *int                `json:"usageLimit,omitempty"`
	PerUserLimit         *int                `json:"perUserLimit,omitempty"`
	StartDate            string              `json:"startDate,omitempty"` // RFC3339
	EndDate              string              `json:"endDate,omitempty"`   // RFC3339
	IsActive             *bool               `json:"isActive"`
	FreeShippingMethodID *int64              `json:"freeShippingMethodId,omitempty"`
}

type CreatePromotionRequest struct {
	Name       string              `json:"name"`
	Type       models.DiscountType `json:"type"`
	Amount     decimal.Decimal     `json:"amount"`
	StartDate  string              `json:"startDate,omitempty"` // RFC3339
	EndDate    string              `json:"endDate,omitempty"`   // RFC3339
	IsActive   *bool               `json:"isActive"`
	ProductIDs []int64             `json:"productIds"`
}

type ShippingRateRequest struct {
	MinWeight decimal.Decimal `json:"minWeight"`
	MaxWeight decimal.Decimal `json:"maxWeight"`
	Price     decimal.Decimal `json:"price"`
}

type CreateShippingMethodRequest struct {
	Mode                  models.DeliveryMode   `json:"mode"`
	Name                  string                `json:"name"`
	IsActive              *bool                 `json:"isActive"`
	FreeShippingThreshold *decimal.Decimal      `json:"freeShippingThreshold,omitempty"`
	Rates                 []ShippingRateRequest `json:"rates"`
}

type AdminHandler struct {
	service AdminService
	logger  *zap.Logger
}

func NewAdminHandler(svc AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// activeOrDefault treats a missing isActive as true.
func activeOrDefault(b *bool) bool {
	return b == nil || *b
}

// window parses an optional RFC3339 activation window.
func window(w http.ResponseWriter, start, end string) (*time.Time, *time.Time, bool) {
	from, err := parseTimeOrEmpty(start)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: "invalid startDate; use RFC3339"})
		return nil, nil, false
	}
	to, err := parseTimeOrEmpty(end)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: "invalid endDate; use RFC3339"})
		return nil, nil, false
	}
	return from, to, true
}

// CreateProduct handles POST /admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := &models.Product{
		Name:     req.Name,
		Price:    req.Price,
		Weight:   req.Weight,
		IsActive: activeOrDefault(req.IsActive),
	}
	if err := h.service.CreateProduct(r.Context(), p); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// CreatePromoCode handles POST /admin/promo-codes
func (h *AdminHandler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req CreatePromoCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, end, ok := window(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	pc := &models.PromoCode{
		Code:                 req.Code,
		Type:                 req.Type,
		Amount:               req.Amount,
		MinCartAmount:        req.MinCartAmount,
		UsageLimit:           req.UsageLimit,
		PerUserLimit:         req.PerUserLimit,
		StartDate:            start,
		EndDate:              end,
		IsActive:             activeOrDefault(req.IsActive),
		FreeShippingMethodID: req.FreeShippingMethodID,
	}
	if err := h.service.CreatePromoCode(r.Context(), pc); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pc)
}

// CreatePromotion handles POST /admin/promotions
func (h *AdminHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, end, ok := window(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	p := &models.Promotion{
		Name:      req.Name,
		Type:      req.Type,
		Amount:    req.Amount,
		IsActive:  activeOrDefault(req.IsActive),
		StartDate: start,
		EndDate:   end,
	}
	if err := h.service.CreatePromotion(r.Context(), p, req.ProductIDs); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"promotion":  p,
		"productIds": req.ProductIDs,
	})
}

// CreateShippingMethod handles POST /admin/shipping-methods
func (h *AdminHandler) CreateShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req CreateShippingMethodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m := &models.ShippingMethod{
		Mode:                  req.Mode,
		Name:                  req.Name,
		IsActive:              activeOrDefault(req.IsActive),
		FreeShippingThreshold: req.FreeShippingThreshold,
		Rates:                 make([]models.ShippingRate, 0, len(req.Rates)),
	}
	for _, rt := range req.Rates {
		m.Rates = append(m.Rates, models.ShippingRate{MinWeight: rt.MinWeight, MaxWeight: rt.MaxWeight, Price: rt.Price})
	}
	if err := h.service.CreateShippingMethod(r.Context(), m); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
