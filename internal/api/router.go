package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/api/handlers"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/api/middleware"
)

type Services struct {
	Pricing  handlers.PricingService
	Checkout handlers.CheckoutService
	Admin    handlers.AdminService
}

// NewRouter builds the HTTP router for the pricing service
func NewRouter(svc Services, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	if requestTimeout > 0 {
		r.Use(chimw.Timeout(requestTimeout))
	}

	pricingHandler := handlers.NewPricingHandler(svc.Pricing, logger)
	orderHandler := handlers.NewOrderHandler(svc.Checkout, logger)
	adminHandler := handlers.NewAdminHandler(svc.Admin, logger)

	// Public pricing endpoints
	r.Post("/cart/price", pricingHandler.PriceCart)
	r.Post("/promo-codes/validate", pricingHandler.ValidatePromoCode)
	r.Post("/shipping/quote", pricingHandler.QuoteShipping)
	r.Get("/products/{id}/price", pricingHandler.ProductPrice)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.PlaceOrder)
		r.Get("/{id}", orderHandler.GetOrder)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/products", adminHandler.CreateProduct)
		r.Post("/promo-codes", adminHandler.CreatePromoCode)
		r.Post("/promotions", adminHandler.CreatePromotion)
		r.Post("/shipping-methods", adminHandler.CreateShippingMethod)
		r.Patch("/orders/{id}/status", orderHandler.UpdateStatus)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
