package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommiddleware "github.com/bigjbird1/vowswap/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса VowSwap.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	if len(h.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(custommiddleware.MetricsMiddleware)

	r.Get("/healthz", h.Health)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/reports", h.SubmitReport)

		r.Route("/moderation", func(r chi.Router) {
			r.Get("/reports", h.ListReports)
			r.Get("/reports/{id}", h.GetReport)
			r.Post("/actions", h.ApplyModerationAction)
		})

		r.Route("/coupons", func(r chi.Router) {
			if h.couponLimiter != nil {
				r.Use(custommiddleware.RateLimit(h.couponLimiter, h.logger))
			}
			r.Post("/validate", h.ValidateCoupon)
			r.Post("/redeem", h.RedeemCoupon)
		})

		r.Post("/promotions", h.CreatePromotion)
		r.Get("/promotions/{id}", h.GetPromotion)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
