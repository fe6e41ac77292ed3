// Package handler содержит HTTP-обработчики API сервиса VowSwap.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bigjbird1/vowswap/internal/middleware"
	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/repository"
	"github.com/bigjbird1/vowswap/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	SubmitReport(ctx context.Context, who model.Identity, in service.SubmitReportInput) (*model.ContentReport, error)
	ListReports(ctx context.Context, who model.Identity, f model.ReportFilter) ([]model.ReportDetails, error)
	GetReport(ctx context.Context, who model.Identity, id uuid.UUID) (*model.ReportDetails, error)
	ApplyModerationAction(ctx context.Context, who model.Identity, in service.ApplyActionInput) (*model.ModerationResult, error)

	ValidateAndRedeem(ctx context.Context, who model.Identity, in service.CouponInput) (model.Eligibility, error)
	RedeemCoupon(ctx context.Context, who model.Identity, in service.CouponInput) (model.Eligibility, error)
	CreatePromotion(ctx context.Context, who model.Identity, in service.CreatePromotionInput) (*model.Promotion, error)
	GetPromotion(ctx context.Context, who model.Identity, id uuid.UUID) (*model.Promotion, error)
}

// Handler реализует HTTP-обработчики API сервиса VowSwap.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware

	couponLimiter  middleware.Limiter
	allowedOrigins []string
	gatherer       prometheus.Gatherer
}

// Option настраивает необязательные части обработчика.
type Option func(*Handler)

// WithCouponLimiter ограничивает частоту запросов к эндпоинтам купонов.
func WithCouponLimiter(l middleware.Limiter) Option {
	return func(h *Handler) { h.couponLimiter = l }
}

// WithAllowedOrigins разрешает кросс-доменные запросы с указанных источников.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

// WithMetrics публикует метрики из gatherer на /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = g }
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, opts ...Option) *Handler {
	h := &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func identity(r *http.Request) model.Identity {
	who, _ := middleware.GetIdentityFromContext(r.Context())
	return who
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

// writeError переводит ошибку сервиса в HTTP-ответ. Подробности внутренних ошибок
// клиенту не передаются.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrSuspended):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, service.ErrValidation):
		badRequest(w, err.Error())
	case errors.Is(err, repository.ErrReportNotFound), errors.Is(err, repository.ErrPromotionNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, repository.ErrCouponCodeExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.internalError(w, r, op, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op+" error", zap.Error(err), zap.String("uri", r.RequestURI))

	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Health сообщает о доступности хранилища.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
