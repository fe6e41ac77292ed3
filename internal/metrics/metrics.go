// Package metrics содержит метрики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Модерация
	ReportsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vowswap_reports_submitted_total",
			Help: "Total number of submitted content reports",
		},
		[]string{"content_type"},
	)
	ModerationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vowswap_moderation_actions_total",
			Help: "Total number of applied moderation actions",
		},
		[]string{"action"},
	)
	UsersSuspended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vowswap_users_suspended_total",
			Help: "Total number of users suspended by moderation",
		},
	)

	// Купоны
	CouponChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vowswap_coupon_checks_total",
			Help: "Total number of coupon eligibility checks",
		},
		[]string{"mode", "result"},
	)
	CouponRedemptions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vowswap_coupon_redemptions_total",
			Help: "Total number of committed coupon redemptions",
		},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vowswap_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
)

// Register регистрирует метрики в указанном реестре.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		ReportsSubmitted,
		ModerationActions,
		UsersSuspended,
		CouponChecks,
		CouponRedemptions,
		RateLimited,
	)
}
