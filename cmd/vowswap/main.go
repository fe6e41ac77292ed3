// Package main запускает HTTP-сервер сервиса VowSwap.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/leandro-lugaresi/hub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bigjbird1/vowswap/internal/config"
	"github.com/bigjbird1/vowswap/internal/handler"
	"github.com/bigjbird1/vowswap/internal/metrics"
	"github.com/bigjbird1/vowswap/internal/middleware"
	"github.com/bigjbird1/vowswap/internal/notification"
	"github.com/bigjbird1/vowswap/internal/repository"
	"github.com/bigjbird1/vowswap/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			sugar.Warnw("sentry init failed", "error", err.Error())
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	events := hub.New()
	notifier := notification.StartService(events, logger)
	defer notifier.Stop()

	svc := service.NewService(repo, events)
	defer svc.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, svc, logger)
	h := handler.NewHandler(svc, logger, authMiddleware,
		handler.WithCouponLimiter(newCouponLimiter(cfg, sugar)),
		handler.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		handler.WithMetrics(registry),
	)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting vowswap server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// newCouponLimiter возвращает ограничитель на Redis, если он настроен и доступен,
// и ограничитель в памяти процесса в остальных случаях.
func newCouponLimiter(cfg *config.Config, sugar *zap.SugaredLogger) middleware.Limiter {
	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(cfg.CouponRateLimit, time.Minute)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Warnw("invalid redis url, using in-memory rate limiter", "error", err.Error())
		return middleware.NewMemoryLimiter(cfg.CouponRateLimit, time.Minute)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		sugar.Warnw("redis unavailable, using in-memory rate limiter", "error", err.Error())
		_ = rdb.Close()
		return middleware.NewMemoryLimiter(cfg.CouponRateLimit, time.Minute)
	}

	sugar.Infow("coupon rate limiter backed by redis", "addr", opts.Addr)
	return middleware.NewRedisLimiter(rdb, cfg.CouponRateLimit, time.Minute)
}
