package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bigjbird1/vowswap/internal/metrics"
)

// Limiter решает, можно ли пропустить ещё один запрос с указанным ключом в текущем окне.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter — ограничитель с фиксированным окном в памяти процесса.
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	requests  map[string]int
	lastReset time.Time
	now       func() time.Time
}

// NewMemoryLimiter создаёт ограничитель на limit запросов за window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:     limit,
		window:    window,
		requests:  make(map[string]int),
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Allow реализует Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Сбрасываем счетчики при истечении окна
	if l.now().Sub(l.lastReset) >= l.window {
		l.requests = make(map[string]int)
		l.lastReset = l.now()
	}

	count := l.requests[key]
	if count >= l.limit {
		return false, nil
	}

	l.requests[key] = count + 1
	return true, nil
}

// RedisLimiter — ограничитель с фиксированным окном, разделяемый между экземплярами сервиса.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter создаёт ограничитель на limit запросов за window поверх Redis.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "vowswap:ratelimit:",
	}
}

// Allow реализует Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("incr rate counter: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("expire rate counter: %w", err)
		}
	}

	return n <= l.limit, nil
}

// RateLimit ограничивает частоту запросов по пользователю, а для анонимных запросов по адресу клиента.
// При недоступности хранилища счётчиков запрос пропускается.
func RateLimit(l Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				path := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					path = rctx.RoutePattern()
				}
				metrics.RateLimited.WithLabelValues(path).Inc()
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if who, ok := GetIdentityFromContext(r.Context()); ok {
		return "user:" + who.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
