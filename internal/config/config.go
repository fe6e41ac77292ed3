// Package config содержит логику чтения конфигурации сервиса VowSwap.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress      = "localhost:8080"
	defaultCouponRateLimit = 30
)

// Config содержит параметры конфигурации сервиса VowSwap.
type Config struct {
	RunAddress         string   `env:"RUN_ADDRESS"`
	DatabaseURI        string   `env:"DATABASE_URI"`
	JWTSecret          string   `env:"JWT_SECRET"`
	RedisURL           string   `env:"REDIS_URL"`
	SentryDSN          string   `env:"SENTRY_DSN"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	// Число проверок купонов на пользователя в минуту.
	CouponRateLimit int `env:"COUPON_RATE_LIMIT"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	// .env необязателен, уже заданные переменные окружения он не перезаписывает
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envJWTSecret := cfg.JWTSecret
	envRedisURL := cfg.RedisURL

	var origins string

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.JWTSecret, "s", "", "JWT secret of the identity provider")
	flag.StringVar(&cfg.RedisURL, "r", "", "redis URL for rate limiting")
	flag.StringVar(&origins, "cors", "", "comma separated list of allowed CORS origins")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envJWTSecret != "" {
		cfg.JWTSecret = envJWTSecret
	}
	if envRedisURL != "" {
		cfg.RedisURL = envRedisURL
	}
	if len(cfg.CORSAllowedOrigins) == 0 && origins != "" {
		cfg.CORSAllowedOrigins = strings.Split(origins, ",")
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.CouponRateLimit <= 0 {
		cfg.CouponRateLimit = defaultCouponRateLimit
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required (-s or JWT_SECRET)")
	}

	return cfg, nil
}
