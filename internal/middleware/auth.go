// Package middleware содержит HTTP middleware сервиса.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// Cookie, в котором провайдер идентификации хранит access token браузерной сессии.
const accessTokenCookie = "sb-access-token"

// IdentityResolver определяет роль пользователя по идентификатору из токена.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uuid.UUID) (model.Identity, error)
}

// AuthMiddleware проверяет access token провайдера идентификации (HS256) и
// помещает в контекст запроса идентичность вызывающего.
type AuthMiddleware struct {
	secretKey []byte
	resolver  IdentityResolver
	logger    *zap.Logger
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware.
func NewAuthMiddleware(secret string, resolver IdentityResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secretKey: []byte(secret),
		resolver:  resolver,
		logger:    logger,
	}
}

// Middleware отклоняет запросы без действительного токена.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, ok := a.parseToken(raw)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		who, err := a.resolver.ResolveIdentity(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnauthenticated):
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			case errors.Is(err, service.ErrSuspended):
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			default:
				a.logger.Error("resolve identity error", zap.Error(err), zap.Stringer("userID", userID))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if c, err := r.Cookie(accessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func (a *AuthMiddleware) parseToken(raw string) (uuid.UUID, bool) {
	if len(a.secretKey) == 0 {
		return uuid.Nil, false
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithIdentity возвращает контекст с идентичностью вызывающего.
func WithIdentity(ctx context.Context, who model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, who)
}

// GetIdentityFromContext извлекает идентичность вызывающего из контекста запроса.
func GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	who, ok := ctx.Value(identityKey).(model.Identity)
	return who, ok && who.Authenticated()
}
