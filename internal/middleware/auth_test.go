package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/service"
)

const testSecret = "test-secret"

type stubResolver struct {
	identity model.Identity
	err      error
}

func (s *stubResolver) ResolveIdentity(ctx context.Context, userID uuid.UUID) (model.Identity, error) {
	if s.err != nil {
		return model.Identity{}, s.err
	}
	who := s.identity
	who.UserID = userID
	return who, nil
}

func signToken(t *testing.T, secret string, subject string, ttl time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddleware_WithValidToken(t *testing.T) {
	userID := uuid.New()
	m := NewAuthMiddleware(testSecret, &stubResolver{identity: model.Identity{Role: model.RoleModerator}}, zap.NewNop())

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		who, ok := GetIdentityFromContext(r.Context())
		require.True(t, ok, "identity not in context")
		assert.Equal(t, userID, who.UserID)
		assert.Equal(t, model.RoleModerator, who.Role)
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID.String(), time.Hour))

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, nextCalled, "next handler was not called")
}

func TestAuthMiddleware_TokenFromCookie(t *testing.T) {
	m := NewAuthMiddleware(testSecret, &stubResolver{identity: model.Identity{Role: model.RoleCustomer}}, zap.NewNop())

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: signToken(t, testSecret, uuid.NewString(), time.Hour)})

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, nextCalled)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		resolver   *stubResolver
		wantStatus int
	}{
		{
			name:       "no token",
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			header:     "Bearer " + signToken(t, "other-secret", userID.String(), time.Hour),
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			header:     "Bearer " + signToken(t, testSecret, userID.String(), -time.Minute),
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "subject is not a uuid",
			header:     "Bearer " + signToken(t, testSecret, "not-a-uuid", time.Hour),
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "basic scheme",
			header:     "Basic dXNlcjpwYXNz",
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown user",
			header:     "Bearer " + signToken(t, testSecret, userID.String(), time.Hour),
			resolver:   &stubResolver{err: service.ErrUnauthenticated},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "suspended user",
			header:     "Bearer " + signToken(t, testSecret, userID.String(), time.Hour),
			resolver:   &stubResolver{err: service.ErrSuspended},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "store failure",
			header:     "Bearer " + signToken(t, testSecret, userID.String(), time.Hour),
			resolver:   &stubResolver{err: context.DeadlineExceeded},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(testSecret, tt.resolver, zap.NewNop())
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			m.Middleware(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Result().StatusCode)
		})
	}
}

func TestGetIdentityFromContext_Empty(t *testing.T) {
	_, ok := GetIdentityFromContext(context.Background())
	assert.False(t, ok)

	_, ok = GetIdentityFromContext(WithIdentity(context.Background(), model.Identity{}))
	assert.False(t, ok)
}
