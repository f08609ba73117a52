package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

// ServiceAudience is required on every token accepted by ServiceAuth. Guest
// session tokens never carry it.
const ServiceAudience = "storefront-internal"

type serviceContextKey struct{}

var ServiceContextKey = serviceContextKey{}

// ServiceAuth guards back-office routes such as order recording. Callers are
// other services holding a token signed with the service key.
type ServiceAuth struct {
	key []byte
}

func NewServiceAuth(key []byte) *ServiceAuth {
	return &ServiceAuth{key: key}
}

func (m *ServiceAuth) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{ServiceAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

func (m *ServiceAuth) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		if len(m.key) == 0 {
			logger.Warn("Service route called without a configured service key")
			response.Error(w, errors.UnauthorizedError("Service access is disabled"))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &jwt.RegisteredClaims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(ServiceAudience),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			logger.Warn("Service token rejected", slog.Any("error", err))
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), ServiceContextKey, claims.Subject)
		ctx = context.WithValue(ctx, LoggerKey, logger.With(slog.String("service", claims.Subject)))

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
