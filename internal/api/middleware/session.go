package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-Token"
	SessionCookie = "sf_session"
)

type sessionContextKey struct{}

var SessionContextKey = sessionContextKey{}

// SessionClaims identify a guest shopper. The subject is the session id that
// keys the cart and pending order.
type SessionClaims struct {
	jwt.RegisteredClaims
}

type SessionMiddleware struct {
	key    []byte
	expiry time.Duration
	secure bool
}

func NewSessionMiddleware(key []byte, expiry time.Duration, secure bool) *SessionMiddleware {
	return &SessionMiddleware{key: key, expiry: expiry, secure: secure}
}

func (m *SessionMiddleware) IssueToken(sessionID string) (string, error) {
	now := time.Now()

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

func (m *SessionMiddleware) parse(tokenString string) (string, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		return m.key, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}

	return claims.Subject, nil
}

func tokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(SessionHeader); token != "" {
		return token
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}

// Session attaches the guest session to the request. A missing, expired or
// tampered token starts a fresh session and returns its token in both the
// response header and cookie.
func (m *SessionMiddleware) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := LoggerFromContext(r.Context())

		sessionID := ""

		if token := tokenFromRequest(r); token != "" {
			id, err := m.parse(token)
			if err != nil {
				logger.Warn("Discarding invalid session token", slog.String("error", err.Error()))
			} else {
				sessionID = id
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()

			token, err := m.IssueToken(sessionID)
			if err != nil {
				logger.Error("Failed to issue session token", slog.Any("error", err))
				response.Error(w, appErrors.InternalError("Failed to start session").WithError(err))

				return
			}

			w.Header().Set(SessionHeader, token)
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(m.expiry.Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})

			logger.Info("Started guest session")
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, sessionID)
		ctx = context.WithValue(ctx, LoggerKey, logger.With(slog.String("sessionID", sessionID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionContextKey).(string)

	return id, ok && id != ""
}
