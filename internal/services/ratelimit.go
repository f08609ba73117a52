package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
)

func checkRateLimit(ctx context.Context, limiter repository.RateLimitRepository, scope, clientKey string) error {
	allowed, remaining, retryAfter, err := limiter.CheckRateLimit(ctx, scope, clientKey)
	if err != nil {
		return appErrors.InternalError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		middleware.LoggerFromContext(ctx).Warn("Rate limit exceeded",
			slog.String("scope", scope),
			slog.Int("retryAfter", retryAfter))

		return appErrors.TooManyRequestsError("Too many requests. Please try again later.").
			WithDetail(fmt.Sprintf("retry after %d seconds", retryAfter))
	}

	middleware.LoggerFromContext(ctx).Debug("Rate limit check passed",
		slog.String("scope", scope),
		slog.Int("remaining", remaining))

	return nil
}
