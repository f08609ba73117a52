package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/cenkalti/backoff/v4"
)

var errLockBusy = errors.New("lock is held by another request")

// locker serializes work on one named resource across server instances.
type locker struct {
	locks repository.LockRepository
	ttl   time.Duration
	retry func() backoff.BackOff
}

// shortRetry waits briefly for a lock held by a concurrent request on the
// same cart.
func shortRetry() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(50*time.Millisecond), 5)
}

func noRetry() backoff.BackOff {
	return &backoff.StopBackOff{}
}

func (l *locker) withLock(ctx context.Context, name string, fn func() error) error {
	logger := middleware.LoggerFromContext(ctx)

	var token string

	acquire := func() error {
		t, ok, err := l.locks.Acquire(ctx, name, l.ttl)
		if err != nil {
			return backoff.Permanent(err)
		}

		if !ok {
			return errLockBusy
		}

		token = t

		return nil
	}

	if err := backoff.Retry(acquire, backoff.WithContext(l.retry(), ctx)); err != nil {
		if errors.Is(err, errLockBusy) {
			logger.Warn("Lock busy", slog.String("lock", name))
			return appErrors.ConflictError("Another request is already in progress, try again").WithError(err)
		}

		return appErrors.InternalError("Failed to acquire lock").WithError(err)
	}

	defer func() {
		if err := l.locks.Release(context.WithoutCancel(ctx), name, token); err != nil {
			logger.Error("Failed to release lock", slog.String("lock", name), slog.Any("error", err))
		}
	}()

	return fn()
}
