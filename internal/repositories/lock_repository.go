package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds the caller's token, so
// an expired holder cannot release a lock taken over by someone else.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type LockRepository interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, name, token string) error
}

type lockRepository struct {
	client   *redis.Client
	newToken func() string
}

func NewLockRepo(client *redis.Client) LockRepository {
	return &lockRepository{client: client, newToken: uuid.NewString}
}

// Acquire tries once to take the named lock. It returns the token needed to
// release it, or ok=false when another holder has it.
func (l *lockRepository) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	key := cache.Key(cache.LockKeyPrefix, name)
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

func (l *lockRepository) Release(ctx context.Context, name, token string) error {
	key := cache.Key(cache.LockKeyPrefix, name)

	if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}

	return nil
}
