package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLockRepo(t *testing.T) (*lockRepository, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	repo := &lockRepository{client: client, newToken: func() string { return "tok-1" }}

	return repo, mock
}

func TestLockRepository(t *testing.T) {
	key := "storefront:lock:finalize:cs_test_1"

	t.Run("Acquire - Free lock", func(t *testing.T) {
		// Arrange
		repo, mock := newTestLockRepo(t)
		mock.ExpectSetNX(key, "tok-1", 30*time.Second).SetVal(true)

		// Act
		token, ok, err := repo.Acquire(t.Context(), "finalize:cs_test_1", 30*time.Second)

		// Assert
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok-1", token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Acquire - Held by someone else", func(t *testing.T) {
		// Arrange
		repo, mock := newTestLockRepo(t)
		mock.ExpectSetNX(key, "tok-1", 30*time.Second).SetVal(false)

		// Act
		token, ok, err := repo.Acquire(t.Context(), "finalize:cs_test_1", 30*time.Second)

		// Assert
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Acquire - Redis error", func(t *testing.T) {
		// Arrange
		repo, mock := newTestLockRepo(t)
		redisErr := errors.New("connection refused")
		mock.ExpectSetNX(key, "tok-1", 30*time.Second).SetErr(redisErr)

		// Act
		_, ok, err := repo.Acquire(t.Context(), "finalize:cs_test_1", 30*time.Second)

		// Assert
		assert.False(t, ok)
		assert.ErrorIs(t, err, redisErr)
	})

	t.Run("Release deletes only our token", func(t *testing.T) {
		// Arrange
		repo, mock := newTestLockRepo(t)
		mock.ExpectEval(releaseScript, []string{key}, "tok-1").SetVal(int64(1))

		// Act
		err := repo.Release(t.Context(), "finalize:cs_test_1", "tok-1")

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
