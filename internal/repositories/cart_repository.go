package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/redis/go-redis/v9"
)

var ErrPendingOrderNotFound = errors.New("pending order not found")

// CartRepository persists one cart per guest session. Each save refreshes the
// expiry so abandoned carts age out.
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, sessionID string) error
}

type PendingOrderRepository interface {
	SavePendingOrder(ctx context.Context, order *models.PendingOrder) error
	GetPendingOrder(ctx context.Context, sessionID string) (*models.PendingOrder, error)
	DeletePendingOrder(ctx context.Context, sessionID string) error
}

type sessionStore struct {
	client          *redis.Client
	cartTTL         time.Duration
	pendingOrderTTL time.Duration
}

func NewCartRepo(client *redis.Client, cartTTL time.Duration) CartRepository {
	return &sessionStore{client: client, cartTTL: cartTTL}
}

func NewPendingOrderRepo(client *redis.Client, ttl time.Duration) PendingOrderRepository {
	return &sessionStore{client: client, pendingOrderTTL: ttl}
}

// GetCart returns an empty cart for a session that has none stored.
func (s *sessionStore) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	key := cache.Key(cache.CartKeyPrefix, sessionID)

	data, err := s.client.Get(rCtx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.NewCart(sessionID), nil
		}

		return nil, fmt.Errorf("failed to get cart %s: %w", key, err)
	}

	cart := &models.Cart{}
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart %s: %w", key, err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartLineItem{}
	}

	return cart, nil
}

func (s *sessionStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	key := cache.Key(cache.CartKeyPrefix, cart.SessionID)

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart %s: %w", key, err)
	}

	if err := s.client.Set(rCtx, key, data, s.cartTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", key, err)
	}

	return nil
}

func (s *sessionStore) DeleteCart(ctx context.Context, sessionID string) error {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	key := cache.Key(cache.CartKeyPrefix, sessionID)

	if err := s.client.Del(rCtx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", key, err)
	}

	return nil
}

func (s *sessionStore) SavePendingOrder(ctx context.Context, order *models.PendingOrder) error {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	key := cache.Key(cache.PendingOrderKeyPrefix, order.SessionID)

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal pending order %s: %w", key, err)
	}

	if err := s.client.Set(rCtx, key, data, s.pendingOrderTTL).Err(); err != nil {
		return fmt.Errorf("failed to save pending order %s: %w", key, err)
	}

	return nil
}

func (s *sessionStore) GetPendingOrder(ctx context.Context, sessionID string) (*models.PendingOrder, error) {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	key := cache.Key(cache.PendingOrderKeyPrefix, sessionID)

	data, err := s.client.Get(rCtx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingOrderNotFound
		}

		return nil, fmt.Errorf("failed to get pending order %s: %w", key, err)
	}

	order := &models.PendingOrder{}
	if err := json.Unmarshal(data, order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending order %s: %w", key, err)
	}

	return order, nil
}

func (s *sessionStore) DeletePendingOrder(ctx context.Context, sessionID string) error {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	key := cache.Key(cache.PendingOrderKeyPrefix, sessionID)

	if err := s.client.Del(rCtx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete pending order %s: %w", key, err)
	}

	return nil
}
