package mocks

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository(t testingT) *MockCartRepository {
	m := &MockCartRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockCartRepository) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	args := m.Called(ctx, sessionID)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *MockCartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockPendingOrderRepository struct {
	mock.Mock
}

func NewMockPendingOrderRepository(t testingT) *MockPendingOrderRepository {
	m := &MockPendingOrderRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockPendingOrderRepository) SavePendingOrder(ctx context.Context, order *models.PendingOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockPendingOrderRepository) GetPendingOrder(ctx context.Context, sessionID string) (*models.PendingOrder, error) {
	args := m.Called(ctx, sessionID)
	order, _ := args.Get(0).(*models.PendingOrder)

	return order, args.Error(1)
}

func (m *MockPendingOrderRepository) DeletePendingOrder(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockLockRepository struct {
	mock.Mock
}

func NewMockLockRepository(t testingT) *MockLockRepository {
	m := &MockLockRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockLockRepository) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, name, ttl)

	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLockRepository) Release(ctx context.Context, name, token string) error {
	return m.Called(ctx, name, token).Error(0)
}

type MockRateLimitRepository struct {
	mock.Mock
}

func NewMockRateLimitRepository(t testingT) *MockRateLimitRepository {
	m := &MockRateLimitRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockRateLimitRepository) CheckRateLimit(ctx context.Context, scope, clientKey string) (bool, int, int, error) {
	args := m.Called(ctx, scope, clientKey)

	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

type MockReconciliationRepository struct {
	mock.Mock
}

func NewMockReconciliationRepository(t testingT) *MockReconciliationRepository {
	m := &MockReconciliationRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockReconciliationRepository) Record(ctx context.Context, record *models.ReconciliationRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockReconciliationRepository) List(ctx context.Context, limit int64) ([]*models.ReconciliationRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]*models.ReconciliationRecord)

	return records, args.Error(1)
}
