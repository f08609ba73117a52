package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(t testingT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

type MockProductService struct {
	mock.Mock
}

func NewMockProductService(t testingT) *MockProductService {
	m := &MockProductService{}
	register(t, &m.Mock)

	return m
}

func (m *MockProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)

	return product, args.Error(1)
}

func (m *MockProductService) RefreshProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)

	return product, args.Error(1)
}

func (m *MockProductService) GetProductView(ctx context.Context, id string) (*models.ProductView, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*models.ProductView)

	return view, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, category string, page, size int) (*models.ProductListResponse, error) {
	args := m.Called(ctx, category, page, size)
	list, _ := args.Get(0).(*models.ProductListResponse)

	return list, args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func NewMockCartService(t testingT) *MockCartService {
	m := &MockCartService{}
	register(t, &m.Mock)

	return m
}

func (m *MockCartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	args := m.Called(ctx, sessionID)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, sessionID, req)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	args := m.Called(ctx, sessionID, req)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, sessionID, req)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartService) ClearCart(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockCartService) Subtotal(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, sessionID)

	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockCheckoutService struct {
	mock.Mock
}

func NewMockCheckoutService(t testingT) *MockCheckoutService {
	m := &MockCheckoutService{}
	register(t, &m.Mock)

	return m
}

func (m *MockCheckoutService) CreateSession(ctx context.Context, sessionID string, req *models.CheckoutRequest, idempotencyKey string) (*models.CheckoutSessionResponse, error) {
	args := m.Called(ctx, sessionID, req, idempotencyKey)
	resp, _ := args.Get(0).(*models.CheckoutSessionResponse)

	return resp, args.Error(1)
}

type MockFinalizationService struct {
	mock.Mock
}

func NewMockFinalizationService(t testingT) *MockFinalizationService {
	m := &MockFinalizationService{}
	register(t, &m.Mock)

	return m
}

func (m *MockFinalizationService) Finalize(ctx context.Context, sessionID, providerSessionID string) (*models.FinalizationResult, error) {
	args := m.Called(ctx, sessionID, providerSessionID)
	result, _ := args.Get(0).(*models.FinalizationResult)

	return result, args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func NewMockOrderService(t testingT) *MockOrderService {
	m := &MockOrderService{}
	register(t, &m.Mock)

	return m
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, sessionID, id string) (*models.Order, error) {
	args := m.Called(ctx, sessionID, id)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *MockOrderService) GetOrderByStripeSession(ctx context.Context, stripeSessionID string) (*models.Order, error) {
	args := m.Called(ctx, stripeSessionID)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func NewMockNotificationService(t testingT) *MockNotificationService {
	m := &MockNotificationService{}
	register(t, &m.Mock)

	return m
}

func (m *MockNotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) (*models.Notification, error) {
	args := m.Called(ctx, order)
	notification, _ := args.Get(0).(*models.Notification)

	return notification, args.Error(1)
}

func (m *MockNotificationService) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	notification, _ := args.Get(0).(*models.Notification)

	return notification, args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func NewMockChatService(t testingT) *MockChatService {
	m := &MockChatService{}
	register(t, &m.Mock)

	return m
}

func (m *MockChatService) Reply(ctx context.Context, clientKey string, req *models.ChatRequest) (*models.ChatResponse, error) {
	args := m.Called(ctx, clientKey, req)
	resp, _ := args.Get(0).(*models.ChatResponse)

	return resp, args.Error(1)
}

type MockTryOnService struct {
	mock.Mock
}

func NewMockTryOnService(t testingT) *MockTryOnService {
	m := &MockTryOnService{}
	register(t, &m.Mock)

	return m
}

func (m *MockTryOnService) Generate(ctx context.Context, clientKey string, req *models.TryOnRequest) (*models.TryOnResponse, error) {
	args := m.Called(ctx, clientKey, req)
	resp, _ := args.Get(0).(*models.TryOnResponse)

	return resp, args.Error(1)
}
