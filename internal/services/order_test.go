package service_test

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var orderIDPattern = regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)

func orderRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		SessionID: "guest-1",
		Customer:  *testCustomer(),
		Items:     twoRedShirts().Snapshot(),
		Pricing:   models.Pricing{Subtotal: d("50.00"), Total: d("50.00")},
		Notes:     `<script>alert(1)</script>Ring the <b>bell</b>`,
		Payment: models.PaymentConfirmation{
			Method: "stripe", TransactionID: "pi_1", StripeSessionID: "cs_1", Amount: d("50.00"),
		},
	}
}

func TestCreateOrder(t *testing.T) {
	t.Run("Success - Confirmed order with sanitized notes", func(t *testing.T) {
		// Arrange
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(t.Context(), orderRequest())

		// Assert
		require.NoError(t, err)
		assert.Regexp(t, orderIDPattern, order.ID)
		assert.Equal(t, models.OrderStatusConfirmed, order.Status)
		assert.Equal(t, "Ring the bell", order.Notes)
		assert.Equal(t, "cs_1", order.Payment.StripeSessionID)
		assert.Equal(t, "guest-1", order.SessionID)
		assert.Equal(t, models.PurchaseTypePayment, order.Type)
		assert.True(t, d("50.00").Equal(order.Pricing.Total))
	})

	t.Run("Success - Subscription without cart items", func(t *testing.T) {
		// Arrange
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)
		req := orderRequest()
		req.Items = nil
		req.Type = models.PurchaseTypeSubscription
		req.Plan = "Weekly Box"
		req.Period = "week"
		req.Pricing = models.Pricing{Subtotal: d("19.00"), Total: d("19.00")}

		repo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
			return o.IsSubscription() && o.Plan == "Weekly Box" && o.Period == "week" && len(o.Items) == 0
		})).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(t.Context(), req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseTypeSubscription, order.Type)
		assert.True(t, d("19.00").Equal(order.Pricing.Total))
	})

	t.Run("Failure - Subscription without plan", func(t *testing.T) {
		orderService := service.NewOrderService(mocks.NewMockOrderRepository(t))
		req := orderRequest()
		req.Items = nil
		req.Type = models.PurchaseTypeSubscription

		_, err := orderService.CreateOrder(t.Context(), req)

		requireAppError(t, err, appErrors.ErrCodeBadRequest)
	})

	t.Run("Success - Derives missing pricing from items", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)
		req := orderRequest()
		req.Pricing = models.Pricing{Shipping: d("4.99")}

		repo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()

		order, err := orderService.CreateOrder(t.Context(), req)

		require.NoError(t, err)
		assert.True(t, d("50.00").Equal(order.Pricing.Subtotal))
		assert.True(t, d("54.99").Equal(order.Pricing.Total))
	})

	t.Run("Failure - No items", func(t *testing.T) {
		orderService := service.NewOrderService(mocks.NewMockOrderRepository(t))
		req := orderRequest()
		req.Items = nil

		_, err := orderService.CreateOrder(t.Context(), req)

		requireAppError(t, err, appErrors.ErrCodeBadRequest)
	})

	t.Run("Failure - Duplicate payment session", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("CreateOrder", mock.Anything, mock.Anything).Return(repository.ErrDuplicateOrder).Once()

		_, err := orderService.CreateOrder(t.Context(), orderRequest())

		requireAppError(t, err, appErrors.ErrCodeConflict)
		assert.ErrorIs(t, err, repository.ErrDuplicateOrder)
	})

	t.Run("Failure - Database error", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("CreateOrder", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := orderService.CreateOrder(t.Context(), orderRequest())

		requireAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)
		expected := &models.Order{ID: "ORD-1", SessionID: "guest-1"}

		repo.On("GetOrderByID", mock.Anything, "ORD-1").Return(expected, nil).Once()

		order, err := orderService.GetOrder(t.Context(), "guest-1", "ORD-1")

		require.NoError(t, err)
		assert.Equal(t, expected, order)
	})

	t.Run("Failure - Order owned by another session", func(t *testing.T) {
		// Arrange
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("GetOrderByID", mock.Anything, "ORD-1").
			Return(&models.Order{ID: "ORD-1", SessionID: "guest-1"}, nil).Once()

		// Act
		order, err := orderService.GetOrder(t.Context(), "guest-2", "ORD-1")

		// Assert
		assert.Nil(t, order)
		requireAppError(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Failure - Order without owner", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("GetOrderByID", mock.Anything, "ORD-1").Return(&models.Order{ID: "ORD-1"}, nil).Once()

		_, err := orderService.GetOrder(t.Context(), "", "ORD-1")

		requireAppError(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Failure - Not found", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("GetOrderByID", mock.Anything, "ORD-X").Return(nil, fmt.Errorf("failed to get order: %w", sql.ErrNoRows)).Once()

		_, err := orderService.GetOrder(t.Context(), "guest-1", "ORD-X")

		requireAppError(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestGetOrderByStripeSession(t *testing.T) {
	t.Run("Absent order is not an error", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("GetOrderByStripeSession", mock.Anything, "cs_1").Return(nil, fmt.Errorf("wrapped: %w", sql.ErrNoRows)).Once()

		order, err := orderService.GetOrderByStripeSession(t.Context(), "cs_1")

		assert.NoError(t, err)
		assert.Nil(t, order)
	})

	t.Run("Database error", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		orderService := service.NewOrderService(repo)

		repo.On("GetOrderByStripeSession", mock.Anything, "cs_1").Return(nil, errors.New("timeout")).Once()

		_, err := orderService.GetOrderByStripeSession(t.Context(), "cs_1")

		requireAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}
