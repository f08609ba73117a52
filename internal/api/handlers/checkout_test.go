package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const checkoutBody = `{
	"amount": "50.00",
	"type": "payment",
	"customer": {
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"shipping": {"line1": "1 Analytical Way", "city": "London", "postal_code": "N1", "country": "GB"}
	}
}`

func newCheckoutHandler(t *testing.T) (*handlers.CheckoutHandler, *mocks.MockCheckoutService, *mocks.MockFinalizationService) {
	checkoutService := mocks.NewMockCheckoutService(t)
	finalizationService := mocks.NewMockFinalizationService(t)

	return handlers.NewCheckoutHandler(checkoutService, finalizationService), checkoutService, finalizationService
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Run("Success - Session created", func(t *testing.T) {
		// Arrange
		checkoutHandler, checkoutService, _ := newCheckoutHandler(t)

		matchesRequest := mock.MatchedBy(func(req *models.CheckoutRequest) bool {
			return req.Amount.Equal(decimal.RequireFromString("50")) && req.Customer.Email == "ada@example.com"
		})
		checkoutService.On("CreateSession", mock.Anything, sessionID, matchesRequest, "idem-1").
			Return(&models.CheckoutSessionResponse{ClientSecret: "cs_secret", SessionID: "cs_1"}, nil).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodPost, "/api/v1/checkout/sessions", bytes.NewReader([]byte(checkoutBody)), sessionID, nil)
		req.Header.Set(handlers.IdempotencyKeyHeader, "idem-1")
		rr := httptest.NewRecorder()

		// Act
		checkoutHandler.CreateSession().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var body models.CheckoutSessionResponse
		decodeData(t, decodeResponse(t, rr), &body)
		assert.Equal(t, "cs_secret", body.ClientSecret)
	})

	t.Run("Failure - Missing customer", func(t *testing.T) {
		// Arrange
		checkoutHandler, checkoutService, _ := newCheckoutHandler(t)

		req := testutils.CreateTestRequestWithSession(http.MethodPost, "/api/v1/checkout/sessions", bytes.NewReader([]byte(`{"amount": "10", "type": "payment"}`)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		checkoutHandler.CreateSession().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		checkoutService.AssertNotCalled(t, "CreateSession")
	})

	t.Run("Failure - Provider unavailable", func(t *testing.T) {
		// Arrange
		checkoutHandler, checkoutService, _ := newCheckoutHandler(t)

		checkoutService.On("CreateSession", mock.Anything, sessionID, mock.AnythingOfType("*models.CheckoutRequest"), "").
			Return(nil, appErrors.UpstreamUnavailableError("Payment provider is unavailable")).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodPost, "/api/v1/checkout/sessions", bytes.NewReader([]byte(checkoutBody)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		checkoutHandler.CreateSession().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), appErrors.ErrCodeUpstreamUnavailable)
	})
}

func TestCheckoutReturn(t *testing.T) {
	t.Run("Success - Order confirmed", func(t *testing.T) {
		// Arrange
		checkoutHandler, _, finalizationService := newCheckoutHandler(t)

		finalizationService.On("Finalize", mock.Anything, sessionID, "cs_1").Return(&models.FinalizationResult{
			State:        models.StateCompleted,
			OrderID:      "ORD-1",
			CustomerName: "Ada Lovelace",
			Email:        "ada@example.com",
			Total:        "$50.00",
		}, nil).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodGet, "/api/v1/checkout/return?session_id=cs_1", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		checkoutHandler.Return().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var result models.FinalizationResult
		decodeData(t, decodeResponse(t, rr), &result)
		assert.Equal(t, models.StateCompleted, result.State)
		assert.Equal(t, "ORD-1", result.OrderID)
		assert.Equal(t, "$50.00", result.Total)
	})

	t.Run("Failure - Missing session_id", func(t *testing.T) {
		// Arrange
		checkoutHandler, _, finalizationService := newCheckoutHandler(t)

		req := testutils.CreateTestRequestWithSession(http.MethodGet, "/api/v1/checkout/return", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		checkoutHandler.Return().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		finalizationService.AssertNotCalled(t, "Finalize")
	})

	t.Run("Failure - Unpaid session carries the failed state", func(t *testing.T) {
		// Arrange
		checkoutHandler, _, finalizationService := newCheckoutHandler(t)

		finalizationService.On("Finalize", mock.Anything, sessionID, "cs_1").Return(
			&models.FinalizationResult{State: models.StateFailed, Message: "Payment was not completed"},
			appErrors.PaymentNotCompletedError("Payment was not completed"),
		).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodGet, "/api/v1/checkout/return?session_id=cs_1", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		checkoutHandler.Return().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusPaymentRequired, rr.Code)

		resp := decodeResponse(t, rr)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, appErrors.ErrCodePaymentNotCompleted, resp.Error.Code)

		var result models.FinalizationResult
		decodeData(t, resp, &result)
		assert.Equal(t, models.StateFailed, result.State)
	})

	t.Run("Failure - Finalization already running", func(t *testing.T) {
		// Arrange
		checkoutHandler, _, finalizationService := newCheckoutHandler(t)

		finalizationService.On("Finalize", mock.Anything, sessionID, "cs_1").
			Return(nil, appErrors.ConflictError("Checkout is already being finalized")).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodGet, "/api/v1/checkout/return?session_id=cs_1", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		checkoutHandler.Return().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Nil(t, decodeResponse(t, rr).Data)
	})
}
