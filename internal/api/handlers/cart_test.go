package handlers_test

import (
	"bytes"
	"encoding/json"
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

func cartWithShirt() *models.Cart {
	cart := models.NewCart(sessionID)
	cart.Merge(models.CartLineItem{
		ProductID:   "p1",
		VariantKey:  "Red, M",
		DisplayName: "Linen Shirt (Red, M)",
		UnitPrice:   decimal.RequireFromString("25.00"),
		Quantity:    2,
	})

	return cart
}

func TestGetCart(t *testing.T) {
	t.Run("Success - Cart with subtotal", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		mockCartService.On("GetCart", mock.Anything, sessionID).Return(cartWithShirt(), nil).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodGet, "/api/v1/cart", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.GetCart().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		resp := decodeResponse(t, rr)
		assert.True(t, resp.Success)

		var body models.CartResponse
		decodeData(t, resp, &body)
		assert.Equal(t, "$50.00", body.Subtotal)
		require.Len(t, body.Cart.Items, 1)
		assert.Equal(t, 2, body.Cart.Items[0].Quantity)
	})

	t.Run("Failure - No session", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/cart", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.GetCart().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockCartService.AssertNotCalled(t, "GetCart")
	})

	t.Run("Failure - Storage error", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		mockCartService.On("GetCart", mock.Anything, sessionID).Return(nil, appErrors.DatabaseError("Failed to load cart")).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodGet, "/api/v1/cart", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.GetCart().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), appErrors.ErrCodeDatabaseError)
	})
}

func TestAddItem(t *testing.T) {
	t.Run("Success - Item added", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		addReq := models.AddItemRequest{ProductID: "p1", Size: "M", Color: "Red", Quantity: 2}
		mockCartService.On("AddItem", mock.Anything, sessionID, &addReq).Return(cartWithShirt(), nil).Once()

		bodyBytes, _ := json.Marshal(addReq)
		req := testutils.CreateTestRequestWithSession(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(bodyBytes), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.AddItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var body models.CartResponse
		decodeData(t, decodeResponse(t, rr), &body)
		assert.Equal(t, "$50.00", body.Subtotal)
	})

	t.Run("Failure - Missing product", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		req := testutils.CreateTestRequestWithSession(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte(`{"quantity": 1}`)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.AddItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), appErrors.ErrCodeValidation)
		mockCartService.AssertNotCalled(t, "AddItem")
	})

	t.Run("Failure - Insufficient stock", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		mockCartService.On("AddItem", mock.Anything, sessionID, mock.AnythingOfType("*models.AddItemRequest")).
			Return(nil, appErrors.InsufficientStockError("Only 1 left in stock")).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte(`{"product_id": "p1", "quantity": 5}`)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.AddItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Only 1 left in stock")
	})
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("Success - Quantity changed", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		updateReq := models.UpdateQuantityRequest{ProductID: "p1", VariantKey: "Red, M", Quantity: 2}
		mockCartService.On("UpdateQuantity", mock.Anything, sessionID, &updateReq).Return(cartWithShirt(), nil).Once()

		bodyBytes, _ := json.Marshal(updateReq)
		req := testutils.CreateTestRequestWithSession(http.MethodPut, "/api/v1/cart/items", bytes.NewReader(bodyBytes), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.UpdateQuantity().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Line not in cart", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		mockCartService.On("UpdateQuantity", mock.Anything, sessionID, mock.AnythingOfType("*models.UpdateQuantityRequest")).
			Return(nil, appErrors.NotFoundError("Item not in cart")).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodPut, "/api/v1/cart/items", bytes.NewReader([]byte(`{"product_id": "p9", "quantity": 1}`)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.UpdateQuantity().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRemoveItemAndClearCart(t *testing.T) {
	t.Run("Success - Item removed", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		removeReq := models.RemoveItemRequest{ProductID: "p1", VariantKey: "Red, M"}
		mockCartService.On("RemoveItem", mock.Anything, sessionID, &removeReq).Return(models.NewCart(sessionID), nil).Once()

		bodyBytes, _ := json.Marshal(removeReq)
		req := testutils.CreateTestRequestWithSession(http.MethodDelete, "/api/v1/cart/items", bytes.NewReader(bodyBytes), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.RemoveItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var body models.CartResponse
		decodeData(t, decodeResponse(t, rr), &body)
		assert.Equal(t, "$0.00", body.Subtotal)
	})

	t.Run("Success - Cart cleared", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		mockCartService.On("ClearCart", mock.Anything, sessionID).Return(nil).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodDelete, "/api/v1/cart", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.ClearCart().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var body models.CartResponse
		decodeData(t, decodeResponse(t, rr), &body)
		assert.Empty(t, body.Cart.Items)
	})

	t.Run("Failure - Clear during concurrent update", func(t *testing.T) {
		// Arrange
		mockCartService := mocks.NewMockCartService(t)
		cartHandler := handlers.NewCartHandler(mockCartService)

		mockCartService.On("ClearCart", mock.Anything, sessionID).Return(appErrors.ConflictError("Cart is being updated")).Once()

		req := testutils.CreateTestRequestWithSession(http.MethodDelete, "/api/v1/cart", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.ClearCart().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
