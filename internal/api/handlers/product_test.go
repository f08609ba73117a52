package handlers_test

import (
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

func TestGetProduct(t *testing.T) {
	t.Run("Success - Product view", func(t *testing.T) {
		// Arrange
		mockProductService := mocks.NewMockProductService(t)
		productHandler := handlers.NewProductHandler(mockProductService)

		view := &models.ProductView{
			Product: models.Product{
				ID:    "p1",
				Name:  "Linen Shirt",
				Price: models.RangePrice(decimal.RequireFromString("25"), decimal.RequireFromString("40")),
				Stock: 3,
			},
			CurrentPrice: decimal.RequireFromString("25"),
		}
		mockProductService.On("GetProductView", mock.Anything, "p1").Return(view, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products/p1", nil, map[string]string{"id": "p1"})
		rr := httptest.NewRecorder()

		// Act
		productHandler.GetProduct().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var body models.ProductView
		decodeData(t, decodeResponse(t, rr), &body)
		assert.Equal(t, "Linen Shirt", body.Name)
		assert.True(t, body.CurrentPrice.Equal(decimal.RequireFromString("25")))
		assert.True(t, body.Price.IsRange())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockProductService := mocks.NewMockProductService(t)
		productHandler := handlers.NewProductHandler(mockProductService)

		mockProductService.On("GetProductView", mock.Anything, "nope").Return(nil, appErrors.NotFoundError("Product not found")).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products/nope", nil, map[string]string{"id": "nope"})
		rr := httptest.NewRecorder()

		// Act
		productHandler.GetProduct().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListProducts(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		wantCategory string
		wantPage     int
		wantSize     int
	}{
		{name: "Defaults", target: "/api/v1/products", wantPage: 1, wantSize: 20},
		{name: "Category and paging", target: "/api/v1/products?category=shirts&page=3&size=5", wantCategory: "shirts", wantPage: 3, wantSize: 5},
		{name: "Unparseable paging falls back", target: "/api/v1/products?page=x&size=y", wantPage: 1, wantSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockProductService := mocks.NewMockProductService(t)
			productHandler := handlers.NewProductHandler(mockProductService)

			mockProductService.On("ListProducts", mock.Anything, tt.wantCategory, tt.wantPage, tt.wantSize).
				Return(&models.ProductListResponse{Products: []models.ProductView{}, Total: 0, Page: tt.wantPage, Size: tt.wantSize}, nil).Once()

			req := testutils.CreateTestRequestWithoutContext(http.MethodGet, tt.target, nil, nil)
			rr := httptest.NewRecorder()

			// Act
			productHandler.ListProducts().ServeHTTP(rr, req)

			// Assert
			require.Equal(t, http.StatusOK, rr.Code)

			var body models.ProductListResponse
			decodeData(t, decodeResponse(t, rr), &body)
			assert.Equal(t, tt.wantPage, body.Page)
		})
	}
}
