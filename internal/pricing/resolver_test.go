package pricing_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func shirt() *models.Product {
	return &models.Product{
		ID:    "p1",
		Name:  "Linen Shirt",
		Price: models.RangePrice(d("25.00"), d("40.00")),
		Variants: []models.Variant{
			{Size: "M", Color: "Red", Price: d("25.00")},
			{Size: "L", Color: "Red", Price: d("27.50")},
			{Size: "L", Color: "Blue", Price: d("29.00")},
		},
		Stock: 10,
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		product   *models.Product
		selection models.VariantSelection
		want      string
		ok        bool
	}{
		{"Exact variant match", shirt(), models.VariantSelection{Size: "L", Color: "Blue"}, "29.00", true},
		{"Color wildcard matches first size", shirt(), models.VariantSelection{Size: "L"}, "27.50", true},
		{"Size wildcard matches first color", shirt(), models.VariantSelection{Color: "blue"}, "29.00", true},
		{"No matching variant falls back to current", shirt(), models.VariantSelection{Size: "XS"}, "25.00", true},
		{"No selection uses current price", shirt(), models.VariantSelection{}, "25.00", true},
		{"Flat price", &models.Product{Price: models.FlatPrice(d("12.99"))}, models.VariantSelection{Size: "M"}, "12.99", true},
		{"Missing price", &models.Product{}, models.VariantSelection{}, "0", false},
		{"Nil product", nil, models.VariantSelection{}, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pricing.Resolve(tt.product, tt.selection)

			assert.Equal(t, tt.ok, ok)
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	product := shirt()
	selection := models.VariantSelection{Size: "L", Color: "Red"}

	first, _ := pricing.Resolve(product, selection)
	for range 50 {
		got, ok := pricing.Resolve(product, selection)
		require.True(t, ok)
		assert.True(t, first.Equal(got))
	}

	// product data is left untouched
	assert.True(t, d("25.00").Equal(*product.Price.Current))
	assert.Len(t, product.Variants, 3)
}

func TestVariantKeyAndDisplayName(t *testing.T) {
	product := shirt()

	assert.Equal(t, "Red, M", pricing.VariantKey(models.VariantSelection{Size: "M", Color: "Red"}))
	assert.Equal(t, "M", pricing.VariantKey(models.VariantSelection{Size: " M "}))
	assert.Equal(t, "", pricing.VariantKey(models.VariantSelection{}))

	assert.Equal(t, "Linen Shirt (Red, M)", pricing.DisplayName(product, models.VariantSelection{Size: "M", Color: "Red"}))
	assert.Equal(t, "Linen Shirt", pricing.DisplayName(product, models.VariantSelection{}))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name      string
		selection models.VariantSelection
		wantKey   string
	}{
		{"Case differs from the catalog", models.VariantSelection{Size: "m", Color: "red"}, "Red, M"},
		{"Padded input", models.VariantSelection{Size: " M ", Color: " RED "}, "Red, M"},
		{"Partial selection takes the matched variant", models.VariantSelection{Color: "blue"}, "Blue, L"},
		{"Unknown variant is only trimmed", models.VariantSelection{Size: " xs "}, "xs"},
		{"No selection", models.VariantSelection{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, pricing.VariantKey(pricing.Canonical(shirt(), tt.selection)))
		})
	}

	t.Run("Spellings share one display name", func(t *testing.T) {
		product := shirt()

		lower := pricing.DisplayName(product, pricing.Canonical(product, models.VariantSelection{Size: "m", Color: "red"}))
		upper := pricing.DisplayName(product, pricing.Canonical(product, models.VariantSelection{Size: "M", Color: "Red"}))

		assert.Equal(t, "Linen Shirt (Red, M)", lower)
		assert.Equal(t, upper, lower)
	})
}

func TestDiscountAndView(t *testing.T) {
	pct, ok := pricing.Discount(shirt())
	require.True(t, ok)
	assert.True(t, d("38").Equal(pct), "got %s", pct)

	_, ok = pricing.Discount(&models.Product{Price: models.FlatPrice(d("10"))})
	assert.False(t, ok)

	view := pricing.View(shirt())
	assert.True(t, d("25.00").Equal(view.CurrentPrice))
	require.NotNil(t, view.DiscountPercent)
}
