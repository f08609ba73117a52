// Package pricing decides what a shopper is charged for a product and variant
// selection. Every price shown or charged anywhere goes through Resolve.
package pricing

import (
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Resolve returns the unit price for product under selection. ok is false when
// the record carries no usable price, which callers treat as a catalog
// integrity error.
func Resolve(product *models.Product, selection models.VariantSelection) (price decimal.Decimal, ok bool) {
	if product == nil {
		return decimal.Zero, false
	}

	if len(product.Variants) > 0 && !selection.IsEmpty() {
		if v, found := MatchVariant(product.Variants, selection); found {
			return v.Price, true
		}
	}

	if product.Price.Current != nil {
		return *product.Price.Current, true
	}

	return decimal.Zero, false
}

// MatchVariant returns the first variant matching both selected dimensions.
// An unselected dimension matches any value.
func MatchVariant(variants []models.Variant, selection models.VariantSelection) (models.Variant, bool) {
	for _, v := range variants {
		if matches(v.Size, selection.Size) && matches(v.Color, selection.Color) {
			return v, true
		}
	}

	return models.Variant{}, false
}

func matches(value, selected string) bool {
	return selected == "" || strings.EqualFold(value, selected)
}

// Canonical replaces the shopper's spelling of a selection with the matched
// variant's stored size and color, so "red"/"m" and "Red"/"M" land on the same
// cart line. Selections with no matching variant are only trimmed.
func Canonical(product *models.Product, selection models.VariantSelection) models.VariantSelection {
	selection = models.VariantSelection{
		Size:  strings.TrimSpace(selection.Size),
		Color: strings.TrimSpace(selection.Color),
	}

	if product == nil || selection.IsEmpty() {
		return selection
	}

	if v, found := MatchVariant(product.Variants, selection); found {
		return models.VariantSelection{Size: v.Size, Color: v.Color}
	}

	return selection
}

// VariantKey is the line-item key for a selection, e.g. "Red, M".
func VariantKey(selection models.VariantSelection) string {
	parts := make([]string, 0, 2)

	if c := strings.TrimSpace(selection.Color); c != "" {
		parts = append(parts, c)
	}

	if s := strings.TrimSpace(selection.Size); s != "" {
		parts = append(parts, s)
	}

	return strings.Join(parts, ", ")
}

func DisplayName(product *models.Product, selection models.VariantSelection) string {
	key := VariantKey(selection)
	if key == "" {
		return product.Name
	}

	return product.Name + " (" + key + ")"
}

// Discount is the percentage off the original price for range-priced products.
func Discount(product *models.Product) (decimal.Decimal, bool) {
	if !product.Price.IsRange() || !product.Price.Original.IsPositive() {
		return decimal.Zero, false
	}

	current, original := *product.Price.Current, *product.Price.Original
	if current.GreaterThanOrEqual(original) {
		return decimal.Zero, false
	}

	return original.Sub(current).Div(original).Mul(decimal.NewFromInt(100)).Round(0), true
}

// View attaches the resolved base price and discount to a catalog record.
func View(product *models.Product) models.ProductView {
	view := models.ProductView{Product: *product}

	if price, ok := Resolve(product, models.VariantSelection{}); ok {
		view.CurrentPrice = price
	}

	if pct, ok := Discount(product); ok {
		view.DiscountPercent = &pct
	}

	return view
}
