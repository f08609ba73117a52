package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartLineItem struct {
	ProductID   string          `json:"product_id"`
	VariantKey  string          `json:"variant_key"`
	DisplayName string          `json:"display_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func (i *CartLineItem) recompute() {
	i.LineTotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds at most one line item per (ProductID, VariantKey). Items keep
// insertion order for display; totals do not depend on it.
type Cart struct {
	SessionID string         `json:"session_id"`
	Items     []CartLineItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []CartLineItem{}}
}

func (c *Cart) index(productID, variantKey string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantKey == variantKey {
			return i
		}
	}

	return -1
}

func (c *Cart) Find(productID, variantKey string) (CartLineItem, bool) {
	if i := c.index(productID, variantKey); i >= 0 {
		return c.Items[i], true
	}

	return CartLineItem{}, false
}

// Merge adds item to the cart. A matching line keeps its stored unit price
// and only grows in quantity.
func (c *Cart) Merge(item CartLineItem) CartLineItem {
	if i := c.index(item.ProductID, item.VariantKey); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		c.Items[i].recompute()

		return c.Items[i]
	}

	item.recompute()
	c.Items = append(c.Items, item)

	return item
}

func (c *Cart) Remove(productID, variantKey string) bool {
	i := c.index(productID, variantKey)
	if i < 0 {
		return false
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)

	return true
}

func (c *Cart) SetQuantity(productID, variantKey string, quantity int) (CartLineItem, bool) {
	i := c.index(productID, variantKey)
	if i < 0 {
		return CartLineItem{}, false
	}

	c.Items[i].Quantity = quantity
	c.Items[i].recompute()

	return c.Items[i], true
}

func (c *Cart) Clear() {
	c.Items = []CartLineItem{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal is the exact sum of line totals. Round it only for display or
// charging.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal)
	}

	return total
}

// Snapshot copies the line items so later cart mutations do not leak into a
// pending order.
func (c *Cart) Snapshot() []CartLineItem {
	items := make([]CartLineItem, len(c.Items))
	copy(items, c.Items)

	return items
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	VariantKey string `json:"variant_key"`
	Quantity   int    `json:"quantity"`
}

type RemoveItemRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	VariantKey string `json:"variant_key"`
}

type CartResponse struct {
	Cart     *Cart  `json:"cart"`
	Subtotal string `json:"subtotal"`
}
