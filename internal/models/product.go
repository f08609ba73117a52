package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is either a flat amount or a [current, original] range. A zero Price
// carries neither and marks a catalog record without pricing.
type Price struct {
	Current  *decimal.Decimal
	Original *decimal.Decimal
}

func FlatPrice(amount decimal.Decimal) Price {
	return Price{Current: &amount}
}

func RangePrice(current, original decimal.Decimal) Price {
	return Price{Current: &current, Original: &original}
}

func (p Price) IsRange() bool {
	return p.Current != nil && p.Original != nil
}

func (p Price) IsZero() bool {
	return p.Current == nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	switch {
	case p.IsRange():
		return json.Marshal([]decimal.Decimal{*p.Current, *p.Original})
	case p.Current != nil:
		return json.Marshal(*p.Current)
	default:
		return []byte("null"), nil
	}
}

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}

	if string(data) == "null" {
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var pair []decimal.Decimal
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("invalid price range: %w", err)
		}

		if len(pair) != 2 {
			return fmt.Errorf("price range must have 2 elements, got %d", len(pair))
		}

		*p = RangePrice(pair[0], pair[1])

		return nil
	}

	var flat decimal.Decimal
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}

	*p = FlatPrice(flat)

	return nil
}

// Scan reads the JSONB price column.
func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Price{}
		return nil
	case []byte:
		return p.UnmarshalJSON(v)
	case string:
		return p.UnmarshalJSON([]byte(v))
	default:
		return errors.New("unsupported type for price column")
	}
}

func (p Price) Value() (driver.Value, error) {
	return p.MarshalJSON()
}

type Variant struct {
	Size  string          `json:"size,omitempty"`
	Color string          `json:"color,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// VariantSelection is the size/color picked by the shopper. An empty
// dimension means "not selected".
type VariantSelection struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

func (s VariantSelection) IsEmpty() bool {
	return s.Size == "" && s.Color == ""
}

type Product struct {
	ID       string    `json:"id"`
	Slug     string    `json:"slug"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    Price     `json:"price"`
	Variants []Variant `json:"variants,omitempty"`
	Stock    int       `json:"stock"`
	Pictures []string  `json:"pictures,omitempty"`
}

// ProductView is the catalog response shape; the resolved price and discount
// are computed once by the pricing package.
type ProductView struct {
	Product
	CurrentPrice    decimal.Decimal  `json:"current_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

type ProductListResponse struct {
	Products []ProductView `json:"products"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Size     int           `json:"size"`
}
