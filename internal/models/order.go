package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentConfirmation struct {
	Method          string          `json:"method" validate:"required"`
	TransactionID   string          `json:"transactionId" validate:"required"`
	StripeSessionID string          `json:"stripeSessionId" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
}

// Order is owned by the guest session that paid for it. SessionID is never
// serialized back to clients.
type Order struct {
	ID        string              `json:"order_id"`
	SessionID string              `json:"-"`
	Type      PurchaseType        `json:"type"`
	Plan      string              `json:"plan,omitempty"`
	Period    string              `json:"period,omitempty"`
	Customer  Customer            `json:"customer"`
	Items     []CartLineItem      `json:"items"`
	Pricing   Pricing             `json:"pricing"`
	Notes     string              `json:"notes,omitempty"`
	Payment   PaymentConfirmation `json:"payment"`
	Status    OrderStatus         `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (o *Order) IsSubscription() bool {
	return o.Type == PurchaseTypeSubscription
}

// CreateOrderRequest may omit items only for subscriptions, which are billed
// per plan rather than per cart line.
type CreateOrderRequest struct {
	SessionID string              `json:"session_id" validate:"required"`
	Type      PurchaseType        `json:"type,omitempty" validate:"omitempty,oneof=payment subscription"`
	Plan      string              `json:"plan,omitempty" validate:"required_if=Type subscription"`
	Period    string              `json:"period,omitempty" validate:"omitempty,oneof=day week month year"`
	Customer  Customer            `json:"customer" validate:"required"`
	Items     []CartLineItem      `json:"items" validate:"required_unless=Type subscription"`
	Pricing   Pricing             `json:"pricing"`
	Notes     string              `json:"notes,omitempty" validate:"max=1000"`
	Payment   PaymentConfirmation `json:"payment" validate:"required"`
}

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}
