package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseType string

const (
	PurchaseTypePayment      PurchaseType = "payment"
	PurchaseTypeSubscription PurchaseType = "subscription"
)

type Address struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

type Customer struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     string  `json:"phone,omitempty"`
	Shipping  Address `json:"shipping" validate:"required"`
}

func (c Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}

	return c.FirstName + " " + c.LastName
}

type Pricing struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type CheckoutRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Customer *Customer       `json:"customer" validate:"required"`
	Type     PurchaseType    `json:"type" validate:"required,oneof=payment subscription"`
	Plan     string          `json:"plan,omitempty"`
	Period   string          `json:"period,omitempty" validate:"omitempty,oneof=day week month year"`
	Notes    string          `json:"notes,omitempty" validate:"max=1000"`
}

type CheckoutSessionResponse struct {
	ClientSecret string `json:"client_secret"`
	SessionID    string `json:"session_id"`
}

// PendingOrder bridges checkout initiation and payment confirmation. It is
// written before the shopper leaves for the payment UI and deleted once an
// order is durably created.
type PendingOrder struct {
	SessionID         string         `json:"session_id"`
	ProviderSessionID string         `json:"provider_session_id"`
	Customer          Customer       `json:"customer"`
	Items             []CartLineItem `json:"items"`
	Pricing           Pricing        `json:"pricing"`
	Type              PurchaseType   `json:"type"`
	Plan              string         `json:"plan,omitempty"`
	Period            string         `json:"period,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

type FinalizationState string

const (
	StateAwaitingRedirect FinalizationState = "awaiting_redirect"
	StateVerifyingPayment FinalizationState = "verifying_payment"
	StateCreatingOrder    FinalizationState = "creating_order"
	StateCompleted        FinalizationState = "completed"
	StateFailed           FinalizationState = "failed"
)

func (s FinalizationState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

type FinalizationResult struct {
	State        FinalizationState `json:"state"`
	OrderID      string            `json:"order_id,omitempty"`
	CustomerName string            `json:"customer_name,omitempty"`
	Email        string            `json:"email,omitempty"`
	Total        string            `json:"total,omitempty"`
	Message      string            `json:"message,omitempty"`
}

// ReconciliationRecord is left for operators when money moved but no order
// could be written.
type ReconciliationRecord struct {
	SessionID         string    `json:"session_id"`
	ProviderSessionID string    `json:"provider_session_id"`
	TransactionID     string    `json:"transaction_id"`
	AmountMinor       int64     `json:"amount_minor"`
	Reason            string    `json:"reason"`
	RecordedAt        time.Time `json:"recorded_at"`
}
