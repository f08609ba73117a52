package stripe

import (
	"context"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/balance"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

type CheckoutSession = stripe.CheckoutSession

// SessionRequest describes one embedded checkout for a cart total.
type SessionRequest struct {
	Amount         decimal.Decimal
	Currency       string
	Customer       models.Customer
	Type           models.PurchaseType
	Plan           string
	Period         string
	ReturnURL      string
	ClientRef      string
	IdempotencyKey string
}

// Client is the subset of the payment provider the checkout flow needs.
type Client interface {
	CreateCheckoutSession(ctx context.Context, req *SessionRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	Ping(ctx context.Context) error
}

type stripeClient struct {
	sessions session.Client
	balances balance.Client
}

func NewStripeClient(apiKey string) Client {
	stripe.Key = apiKey

	return NewStripeClientWithBackend(apiKey, stripe.GetBackend(stripe.APIBackend))
}

// NewStripeClientWithBackend lets callers point the client at another API
// host, such as a local test server.
func NewStripeClientWithBackend(apiKey string, backend stripe.Backend) Client {
	return &stripeClient{
		sessions: session.Client{B: backend, Key: apiKey},
		balances: balance.Client{B: backend, Key: apiKey},
	}
}

func (s *stripeClient) CreateCheckoutSession(ctx context.Context, req *SessionRequest) (*CheckoutSession, error) {
	params := BuildSessionParams(req)
	params.Context = ctx

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	cs, err := s.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return cs, nil
}

// GetCheckoutSession fetches a session with its payment intent and
// subscription expanded, which is all verification needs.
func (s *stripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	params.AddExpand("subscription")

	cs, err := s.sessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}

	return cs, nil
}

func (s *stripeClient) Ping(ctx context.Context) error {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	if _, err := s.balances.Get(params); err != nil {
		return fmt.Errorf("failed to connect to stripe: %w", err)
	}

	return nil
}

// BuildSessionParams maps a cart checkout to an embedded Checkout Session with
// a single line item for the whole amount. The amount is rounded, not
// truncated, into minor units.
func BuildSessionParams(req *SessionRequest) *stripe.CheckoutSessionParams {
	name := "Order"
	if req.Plan != "" {
		name = req.Plan
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(req.Currency),
		UnitAmount: stripe.Int64(money.ToMinorUnits(req.Amount)),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(name),
		},
	}

	mode := stripe.CheckoutSessionModePayment
	if req.Type == models.PurchaseTypeSubscription {
		mode = stripe.CheckoutSessionModeSubscription
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(req.Period),
		}
	}

	shipping := req.Customer.Shipping

	params := &stripe.CheckoutSessionParams{
		UIMode:            stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:              stripe.String(string(mode)),
		ReturnURL:         stripe.String(req.ReturnURL),
		CustomerEmail:     stripe.String(req.Customer.Email),
		ClientReferenceID: stripe.String(req.ClientRef),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{PriceData: priceData, Quantity: stripe.Int64(1)},
		},
		Metadata: map[string]string{
			"customer_name":        req.Customer.FullName(),
			"customer_email":       req.Customer.Email,
			"customer_phone":       req.Customer.Phone,
			"shipping_line1":       shipping.Line1,
			"shipping_line2":       shipping.Line2,
			"shipping_city":        shipping.City,
			"shipping_state":       shipping.State,
			"shipping_postal_code": shipping.PostalCode,
			"shipping_country":     shipping.Country,
			"purchase_type":        string(req.Type),
		},
	}

	return params
}

// TransactionID is the provider reference recorded on the order: the payment
// intent for one-time purchases, the subscription otherwise.
func TransactionID(cs *CheckoutSession) string {
	if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
		return cs.PaymentIntent.ID
	}

	if cs.Subscription != nil {
		return cs.Subscription.ID
	}

	return ""
}

func IsPaid(cs *CheckoutSession) bool {
	return cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
}
