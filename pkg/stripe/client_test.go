package stripe_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

func sessionRequest(amount string, purchase models.PurchaseType) *stripeClient.SessionRequest {
	return &stripeClient.SessionRequest{
		Amount:   decimal.RequireFromString(amount),
		Currency: "usd",
		Customer: models.Customer{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Shipping:  models.Address{Line1: "1 Analytical Way", City: "London", PostalCode: "N1", Country: "GB"},
		},
		Type:      purchase,
		ReturnURL: "https://shop.example.com/checkout/return?session_id={CHECKOUT_SESSION_ID}",
		ClientRef: "sess-1",
	}
}

func TestBuildSessionParams(t *testing.T) {
	t.Run("One-time payment", func(t *testing.T) {
		// Act
		params := stripeClient.BuildSessionParams(sessionRequest("50.00", models.PurchaseTypePayment))

		// Assert
		assert.Equal(t, string(stripe.CheckoutSessionModePayment), *params.Mode)
		assert.Equal(t, string(stripe.CheckoutSessionUIModeEmbedded), *params.UIMode)
		assert.Equal(t, "ada@example.com", *params.CustomerEmail)
		assert.Equal(t, "sess-1", *params.ClientReferenceID)
		require.Len(t, params.LineItems, 1)
		assert.Equal(t, int64(5000), *params.LineItems[0].PriceData.UnitAmount)
		assert.Equal(t, "Order", *params.LineItems[0].PriceData.ProductData.Name)
		assert.Nil(t, params.LineItems[0].PriceData.Recurring)
		assert.Equal(t, "Ada Lovelace", params.Metadata["customer_name"])
		assert.Equal(t, "GB", params.Metadata["shipping_country"])
	})

	t.Run("Amount rounds to the nearest cent", func(t *testing.T) {
		tests := map[string]int64{
			"19.995": 2000,
			"19.994": 1999,
			"0.005":  1,
			"10":     1000,
		}

		for amount, want := range tests {
			params := stripeClient.BuildSessionParams(sessionRequest(amount, models.PurchaseTypePayment))
			assert.Equal(t, want, *params.LineItems[0].PriceData.UnitAmount, "amount %s", amount)
		}
	})

	t.Run("Subscription", func(t *testing.T) {
		// Arrange
		req := sessionRequest("9.99", models.PurchaseTypeSubscription)
		req.Plan = "Monthly Box"
		req.Period = "month"

		// Act
		params := stripeClient.BuildSessionParams(req)

		// Assert
		assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *params.Mode)
		require.NotNil(t, params.LineItems[0].PriceData.Recurring)
		assert.Equal(t, "month", *params.LineItems[0].PriceData.Recurring.Interval)
		assert.Equal(t, "Monthly Box", *params.LineItems[0].PriceData.ProductData.Name)
		assert.Equal(t, int64(999), *params.LineItems[0].PriceData.UnitAmount)
	})
}

func TestTransactionIDAndIsPaid(t *testing.T) {
	paid := &stripe.CheckoutSession{
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_123"},
	}
	subscription := &stripe.CheckoutSession{
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Subscription:  &stripe.Subscription{ID: "sub_9"},
	}
	unpaid := &stripe.CheckoutSession{PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid}

	assert.Equal(t, "pi_123", stripeClient.TransactionID(paid))
	assert.Equal(t, "sub_9", stripeClient.TransactionID(subscription))
	assert.Empty(t, stripeClient.TransactionID(unpaid))

	assert.True(t, stripeClient.IsPaid(paid))
	assert.False(t, stripeClient.IsPaid(unpaid))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) stripeClient.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return stripeClient.NewStripeClientWithBackend("sk_test_123", backend)
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		var form url.Values
		var idempotencyKey string

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			idempotencyKey = r.Header.Get("Idempotency-Key")
			assert.NoError(t, r.ParseForm())
			form = r.PostForm

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","client_secret":"cs_test_1_secret","payment_status":"unpaid"}`))
		})

		req := sessionRequest("50.00", models.PurchaseTypePayment)
		req.IdempotencyKey = "idem-1"

		// Act
		cs, err := client.CreateCheckoutSession(t.Context(), req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", cs.ID)
		assert.Equal(t, "cs_test_1_secret", cs.ClientSecret)
		assert.Equal(t, "idem-1", idempotencyKey)
		assert.Equal(t, "embedded", form.Get("ui_mode"))
		assert.Equal(t, "payment", form.Get("mode"))
		assert.Equal(t, "5000", form.Get("line_items[0][price_data][unit_amount]"))
	})

	t.Run("Provider error", func(t *testing.T) {
		// Arrange
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid currency"}}`))
		})

		// Act
		cs, err := client.CreateCheckoutSession(t.Context(), sessionRequest("50.00", models.PurchaseTypePayment))

		// Assert
		require.Error(t, err)
		assert.Nil(t, cs)
		assert.Contains(t, err.Error(), "failed to create checkout session")
	})
}

func TestGetCheckoutSession(t *testing.T) {
	// Arrange
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		assert.Contains(t, r.URL.Query()["expand[]"], "payment_intent")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","payment_status":"paid","amount_total":5000,"payment_intent":{"id":"pi_123","object":"payment_intent"}}`))
	})

	// Act
	cs, err := client.GetCheckoutSession(t.Context(), "cs_test_1")

	// Assert
	require.NoError(t, err)
	assert.True(t, stripeClient.IsPaid(cs))
	assert.Equal(t, int64(5000), cs.AmountTotal)
	assert.Equal(t, "pi_123", stripeClient.TransactionID(cs))
}
