package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/money"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, sessionID string, req *models.CheckoutRequest, idempotencyKey string) (*models.CheckoutSessionResponse, error)
}

type checkoutService struct {
	carts    repository.CartRepository
	pending  repository.PendingOrderRepository
	stripe   stripeClient.Client
	currency string
	checkout *config.Checkout
}

func NewCheckoutService(carts repository.CartRepository, pending repository.PendingOrderRepository, stripe stripeClient.Client, stripeCfg *config.Stripe, checkoutCfg *config.Checkout) CheckoutService {
	return &checkoutService{
		carts:    carts,
		pending:  pending,
		stripe:   stripe,
		currency: stripeCfg.Currency,
		checkout: checkoutCfg,
	}
}

// CreateSession opens an embedded checkout session and stores the pending
// order snapshot the return page needs. Every call creates a new provider
// session unless the caller supplies an idempotency key.
func (s *checkoutService) CreateSession(ctx context.Context, sessionID string, req *models.CheckoutRequest, idempotencyKey string) (*models.CheckoutSessionResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	if !req.Amount.IsPositive() {
		return nil, appErrors.AddValidationError("amount", "must be greater than zero")
	}

	if req.Customer == nil {
		return nil, appErrors.AddValidationError("customer", "is required")
	}

	if req.Type == models.PurchaseTypeSubscription && (req.Plan == "" || req.Period == "") {
		return nil, appErrors.ValidationError("Subscriptions require a plan and a billing period")
	}

	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	amount := money.Round(req.Amount)

	if req.Type == models.PurchaseTypePayment {
		if cart.IsEmpty() {
			return nil, appErrors.BadRequestError("Cart is empty")
		}

		if !money.Equal(amount, cart.Subtotal()) {
			logger.Warn("Checkout amount does not match cart",
				slog.String("amount", amount.String()),
				slog.String("subtotal", money.Round(cart.Subtotal()).String()))

			return nil, appErrors.BadRequestError("Amount does not match the cart subtotal")
		}
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, &stripeClient.SessionRequest{
		Amount:         amount,
		Currency:       s.currency,
		Customer:       *req.Customer,
		Type:           req.Type,
		Plan:           req.Plan,
		Period:         req.Period,
		ReturnURL:      s.checkout.ReturnURL(),
		ClientRef:      sessionID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		logger.Error("Failed to create checkout session", slog.Any("error", err))
		return nil, appErrors.UpstreamUnavailableError("Payment provider is unavailable").WithError(err)
	}

	pending := &models.PendingOrder{
		SessionID:         sessionID,
		ProviderSessionID: session.ID,
		Customer:          *req.Customer,
		Items:             cart.Snapshot(),
		Pricing: models.Pricing{
			Subtotal: amount,
			Total:    amount,
		},
		Type:      req.Type,
		Plan:      req.Plan,
		Period:    req.Period,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.pending.SavePendingOrder(ctx, pending); err != nil {
		logger.Error("Failed to save pending order",
			slog.String("stripeSessionID", session.ID),
			slog.Any("error", err))

		return nil, appErrors.DatabaseError("Failed to save checkout details").WithError(err)
	}

	metrics.RecordCheckoutSession(string(req.Type))

	logger.Info("Checkout session created",
		slog.String("stripeSessionID", session.ID),
		slog.String("type", string(req.Type)),
		slog.String("amount", amount.String()))

	return &models.CheckoutSessionResponse{
		ClientSecret: session.ClientSecret,
		SessionID:    session.ID,
	}, nil
}
