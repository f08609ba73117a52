package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/money"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, sessionID, id string) (*models.Order, error)
	GetOrderByStripeSession(ctx context.Context, stripeSessionID string) (*models.Order, error)
}

type orderService struct {
	repo      repository.OrderRepository
	sanitizer *bluemonday.Policy
	newID     func() string
}

func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderService{
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
		newID:     newOrderID,
	}
}

// newOrderID returns a short human-readable id such as "ORD-1A2B3C4D".
func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
}

func (s *orderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	logger := middleware.LoggerFromContext(ctx)

	purchaseType := req.Type
	if purchaseType == "" {
		purchaseType = models.PurchaseTypePayment
	}

	if len(req.Items) == 0 && purchaseType != models.PurchaseTypeSubscription {
		return nil, appErrors.BadRequestError("Cannot create order without items")
	}

	if purchaseType == models.PurchaseTypeSubscription && req.Plan == "" {
		return nil, appErrors.BadRequestError("Subscription orders require a plan")
	}

	pricing := req.Pricing
	if pricing.Subtotal.IsZero() {
		subtotal := models.Cart{Items: req.Items}
		pricing.Subtotal = subtotal.Subtotal()
	}

	if pricing.Total.IsZero() {
		pricing.Total = money.Sum(pricing.Subtotal, pricing.Shipping)
	}

	pricing.Subtotal = money.Round(pricing.Subtotal)
	pricing.Total = money.Round(pricing.Total)

	now := time.Now().UTC()

	order := &models.Order{
		ID:        s.newID(),
		SessionID: req.SessionID,
		Type:      purchaseType,
		Plan:      req.Plan,
		Period:    req.Period,
		Customer:  req.Customer,
		Items:     req.Items,
		Pricing:   pricing,
		Notes:     strings.TrimSpace(s.sanitizer.Sanitize(req.Notes)),
		Payment:   req.Payment,
		Status:    models.OrderStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			return nil, appErrors.ConflictError("Order already exists for this payment").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	logger.Info("Order created",
		slog.String("orderID", order.ID),
		slog.String("stripeSessionID", order.Payment.StripeSessionID),
		slog.String("type", string(order.Type)),
		slog.String("total", order.Pricing.Total.String()))

	return order, nil
}

// GetOrder only returns orders owned by sessionID. Orders belonging to other
// sessions are reported as not found.
func (s *orderService) GetOrder(ctx context.Context, sessionID, id string) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.SessionID == "" || order.SessionID != sessionID {
		middleware.LoggerFromContext(ctx).Warn("Order requested by another session",
			slog.String("orderID", id))

		return nil, appErrors.NotFoundError("Order not found")
	}

	return order, nil
}

// GetOrderByStripeSession returns nil without an error when no order has been
// written for the checkout session yet.
func (s *orderService) GetOrderByStripeSession(ctx context.Context, stripeSessionID string) (*models.Order, error) {
	order, err := s.repo.GetOrderByStripeSession(ctx, stripeSessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}
