package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/money"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
)

const (
	msgPaymentFailed = "We could not confirm your payment. Please return to checkout and try again."
	msgOrderFailed   = "Your payment was received but we could not save your order. Please contact support; no further charge is needed."
)

// FinalizationService turns a paid checkout session into an order.
type FinalizationService interface {
	Finalize(ctx context.Context, sessionID, providerSessionID string) (*models.FinalizationResult, error)
}

type finalizationService struct {
	stripe    stripeClient.Client
	orders    OrderService
	notifier  NotificationService
	carts     repository.CartRepository
	pending   repository.PendingOrderRepository
	reconcile repository.ReconciliationRepository
	lock      *locker
}

func NewFinalizationService(
	stripe stripeClient.Client,
	orders OrderService,
	notifier NotificationService,
	carts repository.CartRepository,
	pending repository.PendingOrderRepository,
	reconcile repository.ReconciliationRepository,
	locks repository.LockRepository,
	lockTTL time.Duration,
) FinalizationService {
	return &finalizationService{
		stripe:    stripe,
		orders:    orders,
		notifier:  notifier,
		carts:     carts,
		pending:   pending,
		reconcile: reconcile,
		lock:      &locker{locks: locks, ttl: lockTTL, retry: noRetry},
	}
}

// finalization carries one run of the workflow.
type finalization struct {
	logger            *slog.Logger
	sessionID         string
	providerSessionID string
	state             models.FinalizationState
}

func (f *finalization) transition(state models.FinalizationState) {
	f.logger.Info("Finalization state changed",
		slog.String("from", string(f.state)),
		slog.String("to", string(state)))
	f.state = state
}

func (f *finalization) fail(message string, err error) (*models.FinalizationResult, error) {
	f.transition(models.StateFailed)
	metrics.RecordFinalization(string(models.StateFailed))

	return &models.FinalizationResult{State: models.StateFailed, Message: message}, err
}

// Finalize verifies the payment and creates the order exactly once per
// provider session. A replayed redirect returns the existing order.
func (s *finalizationService) Finalize(ctx context.Context, sessionID, providerSessionID string) (*models.FinalizationResult, error) {
	if providerSessionID == "" {
		return nil, appErrors.AddValidationError("session_id", "is required")
	}

	f := &finalization{
		logger: middleware.LoggerFromContext(ctx).With(
			slog.String("stripeSessionID", providerSessionID)),
		sessionID:         sessionID,
		providerSessionID: providerSessionID,
		state:             models.StateAwaitingRedirect,
	}

	var (
		result *models.FinalizationResult
		runErr error
	)

	err := s.lock.withLock(ctx, "finalize:"+providerSessionID, func() error {
		result, runErr = s.run(ctx, f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, runErr
}

func (s *finalizationService) run(ctx context.Context, f *finalization) (*models.FinalizationResult, error) {
	f.transition(models.StateVerifyingPayment)

	session, err := s.stripe.GetCheckoutSession(ctx, f.providerSessionID)
	if err != nil {
		f.logger.Error("Failed to verify checkout session", slog.Any("error", err))
		return f.fail(msgPaymentFailed, appErrors.UpstreamUnavailableError("Payment provider is unavailable").WithError(err))
	}

	if !stripeClient.IsPaid(session) {
		f.logger.Warn("Checkout session is not paid", slog.String("paymentStatus", string(session.PaymentStatus)))
		return f.fail(msgPaymentFailed, appErrors.PaymentNotCompletedError("Payment was not completed"))
	}

	owner := f.sessionID
	if session.ClientReferenceID != "" {
		owner = session.ClientReferenceID
	}

	transactionID := stripeClient.TransactionID(session)
	amount := money.FromMinorUnits(session.AmountTotal)

	record := &models.ReconciliationRecord{
		SessionID:         owner,
		ProviderSessionID: f.providerSessionID,
		TransactionID:     transactionID,
		AmountMinor:       session.AmountTotal,
	}

	// A replayed return only completes against an order written for this
	// exact payment.
	existing, err := s.orders.GetOrderByStripeSession(ctx, f.providerSessionID)
	if err != nil {
		return f.fail(msgOrderFailed, err)
	}

	if existing != nil {
		if existing.Payment.TransactionID != transactionID {
			f.logger.Error("Stored order does not match the verified payment",
				slog.String("orderID", existing.ID),
				slog.String("transactionID", transactionID))

			s.recordForReconciliation(ctx, f, record, "stored order "+existing.ID+" does not match payment")
			return f.fail(msgOrderFailed, appErrors.OrderPersistenceFailureError("Order does not match the payment"))
		}

		f.logger.Info("Order already exists for checkout session", slog.String("orderID", existing.ID))
		s.cleanup(ctx, f, owner)

		return s.complete(f, existing), nil
	}

	f.transition(models.StateCreatingOrder)

	pending, err := s.pending.GetPendingOrder(ctx, owner)
	if err == nil && pending.ProviderSessionID != f.providerSessionID {
		err = repository.ErrPendingOrderNotFound
	}

	if err != nil {
		s.recordForReconciliation(ctx, f, record, "pending order unavailable: "+err.Error())
		return f.fail(msgOrderFailed, appErrors.OrderPersistenceFailureError("Checkout details are no longer available").WithError(err))
	}

	order, err := s.orders.CreateOrder(ctx, &models.CreateOrderRequest{
		SessionID: owner,
		Type:      pending.Type,
		Plan:      pending.Plan,
		Period:    pending.Period,
		Customer:  pending.Customer,
		Items:     pending.Items,
		Pricing:   pending.Pricing,
		Notes:     pending.Notes,
		Payment: models.PaymentConfirmation{
			Method:          "stripe",
			TransactionID:   transactionID,
			StripeSessionID: f.providerSessionID,
			Amount:          amount,
		},
	})
	duplicate := errors.Is(err, repository.ErrDuplicateOrder)
	if duplicate {
		order, err = s.orders.GetOrderByStripeSession(ctx, f.providerSessionID)
		if err == nil && (order == nil || order.Payment.TransactionID != transactionID) {
			err = repository.ErrDuplicateOrder
		}
	}

	if err != nil {
		f.logger.Error("Payment succeeded but order creation failed",
			slog.String("sessionID", owner),
			slog.String("transactionID", transactionID),
			slog.Any("error", err))

		s.recordForReconciliation(ctx, f, record, "order creation failed: "+err.Error())

		return f.fail(msgOrderFailed, appErrors.OrderPersistenceFailureError("Failed to save order").WithError(err))
	}

	s.cleanup(ctx, f, owner)

	// the request that wrote the order sends its confirmation
	if !duplicate {
		if _, err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
			f.logger.Warn("Order confirmation email not sent", slog.String("orderID", order.ID), slog.Any("error", err))
		}
	}

	return s.complete(f, order), nil
}

func (s *finalizationService) complete(f *finalization, order *models.Order) *models.FinalizationResult {
	f.transition(models.StateCompleted)
	metrics.RecordFinalization(string(models.StateCompleted))

	return &models.FinalizationResult{
		State:        models.StateCompleted,
		OrderID:      order.ID,
		CustomerName: order.Customer.FullName(),
		Email:        order.Customer.Email,
		Total:        money.Format(order.Payment.Amount),
	}
}

// cleanup only runs once the order exists. Failures leave stale data behind
// that expires with its TTL.
func (s *finalizationService) cleanup(ctx context.Context, f *finalization, owner string) {
	if err := s.carts.DeleteCart(ctx, owner); err != nil {
		f.logger.Warn("Failed to clear cart after order", slog.Any("error", err))
	}

	if err := s.pending.DeletePendingOrder(ctx, owner); err != nil {
		f.logger.Warn("Failed to delete pending order", slog.Any("error", err))
	}
}

func (s *finalizationService) recordForReconciliation(ctx context.Context, f *finalization, record *models.ReconciliationRecord, reason string) {
	record.Reason = reason
	record.RecordedAt = time.Now().UTC()

	metrics.RecordReconciliation()

	if err := s.reconcile.Record(ctx, record); err != nil {
		f.logger.Error("Failed to record payment for reconciliation",
			slog.String("transactionID", record.TransactionID),
			slog.Any("error", err))
	}
}
