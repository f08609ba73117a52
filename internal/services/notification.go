package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/money"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	"github.com/google/uuid"
)

type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) (*models.Notification, error)
	GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error)
}

type notificationService struct {
	repo         repository.NotificationRepository
	emailService sendgrid.EmailService
}

func NewNotificationService(repo repository.NotificationRepository, emailService sendgrid.EmailService) NotificationService {
	return &notificationService{repo: repo, emailService: emailService}
}

func confirmationContent(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order %s.\n\n", order.Customer.FirstName, order.ID)

	if order.IsSubscription() {
		fmt.Fprintf(&b, "Subscription: %s", order.Plan)
		if order.Period != "" {
			fmt.Fprintf(&b, ", billed every %s", order.Period)
		}
		b.WriteString("\n")
	}

	for _, item := range order.Items {
		fmt.Fprintf(&b, "%d x %s  %s\n", item.Quantity, item.DisplayName, money.Format(item.LineTotal))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", money.Format(order.Pricing.Total))

	return b.String()
}

// SendOrderConfirmation records the email before sending it and stores the
// delivery outcome on the record.
func (n *notificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) (*models.Notification, error) {
	logger := middleware.LoggerFromContext(ctx)

	metadata, err := json.Marshal(map[string]string{"order_id": order.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now().UTC()

	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      models.NotificationTypeOrderConfirmation,
		OrderID:   order.ID,
		Recipient: order.Customer.Email,
		Subject:   "Your order " + order.ID + " is confirmed",
		Content:   confirmationContent(order),
		Status:    models.StatusPending,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return nil, appErrors.DatabaseError("Failed to create notification record").WithError(err)
	}

	sendErr := n.emailService.Send(ctx, &models.EmailNotificationRequest{
		To:      notification.Recipient,
		Subject: notification.Subject,
		Content: notification.Content,
	})

	status := models.StatusSent
	errorMsg := ""

	if sendErr != nil {
		status = models.StatusFailed
		errorMsg = sendErr.Error()
	}

	if err := n.repo.UpdateNotificationStatus(ctx, notification.ID, status, errorMsg); err != nil {
		logger.Error("Failed to update notification status",
			slog.String("notificationID", notification.ID.String()),
			slog.Any("error", err))
	}

	notification.Status = status
	notification.ErrorMessage = errorMsg

	if sendErr != nil {
		return notification, appErrors.UpstreamUnavailableError("Failed to send email").WithError(sendErr)
	}

	return notification, nil
}

func (n *notificationService) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	notification, err := n.repo.GetNotificationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Notification not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch notification").WithError(err)
	}

	return notification, nil
}
