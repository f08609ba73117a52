package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/lib/pq"
)

// ErrDuplicateOrder is returned when an order already exists for the payment
// provider session.
var ErrDuplicateOrder = errors.New("order already exists for checkout session")

const uniqueViolation = "23505"

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByStripeSession(ctx context.Context, sessionID string) (*models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	pricing, err := json.Marshal(order.Pricing)
	if err != nil {
		return fmt.Errorf("failed to marshal pricing: %w", err)
	}

	payment, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	query := `
		INSERT INTO orders (id, session_id, purchase_type, plan, period, customer, items, pricing, notes, payment, stripe_session_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query,
		order.ID, order.SessionID, order.Type, order.Plan, order.Period,
		customer, items, pricing, order.Notes, payment, order.Payment.StripeSessionID, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.Payment.StripeSessionID)
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

const orderColumns = `id, session_id, purchase_type, plan, period, customer, items, pricing, notes, payment, status, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}

	var customer, items, pricing, payment []byte

	if err := row.Scan(&order.ID, &order.SessionID, &order.Type, &order.Plan, &order.Period,
		&customer, &items, &pricing, &order.Notes, &payment, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(customer, &order.Customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	if err := json.Unmarshal(pricing, &order.Pricing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pricing: %w", err)
	}

	if err := json.Unmarshal(payment, &order.Payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetOrderByStripeSession finds the order created for a checkout session. It
// wraps sql.ErrNoRows when no order exists yet.
func (r *orderRepository) GetOrderByStripeSession(ctx context.Context, sessionID string) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE stripe_session_id = $1`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to get order by session: %w", err)
	}

	return order, nil
}
