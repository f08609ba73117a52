package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/redis/go-redis/v9"
)

// ReconciliationRepository keeps a list of paid sessions that have no order,
// newest first, for operators to resolve by hand.
type ReconciliationRepository interface {
	Record(ctx context.Context, record *models.ReconciliationRecord) error
	List(ctx context.Context, limit int64) ([]*models.ReconciliationRecord, error)
}

type reconciliationRepository struct {
	client *redis.Client
}

func NewReconciliationRepo(client *redis.Client) ReconciliationRepository {
	return &reconciliationRepository{client: client}
}

func (r *reconciliationRepository) Record(ctx context.Context, record *models.ReconciliationRecord) error {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal reconciliation record: %w", err)
	}

	if err := r.client.LPush(rCtx, cache.ReconciliationKey, data).Err(); err != nil {
		return fmt.Errorf("failed to record reconciliation for %s: %w", record.ProviderSessionID, err)
	}

	return nil
}

func (r *reconciliationRepository) List(ctx context.Context, limit int64) ([]*models.ReconciliationRecord, error) {
	rCtx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	raw, err := r.client.LRange(rCtx, cache.ReconciliationKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation records: %w", err)
	}

	records := make([]*models.ReconciliationRecord, 0, len(raw))

	for _, item := range raw {
		record := &models.ReconciliationRecord{}
		if err := json.Unmarshal([]byte(item), record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reconciliation record: %w", err)
		}

		records = append(records, record)
	}

	return records, nil
}
