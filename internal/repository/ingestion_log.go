package repository

import (
	"context"

	"medallion-demo/internal/domain"
)

// IngestionLogRepo implements domain.IngestionLogRepository in memory.
type IngestionLogRepo struct {
	log appendLog[domain.IngestionLogEntry]
}

// NewIngestionLogRepo creates an empty IngestionLogRepo.
func NewIngestionLogRepo() *IngestionLogRepo {
	return &IngestionLogRepo{}
}

// Append records one ingestion.
func (r *IngestionLogRepo) Append(ctx context.Context, e domain.IngestionLogEntry) error {
	return r.log.append(ctx, e)
}

// List returns all ingestions in append order.
func (r *IngestionLogRepo) List(ctx context.Context) ([]domain.IngestionLogEntry, error) {
	return r.log.list(ctx)
}

var _ domain.IngestionLogRepository = (*IngestionLogRepo)(nil)
