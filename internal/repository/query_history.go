package repository

import (
	"context"

	"medallion-demo/internal/domain"
)

// QueryHistoryRepo implements domain.QueryHistoryRepository in memory.
type QueryHistoryRepo struct {
	log appendLog[domain.QueryHistoryEntry]
}

// NewQueryHistoryRepo creates an empty QueryHistoryRepo.
func NewQueryHistoryRepo() *QueryHistoryRepo {
	return &QueryHistoryRepo{}
}

// Append records one query execution.
func (r *QueryHistoryRepo) Append(ctx context.Context, e domain.QueryHistoryEntry) error {
	return r.log.append(ctx, e)
}

// List returns all executions in append order.
func (r *QueryHistoryRepo) List(ctx context.Context) ([]domain.QueryHistoryEntry, error) {
	return r.log.list(ctx)
}

var _ domain.QueryHistoryRepository = (*QueryHistoryRepo)(nil)
