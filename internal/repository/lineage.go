package repository

import (
	"context"

	"medallion-demo/internal/domain"
)

// LineageRepo implements domain.LineageRepository in memory.
type LineageRepo struct {
	log appendLog[domain.LineageEvent]
}

// NewLineageRepo creates an empty LineageRepo.
func NewLineageRepo() *LineageRepo {
	return &LineageRepo{}
}

// Append records a lineage event.
func (r *LineageRepo) Append(ctx context.Context, e domain.LineageEvent) error {
	return r.log.append(ctx, e)
}

// List returns all events in append order.
func (r *LineageRepo) List(ctx context.Context) ([]domain.LineageEvent, error) {
	return r.log.list(ctx)
}

var _ domain.LineageRepository = (*LineageRepo)(nil)
