package repository

import (
	"context"
	"slices"

	"medallion-demo/internal/domain"
)

// CatalogRepo implements domain.CatalogRepository in memory.
type CatalogRepo struct {
	log appendLog[domain.CatalogEntry]
}

// NewCatalogRepo creates an empty CatalogRepo.
func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{}
}

// Append records a catalog entry. Schema and tags are copied so later
// changes by the caller cannot reach the log.
func (r *CatalogRepo) Append(ctx context.Context, e domain.CatalogEntry) error {
	e.Schema = slices.Clone(e.Schema)
	e.Tags = slices.Clone(e.Tags)
	return r.log.append(ctx, e)
}

// List returns all entries in creation order.
func (r *CatalogRepo) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	return r.log.list(ctx)
}

var _ domain.CatalogRepository = (*CatalogRepo)(nil)
