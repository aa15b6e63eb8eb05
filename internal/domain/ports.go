package domain

import "context"

// CatalogRepository is the append-only catalog log.
type CatalogRepository interface {
	Append(ctx context.Context, e CatalogEntry) error
	List(ctx context.Context) ([]CatalogEntry, error)
}

// LineageRepository is the append-only lineage log.
type LineageRepository interface {
	Append(ctx context.Context, e LineageEvent) error
	List(ctx context.Context) ([]LineageEvent, error)
}

// JobRepository is the append-only job history.
type JobRepository interface {
	Append(ctx context.Context, j JobRecord) error
	List(ctx context.Context) ([]JobRecord, error)
}

// QueryHistoryRepository is the append-only query history.
type QueryHistoryRepository interface {
	Append(ctx context.Context, e QueryHistoryEntry) error
	List(ctx context.Context) ([]QueryHistoryEntry, error)
}

// IngestionLogRepository is the append-only ingestion log.
type IngestionLogRepository interface {
	Append(ctx context.Context, e IngestionLogEntry) error
	List(ctx context.Context) ([]IngestionLogEntry, error)
}
