// Package metadata records and serves the lake's catalog, lineage, job and
// ingestion logs. Every record is append-only.
package metadata

import (
	"context"
	"crypto/md5" //nolint:gosec // checksum is a display tag, not a security boundary
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

// Catalog defaults matching the tags the dashboard has always shown.
const (
	DefaultFormat = "Parquet"
	DefaultOwner  = "data-eng-team"
)

// Options customises the descriptive fields stamped on catalog entries.
type Options struct {
	Owner  string
	Format string
	Tags   []string // extra tags added to every entry, e.g. "ecommerce"
}

// Recorded groups the three records written for one produced table.
type Recorded struct {
	Catalog domain.CatalogEntry `json:"catalog"`
	Lineage domain.LineageEvent `json:"lineage"`
	Job     domain.JobRecord    `json:"job"`
}

// Promotion describes one committed zone transition.
type Promotion struct {
	Source        domain.TableRef
	Dest          domain.TableRef
	Table         *frame.Table
	Operation     string // PROMOTE or a pipeline stage name
	JobName       string
	CatalogSource string // provenance tag, e.g. "raw-promotion" or "etl-pipeline"
	Elapsed       time.Duration
	Degraded      *domain.TransformDegradedError
	Workers       int
}

// Service is the metadata registry.
type Service struct {
	catalog    domain.CatalogRepository
	lineage    domain.LineageRepository
	jobs       domain.JobRepository
	ingestions domain.IngestionLogRepository
	logger     *slog.Logger
	opts       Options
	now        func() time.Time
}

// NewService creates a metadata registry over the given logs.
func NewService(
	catalog domain.CatalogRepository,
	lineage domain.LineageRepository,
	jobs domain.JobRepository,
	ingestions domain.IngestionLogRepository,
	logger *slog.Logger,
	opts Options,
) *Service {
	if opts.Owner == "" {
		opts.Owner = DefaultOwner
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	return &Service{
		catalog:    catalog,
		lineage:    lineage,
		jobs:       jobs,
		ingestions: ingestions,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
	}
}

// RecordIngestion writes the catalog entry, INGEST lineage event, job record
// and ingestion log entry for a table landed in the raw zone.
func (s *Service) RecordIngestion(ctx context.Context, ref domain.TableRef, t *frame.Table, source string, elapsed time.Duration) (*Recorded, error) {
	if t == nil {
		return nil, domain.ErrValidation("table is required")
	}
	if source == "" {
		source = "unknown"
	}
	now := s.now()
	rec := &Recorded{
		Catalog: s.catalogEntry(ref, t, source, now),
		Lineage: domain.LineageEvent{
			ID:            domain.NewID(),
			Source:        source,
			Destination:   ref.String(),
			Operation:     domain.OperationIngest,
			RowsProcessed: t.Len(),
			Timestamp:     now,
			DurationMs:    elapsed.Milliseconds(),
			Status:        domain.StatusSuccess,
		},
		Job: domain.JobRecord{
			ID:         domain.NewID(),
			JobName:    "ingest_" + ref.Name,
			Zone:       ref.Zone,
			Rows:       t.Len(),
			DurationMs: elapsed.Milliseconds(),
			StartedAt:  now.Add(-elapsed),
			Status:     domain.StatusSuccess,
			Workers:    1,
		},
	}
	if err := s.write(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.ingestions.Append(ctx, domain.IngestionLogEntry{
		Dataset: ref.Name, Rows: t.Len(), Time: now, Source: source,
	}); err != nil {
		return nil, fmt.Errorf("append ingestion log: %w", err)
	}
	s.logger.Info("table ingested", "table", ref.String(), "rows", t.Len(), "source", source)
	return rec, nil
}

// RecordPromotion writes the catalog entry, lineage event and job record for
// a promoted table. The lineage source is the upstream table's qualified name.
func (s *Service) RecordPromotion(ctx context.Context, p Promotion) (*Recorded, error) {
	if p.Table == nil {
		return nil, domain.ErrValidation("table is required")
	}
	if p.Operation == "" {
		p.Operation = domain.OperationPromote
	}
	if p.JobName == "" {
		p.JobName = fmt.Sprintf("promote_%s_to_%s", p.Source.Zone, p.Dest.Zone)
	}
	if p.CatalogSource == "" {
		p.CatalogSource = string(p.Source.Zone) + "-promotion"
	}
	if p.Workers <= 0 {
		p.Workers = 1
	}
	now := s.now()
	lineageStatus, jobStatus, detail := domain.StatusSuccess, domain.StatusSuccess, ""
	if p.Degraded != nil {
		lineageStatus, jobStatus, detail = domain.StatusDegraded, domain.StatusWarning, p.Degraded.Error()
	}
	rec := &Recorded{
		Catalog: s.catalogEntry(p.Dest, p.Table, p.CatalogSource, now),
		Lineage: domain.LineageEvent{
			ID:            domain.NewID(),
			Source:        p.Source.String(),
			Destination:   p.Dest.String(),
			Operation:     p.Operation,
			RowsProcessed: p.Table.Len(),
			Timestamp:     now,
			DurationMs:    p.Elapsed.Milliseconds(),
			Status:        lineageStatus,
			Detail:        detail,
		},
		Job: domain.JobRecord{
			ID:         domain.NewID(),
			JobName:    p.JobName,
			Zone:       p.Dest.Zone,
			Rows:       p.Table.Len(),
			DurationMs: p.Elapsed.Milliseconds(),
			StartedAt:  now.Add(-p.Elapsed),
			Status:     jobStatus,
			Workers:    p.Workers,
		},
	}
	if err := s.write(ctx, rec); err != nil {
		return nil, err
	}
	logger := s.logger.With("source", p.Source.String(), "dest", p.Dest.String(), "rows", p.Table.Len())
	if p.Degraded != nil {
		logger.Warn("table promoted with degraded output", "reason", p.Degraded.Reason)
	} else {
		logger.Info("table promoted")
	}
	return rec, nil
}

func (s *Service) write(ctx context.Context, rec *Recorded) error {
	if err := s.catalog.Append(ctx, rec.Catalog); err != nil {
		return fmt.Errorf("append catalog entry: %w", err)
	}
	if err := s.lineage.Append(ctx, rec.Lineage); err != nil {
		return fmt.Errorf("append lineage event: %w", err)
	}
	if err := s.jobs.Append(ctx, rec.Job); err != nil {
		return fmt.Errorf("append job record: %w", err)
	}
	return nil
}

func (s *Service) catalogEntry(ref domain.TableRef, t *frame.Table, source string, now time.Time) domain.CatalogEntry {
	cols := t.Columns()
	schema := make([]domain.SchemaField, len(cols))
	for i, c := range cols {
		schema[i] = domain.SchemaField{Name: c.Name, Type: string(c.Type)}
	}
	return domain.CatalogEntry{
		ID:        domain.NewID(),
		TableName: ref.Name,
		Zone:      ref.Zone,
		Schema:    schema,
		RowCount:  t.Len(),
		Source:    source,
		CreatedAt: now,
		Checksum:  Checksum(ref.Name),
		Format:    s.opts.Format,
		Owner:     s.opts.Owner,
		Tags:      s.tags(ref.Zone, source),
	}
}

// tags returns the sorted, de-duplicated tag set for an entry.
func (s *Service) tags(zone domain.Zone, source string) []string {
	tags := append([]string{string(zone), strings.ToLower(source)}, s.opts.Tags...)
	slices.Sort(tags)
	return slices.Compact(tags)
}

// Checksum derives the short content tag stored on catalog entries: the
// first 12 hex characters of the MD5 of the table name.
func Checksum(name string) string {
	sum := md5.Sum([]byte(name)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])[:12]
}
