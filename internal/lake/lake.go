// Package lake is the entry point to the medallion data lake. A Lake owns
// the table store, the metadata registry, the transform engine, the pipeline
// runner and the query service; there is no package-level state, so several
// lakes can live in one process.
package lake

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/export"
	"medallion-demo/internal/frame"
	"medallion-demo/internal/query"
	"medallion-demo/internal/repository"
	"medallion-demo/internal/service/metadata"
	"medallion-demo/internal/service/pipeline"
	querysvc "medallion-demo/internal/service/query"
	"medallion-demo/internal/source"
	"medallion-demo/internal/store"
	"medallion-demo/internal/transform"
)

// SyntheticSource is the provenance recorded for generated datasets.
const SyntheticSource = "synthetic-generator"

// syntheticPrefix names generated raw tables, e.g.
// "flipkart_products_20240102_150405".
const syntheticPrefix = "flipkart_products"

// Config configures a Lake. Zero values select defaults.
type Config struct {
	Rules           transform.Rules
	QueryTimeout    time.Duration
	PipelineTimeout time.Duration
	Parallelism     int
	Metadata        metadata.Options
	Sources         source.Options
}

// Lake is the medallion data lake. It is safe for concurrent use.
type Lake struct {
	store       *store.Store
	registry    *metadata.Service
	engine      *transform.Engine
	runner      *pipeline.Runner
	queries     *querysvc.QueryService
	opener      *source.Opener
	parallelism int
	logger      *slog.Logger
	now         func() time.Time
}

// New creates an empty lake. Rules that are entirely unset are replaced
// with transform.DefaultRules; any other rules must validate.
func New(cfg Config, logger *slog.Logger) (*Lake, error) {
	rules := cfg.Rules
	if rules.FallbackRows == 0 && rules.Gold.Dimension == "" {
		rules = transform.DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	st := store.New()
	registry := metadata.NewService(
		repository.NewCatalogRepo(),
		repository.NewLineageRepo(),
		repository.NewJobRepo(),
		repository.NewIngestionLogRepo(),
		logger.With("component", "metadata"),
		cfg.Metadata,
	)
	engine := transform.NewEngine(rules, logger)
	return &Lake{
		store:       st,
		registry:    registry,
		engine:      engine,
		runner:      pipeline.NewRunner(st, engine, registry, cfg.PipelineTimeout, logger),
		queries:     querysvc.NewQueryService(repository.NewQueryHistoryRepo(), cfg.QueryTimeout, logger),
		opener:      source.NewOpener(cfg.Sources, logger),
		parallelism: cmp.Or(cfg.Parallelism, pipeline.DefaultParallelism),
		logger:      logger.With("component", "lake"),
		now:         time.Now,
	}, nil
}

// Close releases the source clients.
func (l *Lake) Close() error {
	return l.opener.Close()
}

// Rules returns the transform rules in effect.
func (l *Lake) Rules() transform.Rules {
	return l.engine.Rules()
}

// Ingest lands t in the raw zone under name and records its catalog entry,
// INGEST lineage event, job and ingestion log entry. A name already taken
// in the raw zone fails with a DuplicateNameError.
func (l *Lake) Ingest(ctx context.Context, name string, t *frame.Table, src string) (*domain.CatalogEntry, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	start := time.Now()
	if err := l.store.Put(domain.ZoneRaw, name, t); err != nil {
		return nil, err
	}
	return l.recordIngestion(ctx, name, t, src, start)
}

// IngestURI loads a CSV dataset from a local path or object store URI and
// ingests it. An empty name is derived from the URI.
func (l *Lake) IngestURI(ctx context.Context, uri, name string) (*domain.CatalogEntry, error) {
	if name == "" {
		name = source.DatasetName(uri)
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	start := time.Now()
	t, err := l.opener.Load(ctx, uri)
	if err != nil {
		return nil, domain.ErrValidation("load %s: %v", uri, err)
	}
	if err := l.store.Put(domain.ZoneRaw, name, t); err != nil {
		return nil, err
	}
	return l.recordIngestion(ctx, name, t, uri, start)
}

// Generate ingests a synthetic product dataset of n rows under a
// timestamped name and returns its catalog entry.
func (l *Lake) Generate(ctx context.Context, n int, seed uint64) (*domain.CatalogEntry, error) {
	if n < 0 {
		return nil, domain.ErrValidation("row count must be non-negative, got %d", n)
	}
	start := time.Now()
	t := source.Synthetic(n, seed)
	name := fmt.Sprintf("%s_%s", syntheticPrefix, l.now().Format("20060102_150405"))
	name, err := l.store.PutUnique(domain.ZoneRaw, name, t)
	if err != nil {
		return nil, err
	}
	return l.recordIngestion(ctx, name, t, SyntheticSource, start)
}

func (l *Lake) recordIngestion(ctx context.Context, name string, t *frame.Table, src string, start time.Time) (*domain.CatalogEntry, error) {
	ref := domain.TableRef{Zone: domain.ZoneRaw, Name: name}
	rec, err := l.registry.RecordIngestion(context.WithoutCancel(ctx), ref, t, src, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("record ingestion of %s: %w", ref, err)
	}
	l.logger.Debug("dataset ingested", "table", ref.String(), "rows", t.Len(), "source", src)
	return &rec.Catalog, nil
}

// Promote transforms the named table into the next zone.
func (l *Lake) Promote(ctx context.Context, zone domain.Zone, name string) (*domain.StageResult, error) {
	return l.runner.Promote(ctx, domain.TableRef{Zone: zone, Name: name})
}

// RunPipeline runs the raw table through bronze, silver and gold.
func (l *Lake) RunPipeline(ctx context.Context, rawName string, opts pipeline.Options) (*domain.PipelineResult, error) {
	return l.runner.Run(ctx, rawName, opts)
}

// RunAll runs pipelines for several raw tables with the configured
// parallelism.
func (l *Lake) RunAll(ctx context.Context, rawNames []string, opts pipeline.Options) ([]pipeline.BatchResult, error) {
	return l.runner.RunAll(ctx, rawNames, l.parallelism, opts)
}

// Scheduler returns a cron scheduler over the rules' pipeline schedules.
// The caller starts and stops it.
func (l *Lake) Scheduler() *pipeline.Scheduler {
	return pipeline.NewScheduler(l.runner, l.engine.Rules().Schedules, l.logger)
}

// Query evaluates expression against the named table. A missing table is
// a NotFoundError and leaves no history entry; every evaluated expression
// records exactly one.
func (l *Lake) Query(ctx context.Context, zone domain.Zone, name, expression string) (*querysvc.QueryResult, error) {
	ref := domain.TableRef{Zone: zone, Name: name}
	t, err := l.store.Get(zone, name)
	if err != nil {
		return nil, err
	}
	return l.queries.Execute(ctx, ref, t, expression)
}

// QueryPreset runs a named preset, substituting query.Fallback when the
// table lacks the preset's columns.
func (l *Lake) QueryPreset(ctx context.Context, zone domain.Zone, name, preset string) (*querysvc.QueryResult, error) {
	p, ok := query.LookupPreset(preset)
	if !ok {
		return nil, domain.ErrNotFound("query preset %q not found", preset)
	}
	t, err := l.store.Get(zone, name)
	if err != nil {
		return nil, err
	}
	return l.queries.Execute(ctx, domain.TableRef{Zone: zone, Name: name}, t, p.For(t))
}

// Presets lists the built-in queries.
func (l *Lake) Presets() []query.Preset {
	return query.Presets
}

// Table returns a stored table.
func (l *Lake) Table(zone domain.Zone, name string) (*frame.Table, error) {
	return l.store.Get(zone, name)
}

// Tables lists a zone's tables in insertion order.
func (l *Lake) Tables(zone domain.Zone) ([]domain.TableSummary, error) {
	if !zone.Valid() {
		return nil, domain.ErrValidation("unknown zone %q", zone)
	}
	var out []domain.TableSummary
	for name, t := range l.store.List(zone) {
		out = append(out, domain.TableSummary{Zone: zone, Name: name, Rows: t.Len(), Columns: t.Width()})
	}
	return out, nil
}

// LatestRaw returns the most recently ingested raw table name.
func (l *Lake) LatestRaw() (string, bool) {
	return l.runner.LatestRaw()
}

// ExportCSV writes the named table as CSV.
func (l *Lake) ExportCSV(w io.Writer, zone domain.Zone, name string) error {
	t, err := l.store.Get(zone, name)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, t)
}

// ListCatalog returns the catalog entries passing filter.
func (l *Lake) ListCatalog(ctx context.Context, filter domain.CatalogFilter) ([]domain.CatalogEntry, error) {
	return l.registry.Search(ctx, filter)
}

// CatalogEntry returns the entry of one table.
func (l *Lake) CatalogEntry(ctx context.Context, ref domain.TableRef) (*domain.CatalogEntry, error) {
	return l.registry.CatalogEntry(ctx, ref)
}

// ListLineage returns every lineage event in append order.
func (l *Lake) ListLineage(ctx context.Context) ([]domain.LineageEvent, error) {
	return l.registry.ListLineage(ctx)
}

// LineageGraph returns the lineage log as nodes and weighted links.
func (l *Lake) LineageGraph(ctx context.Context) (*domain.LineageGraph, error) {
	return l.registry.LineageGraph(ctx)
}

// ListJobs returns every job record in append order.
func (l *Lake) ListJobs(ctx context.Context) ([]domain.JobRecord, error) {
	return l.registry.ListJobs(ctx)
}

// ListIngestionLog returns every ingestion log entry in append order.
func (l *Lake) ListIngestionLog(ctx context.Context) ([]domain.IngestionLogEntry, error) {
	return l.registry.ListIngestionLog(ctx)
}

// ListQueryHistory returns every executed query in append order.
func (l *Lake) ListQueryHistory(ctx context.Context) ([]domain.QueryHistoryEntry, error) {
	return l.queries.History(ctx)
}

// Overview summarises the lake for the dashboard.
func (l *Lake) Overview(ctx context.Context) (*domain.Overview, error) {
	catalog, err := l.registry.Search(ctx, domain.CatalogFilter{})
	if err != nil {
		return nil, err
	}
	jobs, err := l.registry.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	history, err := l.queries.History(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := l.registry.LineageStats(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Overview{
		Zones:          l.store.Stats(),
		CatalogEntries: len(catalog),
		Jobs:           len(jobs),
		Queries:        len(history),
		Lineage:        stats,
	}, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrValidation("table name is required")
	}
	if strings.ContainsAny(name, "/\\") {
		return domain.ErrValidation("table name %q must not contain a path separator", name)
	}
	return nil
}
