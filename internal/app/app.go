// Package app provides application-level wiring for the medallion lake:
// configuration to lake, startup seeding, and the HTTP router.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"medallion-demo/internal/config"
	"medallion-demo/internal/lake"
	"medallion-demo/internal/service/metadata"
	"medallion-demo/internal/service/pipeline"
	"medallion-demo/internal/source"
	"medallion-demo/internal/transform"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// App holds the fully wired lake and its scheduler.
type App struct {
	Lake      *lake.Lake
	Scheduler *pipeline.Scheduler
	cfg       *config.Config
	base      *slog.Logger
	logger    *slog.Logger
}

// New builds the lake from configuration, ingests the startup datasets and
// prepares, but does not start, the pipeline scheduler.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	lakeCfg, err := LakeConfig(cfg)
	if err != nil {
		return nil, err
	}
	l, err := lake.New(lakeCfg, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("create lake: %w", err)
	}

	a := &App{
		Lake:      l,
		Scheduler: l.Scheduler(),
		cfg:       cfg,
		base:      deps.Logger,
		logger:    deps.Logger.With("component", "app"),
	}

	// === Startup data (best-effort) ===
	if err := a.restoreSources(ctx, cfg.StartupSources); err != nil {
		a.logger.Warn("restore startup sources", "error", err)
	}
	if err := a.seedSynthetic(ctx, cfg.SeedSyntheticRows, cfg.SeedSeed); err != nil {
		a.logger.Warn("seed synthetic dataset", "error", err)
	}
	return a, nil
}

// LakeConfig translates the process configuration into lake options,
// loading transform rules from RulesPath when set.
func LakeConfig(cfg *config.Config) (lake.Config, error) {
	rules := transform.DefaultRules()
	if cfg.RulesPath != "" {
		loaded, err := transform.LoadRules(cfg.RulesPath)
		if err != nil {
			return lake.Config{}, fmt.Errorf("load rules: %w", err)
		}
		rules = loaded
	}

	sources := source.Options{
		GCSKeyFile:       cfg.GCSKeyFile,
		AzureAccountName: cfg.AzureAccountName,
		AzureAccountKey:  cfg.AzureAccountKey,
	}
	if cfg.HasS3Config() {
		sources.S3 = &source.S3Options{
			KeyID:    *cfg.S3KeyID,
			Secret:   *cfg.S3Secret,
			Endpoint: *cfg.S3Endpoint,
			Region:   *cfg.S3Region,
		}
	}

	return lake.Config{
		Rules:           rules,
		QueryTimeout:    cfg.QueryTimeout,
		PipelineTimeout: cfg.PipelineTimeout,
		Parallelism:     cfg.PipelineParallelism,
		Metadata: metadata.Options{
			Owner: cfg.CatalogOwner,
			Tags:  cfg.CatalogTags,
		},
		Sources: sources,
	}, nil
}

// Start starts the pipeline scheduler. It returns once the schedules are
// registered; runs continue until ctx is done or Close is called.
func (a *App) Start(ctx context.Context) error {
	return a.Scheduler.Start(ctx)
}

// Close stops the scheduler and releases the lake's source clients.
func (a *App) Close() error {
	a.Scheduler.Stop()
	return a.Lake.Close()
}
