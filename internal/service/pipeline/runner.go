// Package pipeline sequences the zone transforms over raw tables: single
// promotions, full raw-to-gold runs, bounded-parallel batches and cron
// schedules.
package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
	"medallion-demo/internal/service/metadata"
	"medallion-demo/internal/store"
	"medallion-demo/internal/transform"
)

// CatalogSourcePipeline is the provenance tag of tables written by full runs.
const CatalogSourcePipeline = "etl-pipeline"

// stages lists the zone transitions of a full run, in order.
var stages = [domain.PipelineStageCount]struct {
	zone domain.Zone
	name string
}{
	{domain.ZoneBronze, domain.StageBronze},
	{domain.ZoneSilver, domain.StageSilver},
	{domain.ZoneGold, domain.StageGold},
}

// Options control a pipeline run.
type Options struct {
	// HaltOnDegraded stops the run after the first degraded stage instead of
	// feeding its fallback output forward.
	HaltOnDegraded bool
	// Progress, when set, is called after each stage commits.
	Progress func(domain.Progress)
	// Timeout bounds the whole run. Zero uses the runner's default.
	Timeout time.Duration
	// Workers is recorded on job records; batch runs set it to their
	// parallelism.
	Workers int
}

// Runner executes promotions and pipeline runs against the store, recording
// every produced table in the metadata registry.
type Runner struct {
	store    *store.Store
	engine   *transform.Engine
	registry *metadata.Service
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewRunner creates a pipeline runner. A zero timeout means runs are bounded
// only by the caller's context.
func NewRunner(st *store.Store, engine *transform.Engine, registry *metadata.Service, timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		store:    st,
		engine:   engine,
		registry: registry,
		logger:   logger.With("component", "pipeline"),
		timeout:  timeout,
		now:      time.Now,
	}
}

// LatestRaw returns the most recently ingested raw table.
func (r *Runner) LatestRaw() (string, bool) {
	return r.store.Latest(domain.ZoneRaw)
}

// Promote transforms one table into the next zone and commits the result.
// Promoting a gold table is a validation error.
func (r *Runner) Promote(ctx context.Context, ref domain.TableRef) (*domain.StageResult, error) {
	next, ok := ref.Zone.Next()
	if !ok {
		return nil, domain.ErrValidation("table %s cannot be promoted: %s is the last zone", ref, ref.Zone)
	}
	t, err := r.store.Get(ref.Zone, ref.Name)
	if err != nil {
		return nil, err
	}
	dest := domain.DerivedName(next, domain.BaseName(ref.Zone, ref.Name), r.now())
	res, _, err := r.commit(ctx, ref, t, step{
		zone:          next,
		name:          dest,
		operation:     domain.OperationPromote,
		jobName:       fmt.Sprintf("promote_%s_to_%s", ref.Zone, next),
		catalogSource: string(ref.Zone) + "-promotion",
		workers:       1,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Run executes bronze, silver and gold over the named raw table. Each stage
// writes its table and metadata before progress is reported. Committed
// stages are never rolled back: on error the partial result is returned
// alongside it.
func (r *Runner) Run(ctx context.Context, rawName string, opts Options) (*domain.PipelineResult, error) {
	raw := domain.TableRef{Zone: domain.ZoneRaw, Name: rawName}
	current, err := r.store.Get(raw.Zone, raw.Name)
	if err != nil {
		return nil, err
	}
	if timeout := cmp.Or(opts.Timeout, r.timeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	workers := max(opts.Workers, 1)

	started := r.now()
	result := &domain.PipelineResult{
		RunID:     domain.NewID(),
		Raw:       raw,
		State:     domain.PipelineStateRunning,
		Stages:    make([]domain.StageResult, 0, len(stages)),
		StartedAt: started,
	}
	logger := r.logger.With("run_id", result.RunID, "raw", rawName)
	logger.Info("pipeline started", "workers", workers)

	prev := raw
	for i, st := range stages {
		stage, out, err := r.commit(ctx, prev, current, step{
			zone:          st.zone,
			name:          domain.DerivedName(st.zone, rawName, started),
			operation:     st.name,
			jobName:       st.name,
			catalogSource: CatalogSourcePipeline,
			workers:       workers,
		})
		if err != nil {
			result.State = domain.PipelineStateHalted
			result.FinishedAt = r.now()
			logger.Error("pipeline halted", "stage", st.name, "error", err)
			return result, fmt.Errorf("pipeline stage %q: %w", st.name, err)
		}
		stage.Index = i
		stage.Name = st.name
		result.Stages = append(result.Stages, *stage)
		result.StagesCompleted = i + 1
		if stage.Degraded != nil {
			result.Degraded = true
		}
		if opts.Progress != nil {
			opts.Progress(domain.Progress{RunID: result.RunID, Stage: st.name, Completed: i + 1, Total: len(stages)})
		}
		if stage.Degraded != nil && opts.HaltOnDegraded && i < len(stages)-1 {
			result.State = domain.PipelineStateHalted
			result.FinishedAt = r.now()
			logger.Warn("pipeline halted after degraded stage", "stage", st.name)
			return result, nil
		}
		prev, current = stage.Output, out
	}

	result.State = domain.PipelineStateCompleted
	if result.Degraded {
		result.State = domain.PipelineStateCompletedWithDegradation
	}
	result.FinishedAt = r.now()
	logger.Info("pipeline finished", "state", result.State, "stages", result.StagesCompleted)
	return result, nil
}

// step describes where and how one transform output is committed.
type step struct {
	zone          domain.Zone
	name          string
	operation     string
	jobName       string
	catalogSource string
	workers       int
}

// commit applies the transform for s.zone to t, writes the output and
// records its metadata. It returns the stage result and the written table.
func (r *Runner) commit(ctx context.Context, source domain.TableRef, t *frame.Table, s step) (*domain.StageResult, *frame.Table, error) {
	start := time.Now()
	outcome, err := r.engine.Apply(ctx, s.zone, t)
	if err != nil {
		return nil, nil, err
	}
	name, err := r.store.PutUnique(s.zone, s.name, outcome.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("write %s/%s: %w", s.zone, s.name, err)
	}
	dest := domain.TableRef{Zone: s.zone, Name: name}
	elapsed := time.Since(start)
	// The table is committed; its metadata must follow even if ctx expires now.
	if _, err := r.registry.RecordPromotion(context.WithoutCancel(ctx), metadata.Promotion{
		Source:        source,
		Dest:          dest,
		Table:         outcome.Table,
		Operation:     s.operation,
		JobName:       s.jobName,
		CatalogSource: s.catalogSource,
		Elapsed:       elapsed,
		Degraded:      outcome.Degraded,
		Workers:       s.workers,
	}); err != nil {
		return nil, nil, fmt.Errorf("record %s: %w", dest, err)
	}
	return &domain.StageResult{
		Name:       s.operation,
		Output:     dest,
		Rows:       outcome.Table.Len(),
		DurationMs: elapsed.Milliseconds(),
		Degraded:   outcome.Degraded,
	}, outcome.Table, nil
}
