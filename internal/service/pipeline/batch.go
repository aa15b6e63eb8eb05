package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"medallion-demo/internal/domain"
)

// DefaultParallelism bounds RunAll when the caller passes zero.
const DefaultParallelism = 4

// BatchResult is the outcome of one run inside RunAll.
type BatchResult struct {
	Raw    string                 `json:"raw"`
	Result *domain.PipelineResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// RunAll runs the pipeline over several raw tables with bounded parallelism.
// A failing run does not stop the others; its error is reported in its
// BatchResult. Results are returned in input order.
func (r *Runner) RunAll(ctx context.Context, rawNames []string, parallelism int, opts Options) ([]BatchResult, error) {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	opts.Workers = parallelism

	results := make([]BatchResult, len(rawNames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, name := range rawNames {
		g.Go(func() error {
			results[i].Raw = name
			res, err := r.Run(gctx, name, opts)
			results[i].Result = res
			if err != nil {
				results[i].Error = err.Error()
				r.logger.Warn("batch run failed", "raw", name, "error", err)
			}
			return nil // don't fail the whole batch
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("run pipelines: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	r.logger.Info("batch finished", "runs", len(rawNames), "parallelism", parallelism)
	return results, nil
}
