// Package transform implements the deterministic zone transitions of the
// lake: raw to bronze (clean), bronze to silver (enrich) and silver to gold
// (aggregate).
package transform

import (
	"context"
	"fmt"
	"log/slog"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

// Outcome is the result of one zone transition. Degraded is set when the
// transform fell back to a sample of its input.
type Outcome struct {
	Table    *frame.Table
	Degraded *domain.TransformDegradedError
}

// Engine applies zone transforms according to its rules.
type Engine struct {
	rules  Rules
	logger *slog.Logger
}

// NewEngine creates a transform engine.
func NewEngine(rules Rules, logger *slog.Logger) *Engine {
	if rules.FallbackRows <= 0 {
		rules.FallbackRows = DefaultFallbackRows
	}
	return &Engine{rules: rules, logger: logger.With("component", "transform")}
}

// Rules returns the engine's rules.
func (e *Engine) Rules() Rules { return e.rules }

// Apply transforms t into the target zone. Failures inside the transform never
// escape: the outcome degrades to the first FallbackRows rows of the input.
// An error is returned only for an invalid target or a cancelled context.
func (e *Engine) Apply(ctx context.Context, target domain.Zone, t *frame.Table) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if t == nil {
		return Outcome{}, domain.ErrValidation("input table is required")
	}
	var step func(*frame.Table) (*frame.Table, error)
	switch target {
	case domain.ZoneBronze:
		step = e.ToBronze
	case domain.ZoneSilver:
		step = e.ToSilver
	case domain.ZoneGold:
		step = e.ToGold
	default:
		return Outcome{}, domain.ErrValidation("no transform produces zone %q", target)
	}

	out, err := guard(step, t)
	if err != nil {
		degraded := &domain.TransformDegradedError{Zone: target, Reason: err.Error()}
		e.logger.Warn("transform degraded", "zone", target, "reason", degraded.Reason, "rows", t.Len())
		return Outcome{Table: t.Head(e.rules.FallbackRows), Degraded: degraded}, nil
	}
	return Outcome{Table: out}, nil
}

// guard runs step and converts a panic into an error.
func guard(step func(*frame.Table) (*frame.Table, error), t *frame.Table) (out *frame.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return step(t)
}

// missingColumnsError reports required inputs absent from a table.
type missingColumnsError struct {
	columns []string
}

func (e *missingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns %v", e.columns)
}

func requireColumns(t *frame.Table, names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &missingColumnsError{columns: missing}
	}
	return nil
}

// present filters names down to the columns t has.
func present(t *frame.Table, names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}
