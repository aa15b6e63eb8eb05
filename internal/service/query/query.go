// Package query executes lake queries against a selected table and keeps
// the query history.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
	"medallion-demo/internal/query"
)

// DefaultTimeout bounds a query when the service is built with a zero timeout.
const DefaultTimeout = 5 * time.Second

// QueryResult holds the output table of a query and its history entry.
//
//nolint:revive // Name chosen for clarity across package boundaries
type QueryResult struct {
	Table *frame.Table
	Entry domain.QueryHistoryEntry
}

// QueryService evaluates queries and records one history entry per
// execution, successful or not.
//
//nolint:revive // Name chosen for clarity across package boundaries
type QueryService struct {
	history domain.QueryHistoryRepository
	timeout time.Duration
	logger  *slog.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(history domain.QueryHistoryRepository, timeout time.Duration, logger *slog.Logger) *QueryService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &QueryService{history: history, timeout: timeout, logger: logger.With("component", "query")}
}

// Execute runs expression against t, the table identified by ref. The
// returned error is a *domain.QuerySyntaxError or *domain.QueryExecutionError;
// in both cases the failure is already recorded in the history.
func (s *QueryService) Execute(ctx context.Context, ref domain.TableRef, t *frame.Table, expression string) (*QueryResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := query.Run(runCtx, expression, t)
	elapsed := time.Since(start)

	entry := domain.QueryHistoryEntry{
		ID:        domain.NewID(),
		Query:     domain.TruncateQuery(expression),
		Dataset:   ref.String(),
		TimeMs:    elapsed.Milliseconds(),
		Status:    domain.QueryStatusOK,
		CreatedAt: start,
	}
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = &domain.QueryExecutionError{Query: expression, Message: fmt.Sprintf("timed out after %s", s.timeout)}
		}
		entry.Status = fmt.Sprintf("%s: %s", domain.QueryStatusErrorPrefix, errorMessage(err))
	} else {
		entry.Rows = out.Len()
	}

	if appendErr := s.history.Append(context.WithoutCancel(ctx), entry); appendErr != nil {
		return nil, fmt.Errorf("record query history: %w", appendErr)
	}
	if err != nil {
		s.logger.Info("query failed", "dataset", entry.Dataset, "error", err)
		return nil, err
	}
	s.logger.Debug("query executed", "dataset", entry.Dataset, "rows", entry.Rows, "ms", entry.TimeMs)
	return &QueryResult{Table: out, Entry: entry}, nil
}

// History returns every recorded query in execution order.
func (s *QueryService) History(ctx context.Context) ([]domain.QueryHistoryEntry, error) {
	return s.history.List(ctx)
}

// errorMessage returns the bare message of a query error.
func errorMessage(err error) string {
	var se *domain.QuerySyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s at position %d", se.Message, se.Pos)
	}
	var qe *domain.QueryExecutionError
	if errors.As(err, &qe) {
		return qe.Message
	}
	return err.Error()
}
