// Package ui serves the read-only HTML dashboard of the lake.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	gomponents "maragu.dev/gomponents"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
	"medallion-demo/internal/query"
	querysvc "medallion-demo/internal/service/query"
)

// lakeReader is the part of the lake the dashboard reads. Query is the
// only call with a side effect: it appends to the query history.
type lakeReader interface {
	Overview(ctx context.Context) (*domain.Overview, error)
	Tables(zone domain.Zone) ([]domain.TableSummary, error)
	Table(zone domain.Zone, name string) (*frame.Table, error)
	CatalogEntry(ctx context.Context, ref domain.TableRef) (*domain.CatalogEntry, error)
	ListCatalog(ctx context.Context, filter domain.CatalogFilter) ([]domain.CatalogEntry, error)
	ListLineage(ctx context.Context) ([]domain.LineageEvent, error)
	ListJobs(ctx context.Context) ([]domain.JobRecord, error)
	ListIngestionLog(ctx context.Context) ([]domain.IngestionLogEntry, error)
	ListQueryHistory(ctx context.Context) ([]domain.QueryHistoryEntry, error)
	LatestRaw() (string, bool)
	Query(ctx context.Context, zone domain.Zone, name, expression string) (*querysvc.QueryResult, error)
	QueryPreset(ctx context.Context, zone domain.Zone, name, preset string) (*querysvc.QueryResult, error)
	Presets() []query.Preset
}

// Handler renders the dashboard pages.
type Handler struct {
	lake   lakeReader
	logger *slog.Logger
}

// NewHandler creates a dashboard handler over the lake.
func NewHandler(lake lakeReader, logger *slog.Logger) *Handler {
	return &Handler{lake: lake, logger: logger.With("component", "ui")}
}

func pageFromRequest(r *http.Request, defaultPageSize int) domain.PageRequest {
	maxResults := defaultPageSize
	if maxResults <= 0 {
		maxResults = 25
	}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			maxResults = parsed
		}
	}
	maxResults = max(1, min(maxResults, 200))
	return domain.PageRequest{
		MaxResults: maxResults,
		PageToken:  r.URL.Query().Get("page_token"),
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

// renderError renders an error page with the status the domain error maps to.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := http.StatusInternalServerError, "Something went wrong"
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &notFound):
		status, title = http.StatusNotFound, "Not found"
	case errors.As(err, &validation):
		status, title = http.StatusBadRequest, "Bad request"
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "render page", "path", r.URL.Path, "error", err)
		msg = "The page could not be rendered."
	}
	renderHTML(w, status, errorPage(title, msg))
}
