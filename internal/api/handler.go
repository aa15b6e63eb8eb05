// Package api provides the HTTP JSON API of the medallion lake.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
	"medallion-demo/internal/query"
	"medallion-demo/internal/service/pipeline"
	querysvc "medallion-demo/internal/service/query"
)

// maxBodyBytes bounds request bodies, CSV uploads included.
const maxBodyBytes = 64 << 20

// DefaultPreviewRows is the number of rows a table preview returns.
const DefaultPreviewRows = 20

// lakeService is the subset of the lake the API serves.
type lakeService interface {
	Ingest(ctx context.Context, name string, t *frame.Table, source string) (*domain.CatalogEntry, error)
	IngestURI(ctx context.Context, uri, name string) (*domain.CatalogEntry, error)
	Generate(ctx context.Context, n int, seed uint64) (*domain.CatalogEntry, error)
	Promote(ctx context.Context, zone domain.Zone, name string) (*domain.StageResult, error)
	RunPipeline(ctx context.Context, rawName string, opts pipeline.Options) (*domain.PipelineResult, error)
	RunAll(ctx context.Context, rawNames []string, opts pipeline.Options) ([]pipeline.BatchResult, error)
	LatestRaw() (string, bool)
	Query(ctx context.Context, zone domain.Zone, name, expression string) (*querysvc.QueryResult, error)
	QueryPreset(ctx context.Context, zone domain.Zone, name, preset string) (*querysvc.QueryResult, error)
	Presets() []query.Preset
	Table(zone domain.Zone, name string) (*frame.Table, error)
	Tables(zone domain.Zone) ([]domain.TableSummary, error)
	ExportCSV(w io.Writer, zone domain.Zone, name string) error
	ListCatalog(ctx context.Context, filter domain.CatalogFilter) ([]domain.CatalogEntry, error)
	CatalogEntry(ctx context.Context, ref domain.TableRef) (*domain.CatalogEntry, error)
	ListLineage(ctx context.Context) ([]domain.LineageEvent, error)
	LineageGraph(ctx context.Context) (*domain.LineageGraph, error)
	ListJobs(ctx context.Context) ([]domain.JobRecord, error)
	ListIngestionLog(ctx context.Context) ([]domain.IngestionLogEntry, error)
	ListQueryHistory(ctx context.Context) ([]domain.QueryHistoryEntry, error)
	Overview(ctx context.Context) (*domain.Overview, error)
}

// APIHandler serves the /v1 API.
type APIHandler struct {
	lake   lakeService
	logger *slog.Logger
}

// NewHandler creates an APIHandler over the lake.
func NewHandler(lake lakeService, logger *slog.Logger) *APIHandler {
	return &APIHandler{lake: lake, logger: logger.With("component", "api")}
}

// Routes mounts the API on r.
func (h *APIHandler) Routes(r chi.Router) {
	r.Post("/ingest", h.Ingest)
	r.Post("/generate", h.Generate)

	r.Get("/tables/{zone}", h.ListTables)
	r.Get("/tables/{zone}/{name}", h.GetTable)
	r.Get("/tables/{zone}/{name}/export", h.ExportTable)
	r.Post("/tables/{zone}/{name}/promote", h.PromoteTable)

	r.Post("/pipelines/runs", h.RunPipeline)

	r.Post("/query", h.Query)
	r.Get("/query/presets", h.ListPresets)
	r.Get("/query-history", h.ListQueryHistory)

	r.Get("/catalog", h.ListCatalog)
	r.Get("/lineage", h.ListLineage)
	r.Get("/lineage/graph", h.GetLineageGraph)
	r.Get("/jobs", h.ListJobs)
	r.Get("/ingestion-log", h.ListIngestionLog)
	r.Get("/overview", h.GetOverview)
}

// ListResponse is a page of a list endpoint.
type ListResponse[T any] struct {
	Data          []T    `json:"data"`
	Total         int64  `json:"total"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// TablePayload is the JSON form of a table or a prefix of it.
type TablePayload struct {
	Columns   []frame.Column `json:"columns"`
	Rows      [][]any        `json:"rows"`
	RowCount  int            `json:"row_count"`
	Truncated bool           `json:"truncated"`
}

func tableToAPI(t *frame.Table, limit int) TablePayload {
	n := t.Len()
	if limit >= 0 && limit < n {
		n = limit
	}
	rows := make([][]any, n)
	for i := range n {
		row := t.Row(i)
		for j, v := range row {
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				row[j] = nil
			}
		}
		rows[i] = row
	}
	return TablePayload{Columns: t.Columns(), Rows: rows, RowCount: t.Len(), Truncated: n < t.Len()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation("request body is required")
		}
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}

// pageFromRequest reads the max_results and page_token query parameters.
func pageFromRequest(r *http.Request) domain.PageRequest {
	p := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if v := r.URL.Query().Get("max_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.MaxResults = n
		}
	}
	return p
}

func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page := pageFromRequest(r)
	data, total := domain.Paginate(items, page)
	writeJSON(w, http.StatusOK, ListResponse[T]{
		Data:          data,
		Total:         total,
		NextPageToken: domain.NextPageToken(max(page.Offset(), 0), page.Limit(), total),
	})
}

// zoneParam parses the {zone} URL parameter.
func zoneParam(r *http.Request) (domain.Zone, error) {
	return domain.ParseZone(chi.URLParam(r, "zone"))
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, domain.ErrValidation("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}
