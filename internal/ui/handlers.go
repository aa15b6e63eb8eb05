package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"medallion-demo/internal/domain"
	querysvc "medallion-demo/internal/service/query"
)

const (
	previewRows   = 50
	maxResultRows = 200
)

// Home renders the overview dashboard.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ov, err := h.lake.Overview(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, overviewPage(ov))
}

// Zone lists the tables of one zone.
func (h *Handler) Zone(w http.ResponseWriter, r *http.Request) {
	zone, err := domain.ParseZone(chi.URLParam(r, "zone"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	tables, err := h.lake.Tables(zone)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, zonePage(zone, tables))
}

// TableDetail previews a table with its catalog entry.
func (h *Handler) TableDetail(w http.ResponseWriter, r *http.Request) {
	zone, err := domain.ParseZone(chi.URLParam(r, "zone"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	ref := domain.TableRef{Zone: zone, Name: chi.URLParam(r, "name")}
	t, err := h.lake.Table(ref.Zone, ref.Name)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	entry, err := h.lake.CatalogEntry(r.Context(), ref)
	if err != nil {
		h.logger.DebugContext(r.Context(), "catalog entry unavailable", "table", ref.String(), "error", err)
	}
	renderHTML(w, http.StatusOK, tablePage(ref, entry, t, previewRows))
}

// Catalog searches the catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	filter := domain.CatalogFilter{Text: strings.TrimSpace(r.URL.Query().Get("q"))}
	if z := r.URL.Query().Get("zone"); z != "" {
		zone, err := domain.ParseZone(z)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		filter.Zone = zone
	}
	entries, err := h.lake.ListCatalog(r.Context(), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	page := pageFromRequest(r, 25)
	items, total := domain.Paginate(entries, page)
	renderHTML(w, http.StatusOK, catalogPage(items, filter, page, total))
}

// Lineage lists lineage events.
func (h *Handler) Lineage(w http.ResponseWriter, r *http.Request) {
	events, err := h.lake.ListLineage(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	page := pageFromRequest(r, 50)
	items, total := domain.Paginate(events, page)
	renderHTML(w, http.StatusOK, lineagePage(items, page, total))
}

// Jobs lists job records.
func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.lake.ListJobs(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	page := pageFromRequest(r, 50)
	items, total := domain.Paginate(jobs, page)
	renderHTML(w, http.StatusOK, jobsPage(items, page, total))
}

// Ingestions lists the ingestion log.
func (h *Handler) Ingestions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.lake.ListIngestionLog(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	page := pageFromRequest(r, 50)
	items, total := domain.Paginate(entries, page)
	renderHTML(w, http.StatusOK, ingestionsPage(items, page, total))
}

// History lists executed queries.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.lake.ListQueryHistory(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	page := pageFromRequest(r, 50)
	items, total := domain.Paginate(history, page)
	renderHTML(w, http.StatusOK, historyPage(items, page, total))
}

// QueryWorkbench renders the query form and, when a table and a query or
// preset are given, the result of running it. Query errors are shown in
// the page rather than as an error status.
func (h *Handler) QueryWorkbench(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := queryForm{
		Zone:   domain.ZoneRaw,
		Table:  strings.TrimSpace(q.Get("table")),
		Query:  q.Get("q"),
		Preset: q.Get("preset"),
	}
	if z := q.Get("zone"); z != "" {
		zone, err := domain.ParseZone(z)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		form.Zone = zone
	}
	if form.Table == "" {
		if latest, ok := h.lake.LatestRaw(); ok && q.Get("zone") == "" {
			form.Table = latest
		}
		renderHTML(w, http.StatusOK, queryPage(form, h.lake.Presets(), nil, ""))
		return
	}
	if form.Query == "" && form.Preset == "" {
		renderHTML(w, http.StatusOK, queryPage(form, h.lake.Presets(), nil, ""))
		return
	}

	var (
		res *querysvc.QueryResult
		err error
	)
	if form.Preset != "" {
		res, err = h.lake.QueryPreset(r.Context(), form.Zone, form.Table, form.Preset)
	} else {
		res, err = h.lake.Query(r.Context(), form.Zone, form.Table, form.Query)
	}
	if err != nil {
		renderHTML(w, http.StatusOK, queryPage(form, h.lake.Presets(), nil, queryErrorMessage(err)))
		return
	}
	if form.Preset != "" {
		form.Query = res.Entry.Query
	}
	renderHTML(w, http.StatusOK, queryPage(form, h.lake.Presets(), res, ""))
}

func queryErrorMessage(err error) string {
	var syntax *domain.QuerySyntaxError
	if errors.As(err, &syntax) {
		return fmt.Sprintf("Syntax error at position %d: %s", syntax.Pos, syntax.Message)
	}
	var execution *domain.QueryExecutionError
	if errors.As(err, &execution) {
		return "Query failed: " + execution.Message
	}
	return err.Error()
}
