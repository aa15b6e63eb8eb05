package api

import (
	"net/http"

	"medallion-demo/internal/domain"
)

// ListCatalog searches catalog entries by zone and free text.
func (h *APIHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	filter := domain.CatalogFilter{Text: r.URL.Query().Get("q")}
	if z := r.URL.Query().Get("zone"); z != "" {
		zone, err := domain.ParseZone(z)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Zone = zone
	}
	entries, err := h.lake.ListCatalog(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, r, entries)
}

// ListLineage pages through lineage events.
func (h *APIHandler) ListLineage(w http.ResponseWriter, r *http.Request) {
	events, err := h.lake.ListLineage(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, r, events)
}

// GetLineageGraph returns lineage as nodes and weighted links.
func (h *APIHandler) GetLineageGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.lake.LineageGraph(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

// ListJobs pages through job records.
func (h *APIHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.lake.ListJobs(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, r, jobs)
}

// ListIngestionLog pages through ingestion log entries.
func (h *APIHandler) ListIngestionLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.lake.ListIngestionLog(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, r, entries)
}

// GetOverview returns the dashboard summary.
func (h *APIHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.lake.Overview(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
