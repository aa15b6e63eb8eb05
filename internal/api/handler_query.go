package api

import (
	"net/http"

	"medallion-demo/internal/domain"
	querysvc "medallion-demo/internal/service/query"
)

// QueryRequest evaluates either an expression or a named preset.
type QueryRequest struct {
	Zone   string `json:"zone"`
	Table  string `json:"table"`
	Query  string `json:"query"`
	Preset string `json:"preset"`
	Rows   *int   `json:"rows"`
}

// QueryResponse is the result table and the history entry it recorded.
type QueryResponse struct {
	Result  TablePayload             `json:"result"`
	History domain.QueryHistoryEntry `json:"history"`
}

// Query evaluates a query against one table.
func (h *APIHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	zone, err := domain.ParseZone(req.Zone)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Table == "" {
		h.writeError(w, r, domain.ErrValidation("table is required"))
		return
	}
	if (req.Query == "") == (req.Preset == "") {
		h.writeError(w, r, domain.ErrValidation("exactly one of query and preset is required"))
		return
	}
	limit := -1
	if req.Rows != nil {
		if *req.Rows < 0 {
			h.writeError(w, r, domain.ErrValidation("rows must be non-negative"))
			return
		}
		limit = *req.Rows
	}

	var res *querysvc.QueryResult
	if req.Preset != "" {
		res, err = h.lake.QueryPreset(r.Context(), zone, req.Table, req.Preset)
	} else {
		res, err = h.lake.Query(r.Context(), zone, req.Table, req.Query)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Result: tableToAPI(res.Table, limit), History: res.Entry})
}

// ListPresets lists the built-in queries.
func (h *APIHandler) ListPresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.lake.Presets()})
}

// ListQueryHistory pages through executed queries.
func (h *APIHandler) ListQueryHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.lake.ListQueryHistory(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, r, history)
}
