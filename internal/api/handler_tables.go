package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/export"
)

// TableResponse is a table preview with its catalog entry.
type TableResponse struct {
	Zone    domain.Zone          `json:"zone"`
	Name    string               `json:"name"`
	Catalog *domain.CatalogEntry `json:"catalog,omitempty"`
	Data    TablePayload         `json:"data"`
}

// ListTables lists the tables of one zone.
func (h *APIHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	zone, err := zoneParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tables, err := h.lake.Tables(zone)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, r, tables)
}

// GetTable returns the first rows of a table.
func (h *APIHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	zone, err := zoneParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := intParam(r, "rows", DefaultPreviewRows)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	t, err := h.lake.Table(zone, name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := TableResponse{Zone: zone, Name: name, Data: tableToAPI(t, limit)}
	// The catalog entry is decoration; a preview never fails on it.
	if entry, err := h.lake.CatalogEntry(r.Context(), domain.TableRef{Zone: zone, Name: name}); err == nil {
		resp.Catalog = entry
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportTable downloads a table as CSV.
func (h *APIHandler) ExportTable(w http.ResponseWriter, r *http.Request) {
	zone, err := zoneParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	// Buffer so a missing table can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.lake.ExportCSV(&buf, zone, name); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(name)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// PromoteTable promotes a table one zone forward.
func (h *APIHandler) PromoteTable(w http.ResponseWriter, r *http.Request) {
	zone, err := zoneParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.lake.Promote(r.Context(), zone, chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
