package api

import (
	"mime"
	"net/http"
	"strings"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/source"
)

// sourceUpload is the provenance recorded for CSV bodies posted to /ingest.
const sourceUpload = "http-upload"

// IngestRequest ingests a dataset from a local path or object store URI.
type IngestRequest struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// Ingest stores a raw table. A text/csv body is decoded directly and named
// by the name query parameter; a JSON body names a URI to load.
func (h *APIHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		h.ingestCSV(w, r)
		return
	}

	var req IngestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.URI) == "" {
		h.writeError(w, r, domain.ErrValidation("uri is required"))
		return
	}
	entry, err := h.lake.IngestURI(r.Context(), req.URI, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *APIHandler) ingestCSV(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, r, domain.ErrValidation("name query parameter is required for CSV uploads"))
		return
	}
	t, err := source.DecodeCSV(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, domain.ErrValidation("decode csv: %v", err))
		return
	}
	entry, err := h.lake.Ingest(r.Context(), name, t, sourceUpload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// GenerateRequest asks for a synthetic product dataset.
type GenerateRequest struct {
	Rows int    `json:"rows"`
	Seed uint64 `json:"seed"`
}

// Generate ingests a synthetic dataset into the raw zone.
func (h *APIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.lake.Generate(r.Context(), req.Rows, req.Seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
