package api

import (
	"net/http"
	"time"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/service/pipeline"
)

// RunPipelineRequest starts one run, or a batch when Raws is set. With
// neither, the most recently ingested raw table is used.
type RunPipelineRequest struct {
	Raw            string   `json:"raw"`
	Raws           []string `json:"raws"`
	HaltOnDegraded bool     `json:"halt_on_degraded"`
	Timeout        string   `json:"timeout"`
}

// BatchResponse reports every run of a batch in request order.
type BatchResponse struct {
	Results []pipeline.BatchResult `json:"results"`
}

// RunPipeline runs the bronze, silver and gold stages over raw tables.
func (h *APIHandler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	var req RunPipelineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{HaltOnDegraded: req.HaltOnDegraded}
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			h.writeError(w, r, domain.ErrValidation("timeout %q must be a positive duration", req.Timeout))
			return
		}
		opts.Timeout = d
	}

	if len(req.Raws) > 0 {
		if req.Raw != "" {
			h.writeError(w, r, domain.ErrValidation("raw and raws are mutually exclusive"))
			return
		}
		results, err := h.lake.RunAll(r.Context(), req.Raws, opts)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, BatchResponse{Results: results})
		return
	}

	raw := req.Raw
	if raw == "" {
		latest, ok := h.lake.LatestRaw()
		if !ok {
			h.writeError(w, r, domain.ErrNotFound("no raw table has been ingested"))
			return
		}
		raw = latest
	}
	res, err := h.lake.RunPipeline(r.Context(), raw, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
