package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medallion-demo/internal/ui/assets"
)

// MountRoutes registers the dashboard under r, which is expected to be
// mounted at /ui.
func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Get("/", h.Home)
	r.Get("/zones/{zone}", h.Zone)
	r.Get("/tables/{zone}/{name}", h.TableDetail)
	r.Get("/catalog", h.Catalog)
	r.Get("/lineage", h.Lineage)
	r.Get("/jobs", h.Jobs)
	r.Get("/ingestions", h.Ingestions)
	r.Get("/query", h.QueryWorkbench)
	r.Get("/history", h.History)
}
