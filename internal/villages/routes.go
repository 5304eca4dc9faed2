package villages

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the village, overlay, building, batch and health
// endpoints. Paths are relative to /api.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/villages", h.ListVillages)
	r.Get("/villages/filter/{type}", h.FilterVillages)
	r.Get("/villages/{id}", h.GetVillage)
	r.Get("/stats", h.GetStats)
	r.Post("/batch-data", h.BatchData)

	for _, o := range overlayRoutes {
		r.Get(o.Path, h.overlay(o.Key))
	}
	r.Get("/burn-areas-2024-simplified", h.SimplifiedBurnAreas)
	r.Get("/buildings/{uid}", h.GetBuildings)

	r.Get("/health", h.Health)

	return r
}
