package communityplans

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.CreatePlan)
	r.Get("/", h.ListPlans)
	r.Get("/stats/overview", h.Statistics)
	r.Get("/{id}", h.GetPlan)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.DeletePlan)

	return r
}
