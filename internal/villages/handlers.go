package villages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/forrest-fire-fund/cnx-backend/internal/gis"
	"github.com/forrest-fire-fund/cnx-backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildingSource returns the footprint collection of one village.
type BuildingSource interface {
	Get(ctx context.Context, uid string) (json.RawMessage, error)
}

// Pinger reports whether the plan store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the read-only village API from a snapshot.
type Handler struct {
	Snapshot  *Snapshot
	Buildings BuildingSource
	Store     Pinger
}

// overlayRoutes maps each overlay route to its dataset key.
var overlayRoutes = []struct {
	Path string
	Key  string
}{
	{"/forest-types", "forestTypes"},
	{"/firebreaks", "firebreaks"},
	{"/fuel-management", "fuelManagement"},
	{"/fire-sentry-stations", "fireSentry"},
	{"/village-weirs", "villageWeirs"},
	{"/wildfire-check-points", "wildfireCheck"},
	{"/burn-areas-2024", "burnAreas"},
}

func (h *Handler) ListVillages(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, h.Snapshot.Villages, map[string]any{
		"total": len(h.Snapshot.Villages),
	})
}

func (h *Handler) GetVillage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Village not found", "")
		return
	}

	v, ok := h.Snapshot.Village(id)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "Village not found", "")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, v, nil)
}

func (h *Handler) FilterVillages(w http.ResponseWriter, r *http.Request) {
	ft := FilterType(chi.URLParam(r, "type"))

	out, err := Filter(h.Snapshot.Villages, ft)
	if errors.Is(err, ErrUnknownFilter) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid filter type", "")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, out, map[string]any{
		"total":  len(out),
		"filter": ft,
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, h.Snapshot.Stats(), nil)
}

type batchRequest struct {
	Datasets json.RawMessage `json:"datasets"`
}

// BatchData returns several datasets in one response.
func (h *Handler) BatchData(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	var datasets []any
	err := json.NewDecoder(r.Body).Decode(&req)
	if err == nil && len(req.Datasets) > 0 {
		err = json.Unmarshal(req.Datasets, &datasets)
	}
	if err != nil || len(datasets) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request",
			"datasets array is required and must contain at least one dataset name")
		return
	}

	res := h.Snapshot.Batch(datasets)
	body := map[string]any{
		"success":   true,
		"data":      res.Data,
		"requested": res.Requested,
		"available": res.Available,
	}
	if len(res.Errors) > 0 {
		body["errors"] = res.Errors
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func (h *Handler) overlay(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, h.Snapshot.Overlay(key), nil)
	}
}

func (h *Handler) SimplifiedBurnAreas(w http.ResponseWriter, r *http.Request) {
	burns, total, err := h.Snapshot.SimplifiedBurnAreas()
	if errors.Is(err, ErrNoBurnAreas) {
		utils.WriteError(w, http.StatusNotFound, "Burn areas data not available", "")
		return
	}
	if err != nil {
		zap.L().Error("simplify burn areas", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch simplified burn area 2024 data", err.Error())
		return
	}

	utils.WriteSuccess(w, http.StatusOK, burns, map[string]any{
		"message": fmt.Sprintf("Simplified dataset with %d features out of %d total", len(burns.Features), total),
	})
}

func (h *Handler) GetBuildings(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	data, err := h.Buildings.Get(r.Context(), uid)
	switch {
	case errors.Is(err, gis.ErrNoBuildings):
		utils.WriteSuccess(w, http.StatusOK, nil, map[string]any{
			"message": "No building data available for this village",
		})
	case errors.Is(err, gis.ErrInvalidUID):
		utils.WriteError(w, http.StatusBadRequest, "Invalid village uid", "")
	case err != nil:
		zap.L().Error("read buildings", zap.String("uid", uid), zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch building data", err.Error())
	default:
		utils.WriteSuccess(w, http.StatusOK, data, nil)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := false
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		connected = h.Store.Ping(ctx) == nil
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "Fire Management API is running",
		"timestamp":       time.Now().UTC().Format(time.RFC3339Nano),
		"villages":        len(h.Snapshot.Villages),
		"store_connected": connected,
	})
}
