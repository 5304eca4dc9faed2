package communityplans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/forrest-fire-fund/cnx-backend/internal/db"
	"github.com/forrest-fire-fund/cnx-backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Handler serves the plan CRUD endpoints.
type Handler struct {
	Store Store
	Now   func() time.Time
}

func NewHandler(s Store) *Handler {
	return &Handler{Store: s, Now: time.Now}
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now().UTC()
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid plan id", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// CreatePlan stores a new submission with status pending.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if req.MissingVillageInfo() {
		utils.WriteError(w, http.StatusBadRequest, "Missing required village information",
			"Village name, moo, subdistrict, and district are required")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		utils.WriteValidationError(w, "Community plan validation failed", details)
		return
	}

	plan := req.NewPlan(h.now())
	if err := h.Store.Create(r.Context(), plan); err != nil {
		if details := db.Violations(err); len(details) > 0 {
			utils.WriteValidationError(w, "Community plan validation failed", details)
			return
		}
		zap.L().Error("submit community plan", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to submit community plan", err.Error())
		return
	}

	zap.L().Info("community plan submitted", zap.Any("summary", plan.Summary()))

	utils.WriteSuccess(w, http.StatusCreated, map[string]any{
		"id":           plan.ID,
		"village_name": plan.VillageInfo.Data().Name,
		"status":       plan.Status,
		"submitted_at": plan.SubmittedAt,
	}, map[string]any{"message": "Community plan submitted successfully"})
}

func positiveInt(s string, def int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ListPlans returns one page of plans, newest first.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	page, okPage := positiveInt(qs.Get("page"), defaultPage)
	limit, okLimit := positiveInt(qs.Get("limit"), defaultLimit)
	if !okPage || !okLimit {
		utils.WriteError(w, http.StatusBadRequest, "Invalid pagination", "page and limit must be positive integers")
		return
	}
	limit = min(limit, maxLimit)

	q := ListQuery{
		Status:      qs.Get("status"),
		District:    qs.Get("district"),
		Subdistrict: qs.Get("subdistrict"),
		ForestType:  qs.Get("forest_type"),
		Page:        page,
		Limit:       limit,
	}

	plans, total, err := h.Store.List(r.Context(), q)
	if err != nil {
		zap.L().Error("list community plans", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch community plans", err.Error())
		return
	}

	items := make([]ListItem, 0, len(plans))
	for _, p := range plans {
		items = append(items, NewListItem(p))
	}

	utils.WriteSuccess(w, http.StatusOK, items, map[string]any{
		"pagination": utils.BuildPagination(total, page, limit),
	})
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	plan, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Community plan not found", "")
		return
	}
	if err != nil {
		zap.L().Error("fetch community plan", zap.Stringer("id", id), zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch community plan", err.Error())
		return
	}

	utils.WriteSuccess(w, http.StatusOK, NewPlanDetail(plan), nil)
}

// UpdateStatus records a review decision. The status is checked before the
// store is touched.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if !ValidStatus(body.Status) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid status",
			"Status must be one of: "+strings.Join(Statuses, ", "))
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	plan, err := h.Store.UpdateStatus(r.Context(), id, body, h.now())
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Community plan not found", "")
		return
	}
	if err != nil {
		if details := db.Violations(err); len(details) > 0 {
			utils.WriteValidationError(w, "Community plan validation failed", details)
			return
		}
		zap.L().Error("update plan status", zap.Stringer("id", id), zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update plan status", err.Error())
		return
	}

	zap.L().Info("plan status updated",
		zap.String("village", plan.VillageInfo.Data().Name),
		zap.String("status", plan.Status),
	)

	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"id":           plan.ID,
		"village_name": plan.VillageInfo.Data().Name,
		"status":       plan.Status,
		"reviewed_at":  plan.ReviewedAt,
	}, map[string]any{"message": "Plan status updated successfully"})
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Statistics(r.Context())
	if err != nil {
		zap.L().Error("plan statistics", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch statistics", err.Error())
		return
	}
	utils.WriteSuccess(w, http.StatusOK, stats, nil)
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	plan, err := h.Store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Community plan not found", "")
		return
	}
	if err != nil {
		zap.L().Error("delete community plan", zap.Stringer("id", id), zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete community plan", err.Error())
		return
	}

	zap.L().Info("plan deleted", zap.String("village", plan.VillageInfo.Data().Name))
	utils.WriteMessage(w, http.StatusOK, "Community plan deleted successfully")
}
