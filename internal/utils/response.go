package utils

import (
	"encoding/json"
	"math"
	"net/http"

	"go.uber.org/zap"
)

// FieldError is one entry of the details array attached to validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the envelope every failed request receives.
type ErrorBody struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// WriteSuccess writes {success:true, data, ...extra}.
func WriteSuccess(w http.ResponseWriter, status int, data any, extra map[string]any) {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	body["success"] = true
	body["data"] = data
	WriteJSON(w, status, body)
}

// WriteMessage writes {success:true, message} for operations without a payload.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{"success": true, "message": message})
}

// WriteError writes the failure envelope.
func WriteError(w http.ResponseWriter, status int, errMsg, message string) {
	WriteJSON(w, status, ErrorBody{Error: errMsg, Message: message})
}

// WriteValidationError writes a 400 with field-level details.
func WriteValidationError(w http.ResponseWriter, message string, details []FieldError) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{
		Error:   "Validation error",
		Message: message,
		Details: details,
	})
}

// Pagination mirrors the pagination block of list responses.
type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

// BuildPagination computes the page block from a total and the requested page.
func BuildPagination(total int64, page, perPage int) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: perPage,
	}
}
