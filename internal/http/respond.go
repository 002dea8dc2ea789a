package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/orders"
	"storefront/internal/storage"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// handleCoreError maps core sentinel errors onto HTTP statuses. Anything
// unknown is a 500; the core never leaks internals the UI should not see.
func handleCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, catalog.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, orders.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "persistence medium unavailable")
	default:
		slog.Error("unhandled core error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
