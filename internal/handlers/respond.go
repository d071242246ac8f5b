package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/models"
)

// Route pairs a ServeMux pattern with its handler.
type Route struct {
	Pattern string
	Handler http.HandlerFunc
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps err onto a status code and an error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, status, "internal error")
		return
	}
	applog.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeJSONError(w, status, err.Error())
}

// writeList renders {"<key>": items, "count": n}.
func writeList(w http.ResponseWriter, key string, items any, count int) {
	writeJSON(w, http.StatusOK, map[string]any{key: items, "count": count})
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := r.PathValue(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%s %q is not a positive integer: %w", name, raw, apperr.ErrMalformedInput)
	}
	return uint(value), nil
}

func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer: %w", name, raw, apperr.ErrMalformedInput)
	}
	return value, nil
}

func parseKind(raw string) (models.IngredientKind, error) {
	kind, err := models.ParseIngredientKind(raw)
	if err != nil {
		return "", fmt.Errorf("invalid ingredient type %q, use hops, malts or yeasts: %w", raw, apperr.ErrInvalidEnumValue)
	}
	return kind, nil
}

// Root answers GET / with a greeting naming the service.
func Root(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}
