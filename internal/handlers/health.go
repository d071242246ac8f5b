package handlers

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	applog "pifko/internal/log"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Time      time.Time `json:"time"`
	RequestID string    `json:"request_id,omitempty"`
}

// Health reports liveness for the named service. It never touches the database.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applog.Debug(r.Context(), "health probe", "service", service)
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Service:   service,
			Time:      time.Now().UTC(),
			RequestID: chimw.GetReqID(r.Context()),
		})
	}
}
