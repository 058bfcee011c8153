package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"chef/internal/db"
	applog "chef/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health reports liveness and, when a database is configured, whether it
// answers a ping. An unreachable database turns the check into a 503.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Database: "absent",
		Time:     time.Now().UTC(),
	}
	status := http.StatusOK

	if database != nil {
		resp.Database = "up"
		if err := db.Ping(r.Context(), database); err != nil {
			applog.Error(r.Context(), "database ping failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		return
	}
	applog.Debug(r.Context(), "health check responded", "status", resp.Status)
}
