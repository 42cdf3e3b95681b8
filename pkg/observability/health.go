package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker provides liveness and readiness probes.
type HealthChecker struct {
	db *sql.DB
}

// NewHealthChecker creates a new health checker. db may be nil when the
// server runs on the in-memory store.
func NewHealthChecker(db *sql.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms"`
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Liveness returns a simple liveness probe (200 whenever the server runs).
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthStatus{Status: StatusHealthy, Timestamp: time.Now()})
}

// Readiness checks dependencies and returns 503 when any is down.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Dependencies: make(map[string]DependencyStatus),
	}

	if h.db != nil {
		start := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dep := DependencyStatus{Status: StatusHealthy}
		if err := h.db.PingContext(ctx); err != nil {
			dep.Status = StatusUnhealthy
			dep.Message = err.Error()
			status.Status = StatusUnhealthy
		}
		dep.Latency = time.Since(start).Milliseconds()
		status.Dependencies["postgres"] = dep
	}

	code := http.StatusOK
	if status.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
