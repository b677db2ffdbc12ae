package rest

import (
	"context"
	"net/http"
	"time"
)

// indexStatus reports whether the vocabulary has been indexed.
type indexStatus interface {
	Ready() bool
	Len() int
}

// Pinger is an optional dependency checked by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	index   indexStatus
	checks  map[string]Pinger
	version string
}

// NewHealthHandler creates a HealthHandler. checks maps a component name to
// its probe; nil probes are skipped.
func NewHealthHandler(index indexStatus, checks map[string]Pinger, version string) *HealthHandler {
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &HealthHandler{index: index, checks: live, version: version}
}

// Register mounts the probes on mux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /live", h.Live)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /health", h.Health)
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Size    *int   `json:"size,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 once the vocabulary is indexed, 503 before.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.index.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check. An unready index makes the service down;
// a failing optional dependency only degrades it, since generation and
// validation fall back when those are unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus, len(h.checks)+1)
	overallStatus := "ok"

	size := h.index.Len()
	if h.index.Ready() {
		components["index"] = CompStatus{Status: "ok", Size: &size}
	} else {
		components["index"] = CompStatus{Status: "down", Size: &size}
		overallStatus = "down"
	}

	for name, p := range h.checks {
		start := time.Now()
		err := p.Ping(ctx)
		latency := time.Since(start)

		if err != nil {
			components[name] = CompStatus{Status: "down"}
			if overallStatus == "ok" {
				overallStatus = "degraded"
			}
			continue
		}
		components[name] = CompStatus{
			Status:  "ok",
			Latency: latency.String(),
		}
	}

	status := http.StatusOK
	if overallStatus == "down" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
