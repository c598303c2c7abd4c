package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

const (
	// DefaultHealthAddr is the default address for the health server.
	DefaultHealthAddr = ":8080"

	defaultHealthReadTimeout  = 10 * time.Second
	defaultHealthWriteTimeout = 10 * time.Second
	defaultHealthIdleTimeout  = 60 * time.Second
)

// HealthChecker tracks readiness and shutdown state for the watch loop and
// serves the corresponding probe endpoints.
type HealthChecker struct {
	ready        atomic.Bool
	shuttingDown atomic.Bool
	startTime    time.Time

	httpServer *http.Server
	addr       string
}

// NewHealthChecker creates a HealthChecker listening on addr. The checker
// starts as not ready; call SetReady(true) once the first refresh cycle
// has completed.
func NewHealthChecker(addr string) *HealthChecker {
	if addr == "" {
		addr = DefaultHealthAddr
	}
	return &HealthChecker{
		startTime: time.Now(),
		addr:      addr,
	}
}

// SetReady sets the readiness state.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the watch loop is ready.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// SetShuttingDown marks the process as shutting down, flipping readiness
// probes to failing so traffic drains before the listener closes.
func (h *HealthChecker) SetShuttingDown() {
	h.shuttingDown.Store(true)
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Uptime string            `json:"uptime,omitempty"`
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
// Liveness only says the process is running, nothing more.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		})
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := make(map[string]string)
		allOk := true

		if !h.ready.Load() {
			checks["ready"] = healthStatusNotReady
			allOk = false
		} else {
			checks["ready"] = healthStatusOK
		}

		if h.shuttingDown.Load() {
			checks["shutdown"] = healthStatusShuttingDown
			allOk = false
		} else {
			checks["shutdown"] = healthStatusOK
		}

		response := HealthResponse{Checks: checks}

		if allOk {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// Start serves the probe endpoints in a blocking manner. Call it in a
// goroutine for non-blocking operation.
func (h *HealthChecker) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())

	h.httpServer = &http.Server{
		Addr:              h.addr,
		Handler:           mux,
		ReadHeaderTimeout: defaultHealthReadTimeout,
		WriteTimeout:      defaultHealthWriteTimeout,
		IdleTimeout:       defaultHealthIdleTimeout,
	}

	return h.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the health server.
func (h *HealthChecker) Shutdown(ctx context.Context) error {
	h.SetShuttingDown()
	if h.httpServer != nil {
		return h.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (h *HealthChecker) Addr() string {
	return h.addr
}
