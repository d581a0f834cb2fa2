package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe check results.
const (
	probeOK           = "ok"
	probeNotReady     = "not ready"
	probeShuttingDown = "shutting down"
)

// HealthChecker derives Kubernetes probe answers from the Box session.
// Liveness only proves the process is serving requests; readiness also
// requires the traffic flag and a session that has not been shut down.
type HealthChecker struct {
	accepting atomic.Bool
	session   *ServerContext
	started   time.Time
}

// NewHealthChecker builds a checker over sc. The server accepts traffic
// until SetReady(false) flips it, typically during shutdown. sc may be
// nil when no session exists yet.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{session: sc, started: time.Now()}
	h.accepting.Store(true)
	return h
}

// SetReady flips the traffic flag reported by /readyz.
func (h *HealthChecker) SetReady(ready bool) { h.accepting.Store(ready) }

// IsReady reports whether the server should receive traffic.
func (h *HealthChecker) IsReady() bool { return h.accepting.Load() }

func (h *HealthChecker) sessionClosed() bool {
	return h.session != nil && h.session.IsShutdown()
}

// HealthResponse is the JSON body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the JSON body of /healthz/detailed. The path
// is public, so it names the auth mode but never the subject.
type DetailedHealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	AuthMode string `json:"auth_mode,omitempty"`
}

// LivenessHandler answers /healthz. A live process always reports ok;
// restarts are for hangs, not for Box credential problems.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeProbeJSON(w, http.StatusOK, HealthResponse{Status: probeOK})
	})
}

// ReadinessHandler answers /readyz. The server stops being ready when
// SetReady(false) is called or once the Box session shuts down.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks := map[string]string{
			"ready":    probeOK,
			"shutdown": probeOK,
		}
		healthy := true
		if !h.accepting.Load() {
			checks["ready"] = probeNotReady
			healthy = false
		}
		if h.sessionClosed() {
			checks["shutdown"] = probeShuttingDown
			healthy = false
		}

		resp := HealthResponse{Status: probeOK, Checks: checks}
		status := http.StatusOK
		if !healthy {
			resp.Status = probeNotReady
			status = http.StatusServiceUnavailable
		}
		writeProbeJSON(w, status, resp)
	})
}

// DetailedHealthHandler answers /healthz/detailed with uptime and the
// session's Box auth mode.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := DetailedHealthResponse{
			Status: probeOK,
			Uptime: time.Since(h.started).Truncate(time.Second).String(),
		}
		if h.session != nil {
			resp.AuthMode = string(h.session.Mode())
		}

		status := http.StatusOK
		switch {
		case h.sessionClosed():
			resp.Status = probeShuttingDown
			status = http.StatusServiceUnavailable
		case !h.accepting.Load():
			resp.Status = probeNotReady
			status = http.StatusServiceUnavailable
		}
		writeProbeJSON(w, status, resp)
	})
}

// RegisterHealthEndpoints mounts the probe routes on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeProbeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
