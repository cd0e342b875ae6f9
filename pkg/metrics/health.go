package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthStatus is the overall state reported by a HealthCheck.
type HealthStatus string

// Health states, from best to worst.
const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

func (s HealthStatus) worse(than HealthStatus) bool {
	return s.rank() > than.rank()
}

func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusDegraded:
		return 1
	case HealthStatusUnhealthy:
		return 2
	default:
		return 0
	}
}

// CheckFunc probes one dependency. It returns nil when healthy.
type CheckFunc func() error

// Severity decides how a failing check affects the overall status.
type Severity int

const (
	// Critical failures make the service unhealthy and not ready.
	Critical Severity = iota
	// Advisory failures only degrade the service.
	Advisory
)

// DegradedErrorRate is the default backend error ratio above which the
// engine is reported degraded. Crypto and usage errors are driven by peer
// input or callers and never degrade health.
const DegradedErrorRate = 0.01

// CheckTimeout bounds a single check. A check that overruns is reported
// with its severity's failure status.
const CheckTimeout = 2 * time.Second

type registeredCheck struct {
	fn       CheckFunc
	severity Severity
}

// HealthCheck aggregates self-test checks and the engine error rate.
type HealthCheck struct {
	mu           sync.RWMutex
	checks       map[string]registeredCheck
	collector    *Collector
	started      time.Time
	version      string
	maxErrorRate float64
	timeout      time.Duration
}

// HealthResponse is the JSON body of /health.
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Metrics   *HealthMetrics         `json:"metrics,omitempty"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthMetrics summarizes engine operations. ErrorRate covers every
// failure; BackendErrorRate only counts results of kind "error".
type HealthMetrics struct {
	OperationsTotal  uint64   `json:"operations_total"`
	OperationsFailed uint64   `json:"operations_failed"`
	BackendErrors    uint64   `json:"backend_errors"`
	ErrorRate        float64  `json:"error_rate,omitempty"`
	BackendErrorRate float64  `json:"backend_error_rate,omitempty"`
	FailingOps       []string `json:"failing_ops,omitempty"`
}

// NewHealthCheck creates a health check. A nil collector omits metrics.
func NewHealthCheck(collector *Collector, version string) *HealthCheck {
	return &HealthCheck{
		checks:       make(map[string]registeredCheck),
		collector:    collector,
		started:      time.Now(),
		version:      version,
		maxErrorRate: DegradedErrorRate,
		timeout:      CheckTimeout,
	}
}

// AddCheck registers a critical check, replacing any check with that name.
func (h *HealthCheck) AddCheck(name string, check CheckFunc) {
	h.AddCheckWithSeverity(name, check, Critical)
}

// AddCheckWithSeverity registers a check with an explicit severity.
func (h *HealthCheck) AddCheckWithSeverity(name string, check CheckFunc, severity Severity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = registeredCheck{fn: check, severity: severity}
}

// RemoveCheck removes a named check.
func (h *HealthCheck) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.checks, name)
}

// SetMaxErrorRate changes the backend error ratio above which the engine
// is degraded. A rate <= 0 disables the error rate check.
func (h *HealthCheck) SetMaxErrorRate(rate float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxErrorRate = rate
}

// Check runs all checks concurrently and returns the combined report.
func (h *HealthCheck) Check() HealthResponse {
	h.mu.RLock()
	checks := make(map[string]registeredCheck, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	maxErrorRate, timeout := h.maxErrorRate, h.timeout
	h.mu.RUnlock()

	resp := HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now(),
		Uptime:    formatDuration(time.Since(h.started)),
		Version:   h.version,
		Checks:    make(map[string]CheckResult, len(checks)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := runCheck(c, timeout)
			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = result
			if result.Status.worse(resp.Status) {
				resp.Status = result.Status
			}
		}()
	}
	wg.Wait()

	if h.collector != nil {
		resp.Metrics = engineMetrics(h.collector.Snapshot())
		if maxErrorRate > 0 && resp.Metrics.BackendErrorRate > maxErrorRate &&
			HealthStatusDegraded.worse(resp.Status) {
			resp.Status = HealthStatusDegraded
		}
	}
	return resp
}

func runCheck(c registeredCheck, timeout time.Duration) CheckResult {
	failed := HealthStatusUnhealthy
	if c.severity == Advisory {
		failed = HealthStatusDegraded
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() { errCh <- c.fn() }()

	select {
	case err := <-errCh:
		result := CheckResult{Status: HealthStatusHealthy, Latency: time.Since(start).String()}
		if err != nil {
			result.Status = failed
			result.Message = err.Error()
		}
		return result
	case <-ctx.Done():
		return CheckResult{Status: failed, Message: "check timed out", Latency: timeout.String()}
	}
}

func engineMetrics(snap Snapshot) *HealthMetrics {
	m := &HealthMetrics{
		OperationsTotal:  snap.TotalOperations(),
		OperationsFailed: snap.FailedOperations(),
		BackendErrors:    snap.BackendErrors(),
	}
	if m.OperationsTotal > 0 {
		m.ErrorRate = float64(m.OperationsFailed) / float64(m.OperationsTotal)
		m.BackendErrorRate = float64(m.BackendErrors) / float64(m.OperationsTotal)
	}
	for op, stats := range snap.Operations {
		if stats.Failed() > 0 {
			m.FailingOps = append(m.FailingOps, op)
		}
	}
	sort.Strings(m.FailingOps)
	return m
}

// Handler serves the full report. Unhealthy answers 503; degraded still
// answers 200.
func (h *HealthCheck) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := h.Check()
		writeJSON(w, statusCode(resp.Status), resp)
	})
}

// LivenessHandler always answers 200 while the process runs.
func (h *HealthCheck) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
}

// ReadinessHandler answers 200 unless a critical check fails.
func (h *HealthCheck) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := h.Check()
		writeJSON(w, statusCode(resp.Status), map[string]any{
			"status": resp.Status,
			"ready":  resp.Status != HealthStatusUnhealthy,
		})
	})
}

func statusCode(s HealthStatus) int {
	if s == HealthStatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// formatDuration formats a duration to whole seconds.
func formatDuration(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
