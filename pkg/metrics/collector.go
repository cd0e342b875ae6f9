package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// Metric names exported by the Collector.
const (
	Namespace = "otr"
	Subsystem = "crypto"

	OperationsTotalName   = Namespace + "_" + Subsystem + "_operations_total"
	OperationDurationName = Namespace + "_" + Subsystem + "_operation_duration_seconds"
)

// Operation results used as the "result" label.
const (
	ResultOK          = "ok"
	ResultCryptoError = "crypto_error"
	ResultUsageError  = "usage_error"
	ResultError       = "error"
)

// DurationBuckets for engine operations (seconds). DSA parameter
// generation lands in the top buckets; hashing in the bottom ones.
var DurationBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10,
}

// Labels represents key-value pairs attached to every metric as constant labels.
type Labels map[string]string

// Collector records engine operations as Prometheus metrics on its own registry.
type Collector struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	mu        sync.RWMutex
	createdAt time.Time
	labels    Labels
}

// NewCollector creates a new metrics collector.
func NewCollector(labels Labels) *Collector {
	if labels == nil {
		labels = make(Labels)
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Subsystem:   Subsystem,
				Name:        "operations_total",
				Help:        "Engine operations by name and result",
				ConstLabels: prometheus.Labels(labels),
			},
			[]string{"op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   Namespace,
				Subsystem:   Subsystem,
				Name:        "operation_duration_seconds",
				Help:        "Engine operation latency distribution",
				Buckets:     DurationBuckets,
				ConstLabels: prometheus.Labels(labels),
			},
			[]string{"op"},
		),
		createdAt: time.Now(),
		labels:    labels,
	}

	c.registry.MustRegister(c.operations, c.duration)
	return c
}

// RegisterProcessMetrics adds the Go runtime and process collectors.
func (c *Collector) RegisterProcessMetrics() error {
	if err := c.registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	return c.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordOperation records one completed operation.
func (c *Collector) RecordOperation(op string, d time.Duration, err error) {
	c.operations.WithLabelValues(op, Result(err)).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())
}

// Result classifies err into one of the Result* label values. Entropy
// failures count as backend errors even though callers may retry them.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case qerrors.Is(err, qerrors.ErrEntropy):
		return ResultError
	case qerrors.IsUsage(err):
		return ResultUsageError
	case qerrors.IsRecoverable(err):
		return ResultCryptoError
	default:
		return ResultError
	}
}

// Registry returns the collector's Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// --- Snapshot ---

// OperationStats summarizes one operation.
type OperationStats struct {
	Total        uint64
	CryptoErrors uint64
	UsageErrors  uint64
	OtherErrors  uint64
	TotalTime    time.Duration
}

// Failed returns the number of operations that returned an error.
func (s OperationStats) Failed() uint64 {
	return s.CryptoErrors + s.UsageErrors + s.OtherErrors
}

// Snapshot is a point-in-time view of the collector.
type Snapshot struct {
	Timestamp  time.Time
	Uptime     time.Duration
	Operations map[string]OperationStats
	Labels     Labels
}

// TotalOperations returns the number of operations across all names.
func (s Snapshot) TotalOperations() uint64 {
	var n uint64
	for _, st := range s.Operations {
		n += st.Total
	}
	return n
}

// FailedOperations returns the number of failed operations across all names.
func (s Snapshot) FailedOperations() uint64 {
	var n uint64
	for _, st := range s.Operations {
		n += st.Failed()
	}
	return n
}

// BackendErrors returns the number of operations that failed for reasons
// other than bad input or caller misuse.
func (s Snapshot) BackendErrors() uint64 {
	var n uint64
	for _, st := range s.Operations {
		n += st.OtherErrors
	}
	return n
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	createdAt := c.createdAt
	c.mu.RUnlock()

	snap := Snapshot{
		Timestamp:  time.Now(),
		Uptime:     time.Since(createdAt),
		Operations: make(map[string]OperationStats),
		Labels:     c.labels,
	}

	families, err := c.registry.Gather()
	if err != nil {
		return snap
	}

	for _, mf := range families {
		switch mf.GetName() {
		case OperationsTotalName:
			for _, m := range mf.GetMetric() {
				op, result := labelValue(m, "op"), labelValue(m, "result")
				n := uint64(m.GetCounter().GetValue())
				st := snap.Operations[op]
				st.Total += n
				switch result {
				case ResultCryptoError:
					st.CryptoErrors += n
				case ResultUsageError:
					st.UsageErrors += n
				case ResultError:
					st.OtherErrors += n
				}
				snap.Operations[op] = st
			}
		case OperationDurationName:
			for _, m := range mf.GetMetric() {
				op := labelValue(m, "op")
				st := snap.Operations[op]
				st.TotalTime += time.Duration(m.GetHistogram().GetSampleSum() * float64(time.Second))
				snap.Operations[op] = st
			}
		}
	}

	return snap
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// Reset clears all metrics (useful for testing).
func (c *Collector) Reset() {
	c.operations.Reset()
	c.duration.Reset()
	c.mu.Lock()
	c.createdAt = time.Now()
	c.mu.Unlock()
}

// --- Global Collector ---

var (
	globalCollector   *Collector
	globalCollectorMu sync.Mutex
)

// Global returns the global metrics collector.
// Creates one with default settings if not already initialized.
func Global() *Collector {
	globalCollectorMu.Lock()
	defer globalCollectorMu.Unlock()
	if globalCollector == nil {
		globalCollector = NewCollector(Labels{"instance": "default"})
	}
	return globalCollector
}

// SetGlobal sets the global metrics collector.
func SetGlobal(c *Collector) {
	globalCollectorMu.Lock()
	defer globalCollectorMu.Unlock()
	globalCollector = c
}
