// Package metrics provides observability for the OTR crypto engine.
//
// # Overview
//
//   - Structured logging on zerolog with levels, fields and named loggers
//   - Prometheus metrics for engine operations (counts by result, latency)
//   - Tracing through a small Tracer interface, with an OpenTelemetry
//     adapter behind the otel build tag
//   - Health and readiness endpoints
//
// # Wiring the Engine
//
// CryptoObserver combines the three backends and plugs into the engine:
//
//	collector := metrics.NewCollector(metrics.Labels{"instance": "node-1"})
//	logger := metrics.ProductionLogger(os.Stderr)
//	obs := metrics.NewCryptoObserver(collector, logger, metrics.GetTracer())
//
//	engine := crypto.NewEngine(crypto.WithObserver(obs))
//
// Every engine call then increments otr_crypto_operations_total{op,result},
// observes otr_crypto_operation_duration_seconds{op}, and opens a span named
// "otr.crypto.<op>". Failed operations are logged at debug level with the
// operation name and the error text. Key material is never logged.
//
// # Prometheus Export
//
//	http.Handle("/metrics", collector.Handler())
//
// The collector owns a private registry, so several engines in one process
// can export independently. RegisterProcessMetrics adds the Go runtime and
// process collectors.
//
// # Tracing
//
// Build with -tags otel to use the global OpenTelemetry provider:
//
//	metrics.SetTracer(metrics.NewOTelTracer("otrcrypto"))
//
// Without the tag NewOTelTracer returns a no-op tracer. SimpleTracer keeps
// the most recent spans in memory for tests and the CLI.
//
// # Logging
//
//	logger := metrics.NewLogger(
//		metrics.WithLevel(metrics.LevelDebug),
//		metrics.WithFormat(metrics.FormatJSON),
//	)
//	logger.Named("selftest").Info("POST passed", metrics.Fields{"fips": false})
//
// # Health Checks
//
//	server := metrics.NewServer(metrics.ServerConfig{
//		Collector:        collector,
//		Version:          version.String(),
//		EnablePrometheus: true,
//		EnableHealth:     true,
//	})
//	server.AddHealthCheck("post", func() error { ... })
//	err := server.Run(ctx, ":9090") // returns after ctx is canceled
//
// Checks run concurrently and each is bounded by CheckTimeout. A failing
// Critical check makes the report unhealthy (503); an Advisory one only
// degrades it. The report is also degraded when more than one percent of
// operations fail in the backend, see HealthCheck.SetMaxErrorRate. Crypto
// errors caused by peer input are reported but never degrade health.
package metrics
