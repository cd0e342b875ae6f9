//go:build !otel

package metrics

import "context"

// OTelTracer is inert unless the module is built with -tags otel.
type OTelTracer struct{}

// NewOTelTracer returns an inert tracer.
func NewOTelTracer(string) *OTelTracer {
	return &OTelTracer{}
}

// StartSpan returns ctx unchanged.
func (*OTelTracer) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, SpanEnder) {
	return ctx, func(error) {}
}

// OTelEnabled reports whether OpenTelemetry support is built in.
func OTelEnabled() bool { return false }
