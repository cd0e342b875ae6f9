//go:build otel

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pzverkov/otrcrypto/internal/constants"
	"github.com/pzverkov/otrcrypto/pkg/version"
)

// OTelTracer exports engine spans through the global OpenTelemetry
// tracer provider. The application installs the provider and exporter.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer returns a tracer for the named instrumentation scope.
// An empty name uses the library name.
func NewOTelTracer(scope string) *OTelTracer {
	if scope == "" {
		scope = constants.LibraryName
	}
	return &OTelTracer{
		tracer: otel.Tracer(scope, trace.WithInstrumentationVersion(version.String())),
	}
}

// StartSpan starts an internal span. Errors are recorded on the span
// without any key material, since only the error text is attached.
func (t *OTelTracer) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, SpanEnder) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(toOTel(attrs)...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// OTelEnabled reports whether OpenTelemetry support is built in.
func OTelEnabled() bool { return true }

func toOTel(attrs []Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		case int64:
			out = append(out, attribute.Int64(a.Key, v))
		default:
			out = append(out, attribute.String(a.Key, fmt.Sprint(v)))
		}
	}
	return out
}
