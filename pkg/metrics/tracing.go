package metrics

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pzverkov/otrcrypto/internal/constants"
)

// Tracer starts spans around engine operations.
type Tracer interface {
	// StartSpan starts a span named name. The returned context carries the
	// span; the SpanEnder closes it.
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, SpanEnder)
}

// SpanEnder ends a span. A non-nil error marks the span as failed.
type SpanEnder func(err error)

// Attribute is a typed span attribute. Value is a string, bool or int64.
type Attribute struct {
	Key   string
	Value any
}

// String returns a string attribute.
func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

// Bool returns a boolean attribute.
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }

// Int returns an integer attribute.
func Int(key string, value int64) Attribute { return Attribute{Key: key, Value: value} }

// Attribute keys set on engine spans.
const (
	AttrOperation = "crypto.operation"
	AttrLibrary   = "crypto.library"
	AttrFIPSMode  = "crypto.fips_mode"
)

// OperationAttributes returns the attributes every engine span carries.
func OperationAttributes(op string, fips bool) []Attribute {
	return []Attribute{
		String(AttrOperation, op),
		String(AttrLibrary, constants.LibraryName),
		Bool(AttrFIPSMode, fips),
	}
}

// --- Span names ---

// SpanPrefix is prepended to every engine operation name.
const SpanPrefix = "otr.crypto."

// SpanName returns the span name for an engine operation, such as
// "otr.crypto.sign".
func SpanName(op string) string {
	return SpanPrefix + op
}

// NoOpTracer discards all spans.
type NoOpTracer struct{}

// StartSpan returns ctx unchanged.
func (NoOpTracer) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, SpanEnder) {
	return ctx, func(error) {}
}

// --- Recording tracer ---

// DefaultSpanLimit bounds the spans a SimpleTracer keeps.
const DefaultSpanLimit = 4096

// RecordedSpan is a completed span held by a SimpleTracer.
type RecordedSpan struct {
	Name       string
	TraceID    string
	SpanID     string
	ParentID   string
	Start      time.Time
	Duration   time.Duration
	Attributes []Attribute
	Error      error
}

// Attr returns the value of the attribute with the given key.
func (s RecordedSpan) Attr(key string) (any, bool) {
	for _, a := range s.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// SimpleTracer records completed spans in memory, keeping at most limit of
// them. Older spans are dropped first.
type SimpleTracer struct {
	mu      sync.Mutex
	limit   int
	spans   []RecordedSpan
	dropped uint64
}

// NewSimpleTracer creates a SimpleTracer. A limit <= 0 uses DefaultSpanLimit.
func NewSimpleTracer(limit int) *SimpleTracer {
	if limit <= 0 {
		limit = DefaultSpanLimit
	}
	return &SimpleTracer{limit: limit}
}

// StartSpan starts a span, inheriting the trace of any span in ctx.
func (t *SimpleTracer) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, SpanEnder) {
	span := &RecordedSpan{
		Name:       name,
		SpanID:     randomID(8),
		Start:      time.Now(),
		Attributes: attrs,
	}
	if parent, ok := ctx.Value(spanKey{}).(*RecordedSpan); ok {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else {
		span.TraceID = randomID(16)
	}

	return context.WithValue(ctx, spanKey{}, span), func(err error) {
		span.Duration = time.Since(span.Start)
		span.Error = err
		t.record(*span)
	}
}

func (t *SimpleTracer) record(span RecordedSpan) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.spans) == t.limit {
		copy(t.spans, t.spans[1:])
		t.spans = t.spans[:len(t.spans)-1]
		t.dropped++
	}
	t.spans = append(t.spans, span)
}

// Spans returns the recorded spans, oldest first.
func (t *SimpleTracer) Spans() []RecordedSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]RecordedSpan(nil), t.spans...)
}

// Dropped returns how many spans were evicted to respect the limit.
func (t *SimpleTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Reset clears all recorded spans.
func (t *SimpleTracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = t.spans[:0]
	t.dropped = 0
}

type spanKey struct{}

// randomID returns n random bytes as hex. Trace IDs use 16 bytes and span
// IDs 8, matching W3C trace context.
func randomID(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%0*x", 2*n, time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// --- Global tracer ---

type tracerBox struct{ Tracer }

var globalTracer atomic.Pointer[tracerBox]

func init() {
	globalTracer.Store(&tracerBox{NoOpTracer{}})
}

// SetTracer sets the global tracer. A nil tracer restores NoOpTracer.
func SetTracer(t Tracer) {
	if t == nil {
		t = NoOpTracer{}
	}
	globalTracer.Store(&tracerBox{t})
}

// GetTracer returns the global tracer.
func GetTracer() Tracer {
	return globalTracer.Load().Tracer
}

// StartSpan starts a span using the global tracer.
func StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, SpanEnder) {
	return GetTracer().StartSpan(ctx, name, attrs...)
}
