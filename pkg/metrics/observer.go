package metrics

import (
	"context"
	"time"
)

// CryptoObserver feeds engine operation events into a Collector, a Logger
// and a Tracer. It satisfies the crypto.Observer interface.
type CryptoObserver struct {
	collector *Collector
	logger    *Logger
	tracer    Tracer
	fips      bool
}

// ObserverOption configures a CryptoObserver.
type ObserverOption func(*CryptoObserver)

// WithFIPSMode tags every span with the engine's FIPS mode.
func WithFIPSMode(on bool) ObserverOption {
	return func(o *CryptoObserver) { o.fips = on }
}

// NewCryptoObserver creates an observer. Any argument may be nil: a nil
// collector records nothing, a nil logger is silent, and a nil tracer
// starts no spans.
func NewCryptoObserver(collector *Collector, logger *Logger, tracer Tracer, opts ...ObserverOption) *CryptoObserver {
	if logger == nil {
		logger = NullLogger()
	}
	if tracer == nil {
		tracer = NoOpTracer{}
	}
	o := &CryptoObserver{
		collector: collector,
		logger:    logger.Named("crypto"),
		tracer:    tracer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Operation starts timing op and returns the function that completes it.
func (o *CryptoObserver) Operation(op string) func(err error) {
	start := time.Now()
	_, endSpan := o.tracer.StartSpan(context.Background(), SpanName(op), OperationAttributes(op, o.fips)...)

	return func(err error) {
		elapsed := time.Since(start)
		if o.collector != nil {
			o.collector.RecordOperation(op, elapsed, err)
		}
		endSpan(err)

		// Key material never reaches the log; only the op name and error text.
		if err != nil {
			o.logger.Debug("operation failed", Fields{
				"op":     op,
				"result": Result(err),
				"error":  err.Error(),
			})
		}
	}
}
