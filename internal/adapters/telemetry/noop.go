package telemetry

import (
	"context"

	"go.trai.ch/weft/internal/core/ports"
)

// NoOpTracer discards every span.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

var _ ports.Tracer = (*NoOpTracer)(nil)

// Start returns ctx unchanged and a span that records nothing.
func (*NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, NoOpSpan{}
}

// NoOpSpan is the span handed out by NoOpTracer.
type NoOpSpan struct{}

func (NoOpSpan) End()                        {}
func (NoOpSpan) RecordError(error)           {}
func (NoOpSpan) SetAttribute(string, any)    {}
func (NoOpSpan) Write(p []byte) (int, error) { return len(p), nil }
