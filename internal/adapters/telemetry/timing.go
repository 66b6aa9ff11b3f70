package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/weft/internal/core/ports"
)

// TraceEnvVar enables stage timing output when set to "1".
const TraceEnvVar = "WEFT_TRACE"

// Timing implements sdktrace.SpanProcessor by reporting each finished
// span's duration through the logger.
type Timing struct {
	logger ports.Logger
}

// NewTiming returns a new Timing processor.
func NewTiming(logger ports.Logger) *Timing {
	return &Timing{logger: logger}
}

// OnStart does nothing.
func (t *Timing) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (t *Timing) OnEnd(s sdktrace.ReadOnlySpan) {
	if t.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	d := s.EndTime().Sub(s.StartTime()).Round(time.Microsecond)
	msg := fmt.Sprintf("%s took %s", s.Name(), d)
	if s.Status().Code == codes.Error {
		msg += " (failed)"
	}
	t.logger.Info(msg)
}

// ForceFlush does nothing.
func (t *Timing) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (t *Timing) Shutdown(_ context.Context) error {
	return nil
}

// NewProvider builds the tracer provider for one invocation. Stage timings
// are reported only when timing is enabled.
func NewProvider(logger ports.Logger, timing bool) *sdktrace.TracerProvider {
	var opts []sdktrace.TracerProviderOption
	if timing {
		opts = append(opts, sdktrace.WithSpanProcessor(NewTiming(logger)))
	}
	return sdktrace.NewTracerProvider(opts...)
}
