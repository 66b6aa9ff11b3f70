package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel"
	"go.trai.ch/weft/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/core/ports"
)

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tp := NewProvider(log, os.Getenv(TraceEnvVar) == "1")
			otel.SetTracerProvider(tp)
			return NewOTelTracer(tp.Tracer("weft")), nil
		},
	})
}
