package planner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/scanner"
)

// NodeID is the unique identifier for the planner Graft node.
const NodeID graft.ID = "engine.planner"

func init() {
	graft.Register(graft.Node[*Planner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			scanner.NodeID,
			fs.SourcesNodeID,
			cas.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Planner, error) {
			s, err := graft.Dep[*scanner.Scanner](ctx)
			if err != nil {
				return nil, err
			}
			sources, err := graft.Dep[ports.SourceWalker](ctx)
			if err != nil {
				return nil, err
			}
			cache, err := graft.Dep[ports.IPCache](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return New(s, sources, cache, tracer), nil
		},
	})
}
