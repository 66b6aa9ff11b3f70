package scanner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/core/domain"
)

// NodeID is the unique identifier for the scanner Graft node.
const NodeID graft.ID = "engine.scanner"

func init() {
	graft.Register(graft.Node[*Scanner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (*Scanner, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			opts := []Option{WithJobs(settings.Jobs)}
			if settings.IgnoredLibraries != nil {
				opts = append(opts, WithIgnoredLibraries(settings.IgnoredLibraries...))
			}
			return New(opts...), nil
		},
	})
}
