package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config"   //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/adapters/fs"       //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/adapters/manifest" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the IP cache Graft node.
const NodeID graft.ID = "adapter.ip_cache"

func init() {
	graft.Register(graft.Node[ports.IPCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, fs.WalkerNodeID, fs.HasherNodeID, manifest.NodeID},
		Run: func(ctx context.Context) (ports.IPCache, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			manifests, err := graft.Dep[ports.ManifestStore](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(settings.CacheDir, walker, hasher, manifests), nil
		},
	})
}
