package logger

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			l := New()
			// Settings depend on the logger, so only the environment can
			// select JSON this early. config.yaml is applied by main.
			if domain.LogFormat(os.Getenv(domain.LogFormatEnvVar)) == domain.LogFormatJSON {
				l.SetJSON(true)
			}
			return l, nil
		},
	})
}
