package buildid

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fin/internal/core/ports"
)

// NodeID is the unique identifier for the build-ID store Graft node.
const NodeID graft.ID = "adapter.buildid_store"

func init() {
	graft.Register(graft.Node[ports.BuildIDStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.BuildIDStore, error) {
			return NewStore(), nil
		},
	})
}
