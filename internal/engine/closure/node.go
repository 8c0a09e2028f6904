package closure

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the Resolver Graft node.
const NodeID graft.ID = "engine.closure"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Resolver, error) {
			return NewResolver(), nil
		},
	})
}
