package expand

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fin/internal/adapters/manifest"
	"go.trai.ch/fin/internal/core/ports"
)

// NodeID is the unique identifier for the Expander Graft node.
const NodeID graft.ID = "engine.expander"

func init() {
	graft.Register(graft.Node[*Expander]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{manifest.NodeID},
		Run: func(ctx context.Context) (*Expander, error) {
			loader, err := graft.Dep[ports.FragmentLoader](ctx)
			if err != nil {
				return nil, err
			}
			return NewExpander(loader), nil
		},
	})
}
