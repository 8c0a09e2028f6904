package merge

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fin/internal/adapters/fs"
	"go.trai.ch/fin/internal/core/ports"
)

// NodeID is the unique identifier for the Merger Graft node.
const NodeID graft.ID = "engine.merger"

func init() {
	graft.Register(graft.Node[*Merger]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID},
		Run: func(ctx context.Context) (*Merger, error) {
			hasher, err := graft.Dep[ports.ContentHasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewMerger(hasher), nil
		},
	})
}
