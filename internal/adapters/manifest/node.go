package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fin/internal/core/ports"
)

// NodeID is the unique identifier for the fragment loader Graft node.
const NodeID graft.ID = "adapter.fragment_loader"

func init() {
	graft.Register(graft.Node[ports.FragmentLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FragmentLoader, error) {
			return NewLoader(), nil
		},
	})
}
