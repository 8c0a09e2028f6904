package scan

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fin/internal/adapters/elf"
	"go.trai.ch/fin/internal/core/ports"
)

// NodeID is the unique identifier for the Scanner Graft node.
const NodeID graft.ID = "engine.scanner"

func init() {
	graft.Register(graft.Node[*Scanner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{elf.NodeID},
		Run: func(ctx context.Context) (*Scanner, error) {
			reader, err := graft.Dep[ports.ElfReader](ctx)
			if err != nil {
				return nil, err
			}
			return NewScanner(reader, 0), nil
		},
	})
}
