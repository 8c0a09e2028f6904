package elf

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fin/internal/core/ports"
)

// NodeID is the unique identifier for the ELF reader Graft node.
const NodeID graft.ID = "adapter.elf_reader"

func init() {
	graft.Register(graft.Node[ports.ElfReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ElfReader, error) {
			return NewReader(), nil
		},
	})
}
