package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fin/internal/adapters/buildid"            //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/adapters/elf"                //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/fin/internal/engine/closure"
	"go.trai.ch/fin/internal/engine/expand"
	"go.trai.ch/fin/internal/engine/merge"
	"go.trai.ch/fin/internal/engine/scan"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			expand.NodeID,
			merge.NodeID,
			scan.NodeID,
			closure.NodeID,
			elf.NodeID,
			fs.WalkerNodeID,
			buildid.NodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	expander, err := graft.Dep[*expand.Expander](ctx)
	if err != nil {
		return nil, err
	}

	merger, err := graft.Dep[*merge.Merger](ctx)
	if err != nil {
		return nil, err
	}

	scanner, err := graft.Dep[*scan.Scanner](ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := graft.Dep[*closure.Resolver](ctx)
	if err != nil {
		return nil, err
	}

	reader, err := graft.Dep[ports.ElfReader](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.BuildIDStore](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return New(configLoader, expander, merger, scanner, resolver, reader, walker, store, log, telemetry), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       application,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
