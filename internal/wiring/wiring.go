// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/fin/internal/adapters/buildid"
	_ "go.trai.ch/fin/internal/adapters/config"
	_ "go.trai.ch/fin/internal/adapters/elf"
	_ "go.trai.ch/fin/internal/adapters/fs"
	_ "go.trai.ch/fin/internal/adapters/logger"
	_ "go.trai.ch/fin/internal/adapters/manifest"
	_ "go.trai.ch/fin/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/fin/internal/app"
	_ "go.trai.ch/fin/internal/engine/closure"
	_ "go.trai.ch/fin/internal/engine/expand"
	_ "go.trai.ch/fin/internal/engine/merge"
	_ "go.trai.ch/fin/internal/engine/scan"
)
