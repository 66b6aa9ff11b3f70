// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/weft/internal/adapters/cas"
	_ "go.trai.ch/weft/internal/adapters/config"
	_ "go.trai.ch/weft/internal/adapters/fs"
	_ "go.trai.ch/weft/internal/adapters/logger"
	_ "go.trai.ch/weft/internal/adapters/manifest"
	_ "go.trai.ch/weft/internal/adapters/shell"
	_ "go.trai.ch/weft/internal/adapters/telemetry"
	_ "go.trai.ch/weft/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/weft/internal/app"
	_ "go.trai.ch/weft/internal/engine/planner"
	_ "go.trai.ch/weft/internal/engine/resolver"
	_ "go.trai.ch/weft/internal/engine/scanner"
)
