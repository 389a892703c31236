// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/modman/internal/adapters/catalog"
	_ "go.trai.ch/modman/internal/adapters/fs"
	_ "go.trai.ch/modman/internal/adapters/logger"
	_ "go.trai.ch/modman/internal/adapters/profile"
	_ "go.trai.ch/modman/internal/adapters/telemetry"
	_ "go.trai.ch/modman/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/modman/internal/app"
	_ "go.trai.ch/modman/internal/engine/resolver"
)
