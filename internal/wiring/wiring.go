// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/lingo/internal/adapters/config"
	_ "go.trai.ch/lingo/internal/adapters/git"
	_ "go.trai.ch/lingo/internal/adapters/lfc"
	_ "go.trai.ch/lingo/internal/adapters/logger"
	_ "go.trai.ch/lingo/internal/adapters/settings"
	_ "go.trai.ch/lingo/internal/adapters/shell"
	// Register app nodes.
	_ "go.trai.ch/lingo/internal/app"
)
