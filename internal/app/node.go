package app

import (
	"context"
	"fmt"

	"github.com/grindlemire/graft"
	"go.trai.ch/lingo/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/lingo/internal/adapters/git"      //nolint:depguard // Wired in app layer
	"go.trai.ch/lingo/internal/adapters/lfc"      //nolint:depguard // Wired in app layer
	"go.trai.ch/lingo/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/lingo/internal/adapters/settings" //nolint:depguard // Wired in app layer
	"go.trai.ch/lingo/internal/adapters/shell"    //nolint:depguard // Wired in app layer
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components are the values the CLI needs to run.
type Components struct {
	App      *App
	Logger   ports.Logger
	Settings domain.Settings
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			lfc.NodeID,
			shell.NodeID,
			shell.WhichNodeID,
			git.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			settings.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	generator, err := graft.Dep[ports.CodeGenerator](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.ProcessRunner](ctx)
	if err != nil {
		return nil, err
	}

	which, err := graft.Dep[ports.Which](ctx)
	if err != nil {
		return nil, err
	}

	clone, err := graft.Dep[ports.GitClone](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, generator, runner, which, clone, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}

	// Broken settings must not make the tool unusable.
	s, err := loader.Load()
	if err != nil {
		log.Warn(fmt.Sprintf("ignoring settings: %v", err))
		s = domain.DefaultSettings()
	}

	return &Components{
		App:      app,
		Logger:   log,
		Settings: s,
	}, nil
}
