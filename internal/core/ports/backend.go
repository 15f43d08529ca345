package ports

import (
	"context"

	"go.trai.ch/lingo/internal/core/domain"
)

//go:generate mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks

// Backend executes a batch command against one native build system.
type Backend interface {
	// Execute runs the command for every app of the batch and reports per-app outcomes.
	Execute(ctx context.Context, batch domain.BatchCommand) *domain.BatchBuildResults
}

// Pipeline is the per-app build state machine of one native build system.
type Pipeline interface {
	// Build compiles and installs an app whose sources were already generated.
	Build(ctx context.Context, app *domain.App, opts domain.BuildCommandOptions) error
	// Clean removes the app's output tree. Cleaning a missing tree succeeds.
	Clean(ctx context.Context, app *domain.App) error
	// Tools lists the executables the pipeline needs on PATH.
	Tools() []string
}
