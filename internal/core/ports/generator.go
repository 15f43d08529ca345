package ports

import (
	"context"
	"io"

	"go.trai.ch/lingo/internal/core/domain"
)

// CodeGenerator runs the external code generator for one app.
//
//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
type CodeGenerator interface {
	// Generate produces the app's sources below app.SrcGenDir(), streaming the
	// generator's output to output. Failures are *domain.BuildError values
	// attributed to domain.StepCodegen.
	Generate(ctx context.Context, app *domain.App, opts domain.BuildCommandOptions, output io.Writer) error
}
