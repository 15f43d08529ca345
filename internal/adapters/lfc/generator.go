// Package lfc invokes the Lingua Franca compiler as the code generator.
package lfc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"os"

	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/zerr"
)

// NoCompileProperty stops the generator from compiling its own output.
const NoCompileProperty = "no-compile"

// Descriptor is the JSON document passed to the generator with --json.
type Descriptor struct {
	Src        string         `json:"src"`
	Out        string         `json:"out"`
	Properties map[string]any `json:"properties"`
}

// NewDescriptor describes the generation of app.
// Compilation stays disabled even if the app's properties try to enable it.
func NewDescriptor(app *domain.App) Descriptor {
	props := make(map[string]any, len(app.Properties)+1)
	maps.Copy(props, app.Properties)
	props[NoCompileProperty] = true

	return Descriptor{
		Src:        app.MainReactor,
		Out:        app.RootPath,
		Properties: props,
	}
}

// Args returns the generator's command line arguments.
func (d Descriptor) Args() ([]string, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode generator descriptor")
	}
	return []string{"--json=" + string(payload)}, nil
}

// Generator implements ports.CodeGenerator.
type Generator struct {
	runner ports.ProcessRunner
}

var _ ports.CodeGenerator = (*Generator)(nil)

// NewGenerator creates a Generator that runs processes through runner.
func NewGenerator(runner ports.ProcessRunner) *Generator {
	return &Generator{runner: runner}
}

// Generate runs the generator at opts.GeneratorExecPath for app.
func (g *Generator) Generate(ctx context.Context, app *domain.App, opts domain.BuildCommandOptions, output io.Writer) error {
	path := opts.GeneratorExecPath
	if _, err := os.Stat(path); err != nil {
		return &domain.BuildError{
			Kind:     domain.KindToolNotFound,
			App:      app.Name,
			Step:     domain.StepCodegen,
			ExitCode: -1,
			Err:      zerr.Wrap(domain.ErrToolNotFound, "code generator "+path),
		}
	}

	args, err := NewDescriptor(app).Args()
	if err != nil {
		return &domain.BuildError{Kind: domain.KindProcessFailure, App: app.Name, Step: domain.StepCodegen, ExitCode: -1, Err: err}
	}

	res, err := g.runner.Run(ctx, ports.Invocation{
		Path:   path,
		Args:   args,
		Dir:    app.RootPath,
		Output: output,
	})
	if err != nil {
		kind := domain.KindProcessFailure
		if errors.Is(err, domain.ErrToolNotFound) {
			kind = domain.KindToolNotFound
		}
		return &domain.BuildError{Kind: kind, App: app.Name, Step: domain.StepCodegen, ExitCode: -1, Err: err}
	}
	if !res.Success() {
		return &domain.BuildError{
			Kind:     domain.KindProcessFailure,
			App:      app.Name,
			Step:     domain.StepCodegen,
			ExitCode: res.ExitCode,
			Output:   string(res.Output),
		}
	}
	return nil
}
