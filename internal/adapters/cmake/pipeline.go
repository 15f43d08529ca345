// Package cmake builds generated C and C++ sources with CMake.
package cmake

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Tool is the CMake executable looked up on PATH.
const Tool = "cmake"

const dirPerm = 0o755

// Pipeline implements ports.Pipeline as Configure, Compile, Install, Rename.
type Pipeline struct {
	runner ports.ProcessRunner
	tracer ports.Tracer
}

var _ ports.Pipeline = (*Pipeline)(nil)

// NewPipeline creates a new CMake Pipeline.
func NewPipeline(runner ports.ProcessRunner, tracer ports.Tracer) *Pipeline {
	return &Pipeline{
		runner: runner,
		tracer: tracer,
	}
}

// Tools returns the executables the pipeline invokes.
func (p *Pipeline) Tools() []string {
	return []string{Tool}
}

// ConfigureArgs returns the arguments of the configure step.
func ConfigureArgs(app *domain.App, profile domain.BuildProfile) []string {
	buildType := "DEBUG"
	if profile == domain.ProfileRelease {
		buildType = "RELEASE"
	}
	return []string{
		"-DCMAKE_BUILD_TYPE=" + buildType,
		"-DCMAKE_INSTALL_PREFIX=" + app.OutputRoot,
		"-DCMAKE_INSTALL_BINDIR=bin",
		"-DREACTOR_CPP_VALIDATE=ON",
		"-DREACTOR_CPP_TRACE=OFF",
		"-DREACTOR_CPP_LOG_LEVEL=3",
		"-DLF_SRC_PKG_PATH=" + app.RootPath,
		app.SrcGenDir(),
		"-B", app.BuildDir(),
	}
}

// CompileArgs returns the arguments of the compile step.
func CompileArgs(app *domain.App) []string {
	return []string{"--build", ".", "--target", app.TargetName()}
}

// InstallArgs returns the arguments of the install step.
func InstallArgs() []string {
	return []string{"--install", "."}
}

// Build runs the pipeline for one app. The first failing step ends it.
func (p *Pipeline) Build(ctx context.Context, app *domain.App, opts domain.BuildCommandOptions) error {
	if err := os.MkdirAll(app.BuildDir(), dirPerm); err != nil {
		return fsError(app, domain.StepConfigure, zerr.Wrap(err, "failed to create build directory"))
	}

	steps := []struct {
		step domain.Step
		args []string
	}{
		{domain.StepConfigure, ConfigureArgs(app, opts.Profile)},
		{domain.StepCompile, CompileArgs(app)},
		{domain.StepInstall, InstallArgs()},
	}
	for _, s := range steps {
		if err := p.invoke(ctx, app, s.step, s.args); err != nil {
			return err
		}
	}

	return p.rename(app)
}

func (p *Pipeline) invoke(ctx context.Context, app *domain.App, step domain.Step, args []string) error {
	ctx, span := p.tracer.Start(ctx, app.Name+": "+string(step), ports.WithApp(app.Name))
	defer span.End()

	res, err := p.runner.Run(ctx, ports.Invocation{
		Path:   Tool,
		Args:   args,
		Dir:    app.BuildDir(),
		Output: span,
	})
	if err != nil {
		kind := domain.KindProcessFailure
		if errors.Is(err, domain.ErrToolNotFound) {
			kind = domain.KindToolNotFound
		}
		err = &domain.BuildError{Kind: kind, App: app.Name, Step: step, ExitCode: -1, Err: err}
		span.RecordError(err)
		return err
	}
	if !res.Success() {
		err = &domain.BuildError{
			Kind:     domain.KindProcessFailure,
			App:      app.Name,
			Step:     step,
			ExitCode: res.ExitCode,
			Output:   string(res.Output),
		}
		span.RecordError(err)
		return err
	}
	return nil
}

// rename gives the installed binary the app's name.
func (p *Pipeline) rename(app *domain.App) error {
	installed := filepath.Join(app.BinDir(), app.TargetName())
	final := app.ExecutablePath()
	if installed == final {
		return nil
	}
	if err := os.Rename(installed, final); err != nil {
		return fsError(app, domain.StepRename, zerr.Wrap(err, "failed to rename executable"))
	}
	return nil
}

// Clean removes the app's output tree. A missing tree is not an error.
func (p *Pipeline) Clean(_ context.Context, app *domain.App) error {
	if err := os.RemoveAll(app.OutputRoot); err != nil {
		return fsError(app, domain.StepClean, zerr.Wrap(err, "failed to remove output directory"))
	}
	return nil
}

func fsError(app *domain.App, step domain.Step, err error) error {
	return &domain.BuildError{Kind: domain.KindFilesystem, App: app.Name, Step: step, ExitCode: -1, Err: err}
}
