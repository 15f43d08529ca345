// Package app implements the application layer for lingo.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.trai.ch/lingo/internal/adapters/cmake"
	"go.trai.ch/lingo/internal/adapters/config"
	"go.trai.ch/lingo/internal/adapters/linear"
	"go.trai.ch/lingo/internal/adapters/report"
	"go.trai.ch/lingo/internal/adapters/telemetry"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/lingo/internal/engine/backend"
	"go.trai.ch/lingo/internal/engine/codegen"
	"go.trai.ch/lingo/internal/engine/dispatcher"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	tracerName = "lingo"
	dirPerm    = 0o755
	filePerm   = 0o644
)

// StarterReactor is written to src/Main.lf by init when no template is given.
const StarterReactor = `target Cpp

main reactor {
  reaction(startup) {=
    std::cout << "Hello World!" << std::endl;
  =}
}
`

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	generator    ports.CodeGenerator
	runner       ports.ProcessRunner
	which        ports.Which
	clone        ports.GitClone
	logger       ports.Logger
	reporter     ports.Reporter

	stdout  io.Writer
	stderr  io.Writer
	workDir string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	generator ports.CodeGenerator,
	runner ports.ProcessRunner,
	which ports.Which,
	clone ports.GitClone,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		generator:    generator,
		runner:       runner,
		which:        which,
		clone:        clone,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		workDir:      ".",
	}
}

// WithOutput redirects progress and the final report.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithReporter replaces the default report written to stdout.
func (a *App) WithReporter(r ports.Reporter) *App {
	a.reporter = r
	return a
}

// WithWorkDir sets the directory the manifest search starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// NoCompile stops after code generation.
	NoCompile bool
	Threads   int
	KeepGoing bool
	Profile   string
	// LFCPath is an explicit code generator; empty means look it up on PATH.
	LFCPath string
}

func (o BuildOptions) command() (domain.BuildCommandOptions, error) {
	profile, err := domain.ParseBuildProfile(o.Profile)
	if err != nil {
		return domain.BuildCommandOptions{}, err
	}
	return domain.BuildCommandOptions{
		Profile:           profile,
		CompileTargetCode: !o.NoCompile,
		GeneratorExecPath: o.LFCPath,
		MaxThreads:        o.Threads,
		KeepGoing:         o.KeepGoing,
	}, nil
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	BuildOptions
	// Args are passed to every executed app.
	Args []string
	// Interactive attaches executed apps to a pseudo-terminal.
	Interactive bool
}

// InitOptions configuration for the Init method.
type InitOptions struct {
	// Name of the package and its app. Defaults to the directory name.
	Name string
	// Template is a git URL cloned into the project directory.
	Template string
}

// Build generates and compiles the named apps, or every app when names is empty.
func (a *App) Build(ctx context.Context, names []string, opts BuildOptions) error {
	cmdOpts, err := opts.command()
	if err != nil {
		return err
	}
	return a.execute(ctx, dispatcher.Request{
		Command:  domain.Build{Options: cmdOpts},
		AppNames: names,
	}, false)
}

// Run builds the named apps and executes their binaries.
func (a *App) Run(ctx context.Context, names []string, opts RunOptions) error {
	cmdOpts, err := opts.command()
	if err != nil {
		return err
	}
	return a.execute(ctx, dispatcher.Request{
		Command:  domain.Run{Options: cmdOpts, Args: opts.Args},
		AppNames: names,
	}, opts.Interactive)
}

// Clean removes the output trees of the named apps.
func (a *App) Clean(ctx context.Context, names []string) error {
	return a.execute(ctx, dispatcher.Request{
		Command:  domain.Clean{},
		AppNames: names,
	}, false)
}

//nolint:cyclop // orchestration function
func (a *App) execute(ctx context.Context, req dispatcher.Request, interactive bool) error {
	// 1. Load the manifest
	cfg, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load manifest")
	}

	// 2. Initialize Renderer and Telemetry
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	bridge := telemetry.NewBridge(renderer)
	provider := telemetry.NewProvider(bridge)
	otel.SetTracerProvider(provider)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()

	tracer := telemetry.NewOTelTracerWithProvider(provider, tracerName).WithRenderer(renderer)

	// 3. Assemble the engine for this command
	pipeline := cmake.NewPipeline(a.runner, tracer)
	driver := backend.New(domain.BackendCMake, codegen.NewScheduler(a.generator, tracer), pipeline, tracer)
	disp := dispatcher.New(
		dispatcher.Variants{CMake: dispatcher.Variant{Backend: driver, Tools: driver.Tools()}},
		a.which,
		a.runner,
		tracer,
		dispatcher.WithInteractive(interactive),
	)

	command := domain.CommandName(req.Command)

	// 4. Run Renderer and Dispatcher concurrently
	var results *domain.BatchBuildResults
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return renderer.Start(gctx)
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		spanCtx, span := tracer.Start(gctx, tracerName+" "+command)
		span.SetAttribute(telemetry.AttrCommand, command)
		defer span.End()

		res, err := disp.Dispatch(spanCtx, cfg, req)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if resErr := res.Err(); resErr != nil {
			span.RecordError(resErr)
		}
		results = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// 5. Report
	reporter := a.reporter
	if reporter == nil {
		reporter = report.New(a.stdout)
	}
	if err := reporter.Report(command, results); err != nil {
		return zerr.Wrap(err, "failed to write report")
	}

	if results.Overall() != domain.AllSuccess {
		return errors.Join(domain.ErrBuildExecutionFailed, results.Err())
	}
	return nil
}

// Init creates a new project in the working directory.
//
// An existing manifest is never overwritten. With a template, the template
// repository is cloned first and a manifest is only written when the template
// does not ship one. Without a template, a starter main reactor is written.
func (a *App) Init(ctx context.Context, opts InitOptions) error {
	dir, err := filepath.Abs(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve project directory")
	}
	if config.HasManifest(dir) {
		return zerr.With(zerr.Wrap(domain.ErrManifestExists, dir), "dir", dir)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(dir)
	}
	if !config.ValidAppName(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidAppName, name), "app", name)
	}

	if opts.Template != "" {
		a.logger.Info(fmt.Sprintf("cloning %s", opts.Template))
		if err := a.clone(ctx, opts.Template, dir); err != nil {
			return err
		}
		if config.HasManifest(dir) {
			a.logger.Info(fmt.Sprintf("initialized %s from template", name))
			return nil
		}
	} else if err := writeStarter(dir); err != nil {
		return err
	}

	path, err := config.WriteManifest(dir, config.NewManifest(name))
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("created %s", path))
	return nil
}

func writeStarter(dir string) error {
	path := filepath.Join(dir, domain.DefaultMainReactor)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create source directory"), "path", path)
	}
	if err := os.WriteFile(path, []byte(StarterReactor), filePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write main reactor"), "path", path)
	}
	return nil
}

type formatter interface {
	SetFormat(format string)
}

// SetLogFormat switches the logger to "pretty" or "json" output when it supports both.
func (a *App) SetLogFormat(format string) {
	if f, ok := a.logger.(formatter); ok {
		f.SetFormat(format)
	}
}
