// Package dispatcher is the entry point of the build engine.
//
// It validates the requested apps against the manifest, resolves external
// tools, hands each app to the backend matching its target language, and
// combines every backend's outcome into one batch result.
package dispatcher

import (
	"context"
	"errors"
	"os"
	"slices"

	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/zerr"
)

// GeneratorName is the code generator looked up on PATH when no explicit path is given.
const GeneratorName = "lfc"

// Variant is one native build system together with the tools it needs.
type Variant struct {
	Backend ports.Backend
	Tools   []string
}

// Variants holds one entry per supported build system.
type Variants struct {
	CMake Variant
}

func (v Variants) lookup(kind domain.BackendKind) (Variant, error) {
	switch kind {
	case domain.BackendCMake:
		if v.CMake.Backend != nil {
			return v.CMake, nil
		}
	}
	return Variant{}, zerr.Wrap(domain.ErrUnsupportedTarget, string(kind))
}

// Request is one command applied to a selection of apps.
type Request struct {
	Command domain.CommandSpec
	// AppNames selects apps by name. Empty selects every app of the manifest.
	AppNames []string
}

// Dispatcher coordinates a single command. It holds no per-command state.
type Dispatcher struct {
	variants    Variants
	which       ports.Which
	runner      ports.ProcessRunner
	tracer      ports.Tracer
	interactive bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithInteractive runs executables of the run command on a pseudo-terminal.
func WithInteractive(interactive bool) Option {
	return func(d *Dispatcher) {
		d.interactive = interactive
	}
}

// New creates a Dispatcher.
func New(variants Variants, which ports.Which, runner ports.ProcessRunner, tracer ports.Tracer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		variants: variants,
		which:    which,
		runner:   runner,
		tracer:   tracer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type group struct {
	variant Variant
	apps    []*domain.App
}

// Dispatch runs req against cfg.
//
// Pre-flight failures (unknown app names, missing tools, unsupported targets,
// invalid options) are returned as an error before any work starts. Per-app
// failures are reported through the returned results only.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg *domain.Config, req Request) (*domain.BatchBuildResults, error) {
	apps, err := cfg.Select(req.AppNames)
	if err != nil {
		return nil, err
	}

	cmd, err := d.prepare(req.Command)
	if err != nil {
		return nil, err
	}

	groups, err := d.group(apps)
	if err != nil {
		return nil, err
	}

	if compiles(cmd) {
		if err := d.preflight(groups); err != nil {
			return nil, err
		}
	}

	d.tracer.EmitPlan(ctx, domain.CommandName(cmd), names(apps))

	results := domain.NewBatchBuildResults(apps)
	for _, g := range groups {
		batch, err := domain.NewBatchCommand(cmd, g.apps)
		if err != nil {
			return nil, err
		}
		results.Absorb(g.variant.Backend.Execute(ctx, batch))
	}

	if run, ok := cmd.(domain.Run); ok {
		d.execute(ctx, results, run)
	}
	return results, nil
}

// prepare resolves the generator and validates the build options of cmd.
func (d *Dispatcher) prepare(cmd domain.CommandSpec) (domain.CommandSpec, error) {
	switch c := cmd.(type) {
	case domain.Build:
		opts, err := d.resolveOptions(c.Options)
		if err != nil {
			return nil, err
		}
		c.Options = opts
		return c, nil
	case domain.Run:
		opts, err := d.resolveOptions(c.Options)
		if err != nil {
			return nil, err
		}
		// Running requires an executable.
		opts.CompileTargetCode = true
		c.Options = opts
		return c, nil
	case domain.Clean:
		return c, nil
	default:
		return nil, domain.ErrUnsupportedCommand
	}
}

func (d *Dispatcher) resolveOptions(opts domain.BuildCommandOptions) (domain.BuildCommandOptions, error) {
	if err := opts.Validate(); err != nil {
		return opts, err
	}

	path, err := d.resolveGenerator(opts.GeneratorExecPath)
	if err != nil {
		return opts, err
	}
	opts.GeneratorExecPath = path
	return opts, nil
}

func (d *Dispatcher) resolveGenerator(explicit string) (string, error) {
	if explicit == "" {
		return d.which(GeneratorName)
	}
	info, err := os.Stat(explicit)
	if err != nil || info.IsDir() {
		return "", zerr.Wrap(domain.ErrToolNotFound, GeneratorName+" at "+explicit)
	}
	return explicit, nil
}

// group partitions apps by build system, keeping first-appearance order.
func (d *Dispatcher) group(apps []*domain.App) ([]*group, error) {
	var groups []*group
	index := make(map[domain.BackendKind]*group)
	for _, app := range apps {
		kind, ok := app.BackendKind()
		if !ok {
			err := zerr.Wrap(domain.ErrUnsupportedTarget, app.Name)
			return nil, zerr.With(err, "target", app.Target)
		}
		g, ok := index[kind]
		if !ok {
			variant, err := d.variants.lookup(kind)
			if err != nil {
				return nil, err
			}
			g = &group{variant: variant}
			index[kind] = g
			groups = append(groups, g)
		}
		g.apps = append(g.apps, app)
	}
	return groups, nil
}

// compiles reports whether cmd invokes the native build systems.
func compiles(cmd domain.CommandSpec) bool {
	switch c := cmd.(type) {
	case domain.Build:
		return c.Options.CompileTargetCode
	case domain.Run:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) preflight(groups []*group) error {
	var checked []string
	for _, g := range groups {
		for _, tool := range g.variant.Tools {
			if slices.Contains(checked, tool) {
				continue
			}
			checked = append(checked, tool)
			if _, err := d.which(tool); err != nil {
				return err
			}
		}
	}
	return nil
}

// execute runs the installed executable of every successfully built app.
func (d *Dispatcher) execute(ctx context.Context, results *domain.BatchBuildResults, run domain.Run) {
	failed := results.Overall() != domain.AllSuccess
	for _, app := range results.Succeeded() {
		if failed && !run.Options.KeepGoing {
			results.Record(app, domain.NotAttempted(&domain.BuildError{
				Kind: domain.KindUpstreamFailure, App: app.Name, Step: domain.StepRun, ExitCode: -1,
			}))
			continue
		}
		if err := d.executeApp(ctx, app, run.Args); err != nil {
			failed = true
			results.Record(app, domain.Failed(err))
		}
	}
}

func (d *Dispatcher) executeApp(ctx context.Context, app *domain.App, args []string) error {
	ctx, span := d.tracer.Start(ctx, app.Name+": run", ports.WithApp(app.Name))
	defer span.End()

	res, err := d.runner.Run(ctx, ports.Invocation{
		Path:        app.ExecutablePath(),
		Args:        args,
		Dir:         app.RootPath,
		Output:      span,
		Interactive: d.interactive,
	})
	if err != nil {
		kind := domain.KindProcessFailure
		if errors.Is(err, domain.ErrToolNotFound) {
			kind = domain.KindToolNotFound
		}
		err = &domain.BuildError{Kind: kind, App: app.Name, Step: domain.StepRun, ExitCode: -1, Err: err}
		span.RecordError(err)
		return err
	}
	if !res.Success() {
		err = &domain.BuildError{
			Kind:     domain.KindProcessFailure,
			App:      app.Name,
			Step:     domain.StepRun,
			ExitCode: res.ExitCode,
			Output:   string(res.Output),
		}
		span.RecordError(err)
		return err
	}
	return nil
}

func names(apps []*domain.App) []string {
	out := make([]string, 0, len(apps))
	for _, app := range apps {
		out = append(out, app.Name)
	}
	return out
}
