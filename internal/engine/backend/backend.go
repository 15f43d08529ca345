// Package backend drives one native build system over a batch of apps.
package backend

import (
	"context"
	"errors"

	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
)

// CodegenRunner runs the code generation pass for a batch.
type CodegenRunner interface {
	Run(ctx context.Context, apps []*domain.App, opts domain.BuildCommandOptions) *domain.BatchBuildResults
}

// Driver implements ports.Backend on top of a build Pipeline.
type Driver struct {
	kind     domain.BackendKind
	codegen  CodegenRunner
	pipeline ports.Pipeline
	tracer   ports.Tracer
}

var _ ports.Backend = (*Driver)(nil)

// New creates a Driver for the given build system.
func New(kind domain.BackendKind, codegen CodegenRunner, pipeline ports.Pipeline, tracer ports.Tracer) *Driver {
	return &Driver{
		kind:     kind,
		codegen:  codegen,
		pipeline: pipeline,
		tracer:   tracer,
	}
}

// Kind returns the build system the driver targets.
func (d *Driver) Kind() domain.BackendKind {
	return d.kind
}

// Tools lists the executables the driver's pipeline needs.
func (d *Driver) Tools() []string {
	return d.pipeline.Tools()
}

// Execute runs the batch command and returns one result per app.
func (d *Driver) Execute(ctx context.Context, batch domain.BatchCommand) *domain.BatchBuildResults {
	switch cmd := batch.Command.(type) {
	case domain.Build:
		return d.build(ctx, batch.Apps, cmd.Options)
	case domain.Run:
		return d.build(ctx, batch.Apps, cmd.Options)
	case domain.Clean:
		return d.clean(ctx, batch.Apps)
	default:
		return d.unsupported(batch)
	}
}

func (d *Driver) build(ctx context.Context, apps []*domain.App, opts domain.BuildCommandOptions) *domain.BatchBuildResults {
	// Generation always runs on its own first, even when compilation was requested.
	genOpts := opts
	genOpts.CompileTargetCode = false
	results := d.codegen.Run(ctx, apps, genOpts)

	if !opts.CompileTargetCode {
		return results
	}

	failed := results.Overall() != domain.AllSuccess
	for _, app := range apps {
		if r, _ := results.Result(app.Name); !r.OK() {
			continue
		}
		if err := ctx.Err(); err != nil {
			results.Record(app, domain.NotAttempted(&domain.BuildError{
				Kind: domain.KindCanceled, App: app.Name, Step: domain.StepConfigure, ExitCode: -1, Err: err,
			}))
			continue
		}
		if failed && !opts.KeepGoing {
			results.Record(app, domain.NotAttempted(&domain.BuildError{
				Kind: domain.KindUpstreamFailure, App: app.Name, Step: domain.StepConfigure, ExitCode: -1,
			}))
			continue
		}

		if err := d.runPipeline(ctx, app, opts); err != nil {
			failed = true
			results.Record(app, domain.Failed(err))
			continue
		}
		results.Record(app, domain.Succeeded())
	}
	return results
}

func (d *Driver) runPipeline(ctx context.Context, app *domain.App, opts domain.BuildCommandOptions) error {
	ctx, span := d.tracer.Start(ctx, app.Name+": build", ports.WithApp(app.Name))
	defer span.End()
	span.SetAttribute("lingo.backend", string(d.kind))
	span.SetAttribute("lingo.profile", opts.Profile.String())

	if err := d.pipeline.Build(ctx, app, opts); err != nil {
		err = attribute(app, domain.StepCompile, err)
		span.RecordError(err)
		return err
	}
	return nil
}

func (d *Driver) clean(ctx context.Context, apps []*domain.App) *domain.BatchBuildResults {
	results := domain.NewBatchBuildResults(apps)
	for _, app := range apps {
		results.Record(app, d.cleanApp(ctx, app))
	}
	return results
}

func (d *Driver) cleanApp(ctx context.Context, app *domain.App) domain.BuildResult {
	ctx, span := d.tracer.Start(ctx, app.Name+": clean", ports.WithApp(app.Name))
	defer span.End()

	if err := d.pipeline.Clean(ctx, app); err != nil {
		err = attribute(app, domain.StepClean, err)
		span.RecordError(err)
		return domain.Failed(err)
	}
	return domain.Succeeded()
}

func (d *Driver) unsupported(batch domain.BatchCommand) *domain.BatchBuildResults {
	results := domain.NewBatchBuildResults(batch.Apps)
	for _, app := range batch.Apps {
		results.Record(app, domain.Failed(&domain.BuildError{
			Kind:     domain.KindUnsupported,
			App:      app.Name,
			Step:     domain.StepPreflight,
			ExitCode: -1,
		}))
	}
	return results
}

// attribute makes sure a pipeline failure names its app and step.
func attribute(app *domain.App, step domain.Step, err error) error {
	var be *domain.BuildError
	if errors.As(err, &be) {
		return err
	}
	kind := domain.KindProcessFailure
	switch {
	case errors.Is(err, domain.ErrToolNotFound):
		kind = domain.KindToolNotFound
	case errors.Is(err, domain.ErrFilesystem):
		kind = domain.KindFilesystem
	}
	return &domain.BuildError{Kind: kind, App: app.Name, Step: step, ExitCode: -1, Err: err}
}
