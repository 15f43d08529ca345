// Package codegen runs the code generation step for a batch of apps.
package codegen

import (
	"context"
	"errors"
	"sync/atomic"

	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Scheduler invokes the code generator once per app under a bounded worker pool.
type Scheduler struct {
	generator ports.CodeGenerator
	tracer    ports.Tracer
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(generator ports.CodeGenerator, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		generator: generator,
		tracer:    tracer,
	}
}

// Run generates code for every app with at most opts.MaxThreads generator
// processes in flight.
//
// Without opts.KeepGoing the first failure stops new tasks from starting.
// Tasks already running finish and their results are kept. Apps that never
// started report as not attempted.
func (s *Scheduler) Run(ctx context.Context, apps []*domain.App, opts domain.BuildCommandOptions) *domain.BatchBuildResults {
	// One slot per app. Each task writes only its own index.
	slots := make([]*domain.BuildResult, len(apps))

	var (
		g      errgroup.Group
		failed atomic.Bool
	)
	g.SetLimit(max(opts.MaxThreads, 1))

	halted := func() bool {
		return ctx.Err() != nil || (!opts.KeepGoing && failed.Load())
	}

	for i, app := range apps {
		if halted() {
			break
		}
		// Go blocks while the pool is full.
		g.Go(func() error {
			if halted() {
				return nil
			}
			res := s.generate(ctx, app, opts)
			if !res.OK() {
				failed.Store(true)
			}
			slots[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	results := domain.NewBatchBuildResults(apps)
	for i, app := range apps {
		if slots[i] != nil {
			results.Record(app, *slots[i])
			continue
		}
		results.Record(app, skipped(ctx, app))
	}
	return results
}

func (s *Scheduler) generate(ctx context.Context, app *domain.App, opts domain.BuildCommandOptions) domain.BuildResult {
	ctx, span := s.tracer.Start(ctx, app.Name+": codegen", ports.WithApp(app.Name))
	defer span.End()

	if err := s.generator.Generate(ctx, app, opts, span); err != nil {
		err = attribute(app, err)
		span.RecordError(err)
		return domain.Failed(err)
	}
	return domain.Succeeded()
}

// attribute makes sure a generator failure names its app and step.
func attribute(app *domain.App, err error) error {
	var be *domain.BuildError
	if errors.As(err, &be) {
		return err
	}
	kind := domain.KindProcessFailure
	if errors.Is(err, domain.ErrToolNotFound) {
		kind = domain.KindToolNotFound
	}
	return &domain.BuildError{
		Kind:     kind,
		App:      app.Name,
		Step:     domain.StepCodegen,
		ExitCode: -1,
		Err:      err,
	}
}

func skipped(ctx context.Context, app *domain.App) domain.BuildResult {
	if err := ctx.Err(); err != nil {
		return domain.NotAttempted(&domain.BuildError{
			Kind:     domain.KindCanceled,
			App:      app.Name,
			Step:     domain.StepCodegen,
			ExitCode: -1,
			Err:      err,
		})
	}
	return domain.NotAttempted(&domain.BuildError{
		Kind:     domain.KindUpstreamFailure,
		App:      app.Name,
		Step:     domain.StepCodegen,
		ExitCode: -1,
	})
}
