package codegen_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/lingo/internal/core/ports/mocks"
	"go.trai.ch/lingo/internal/engine/codegen"
	"go.uber.org/mock/gomock"
)

// setupScheduler creates a scheduler with a permissive tracer.
func setupScheduler(t *testing.T) (*codegen.Scheduler, *mocks.MockCodeGenerator) {
	t.Helper()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockCodeGenerator(ctrl)
	tracer := mocks.NewMockTracer(ctrl)

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return len(p), nil
	}).AnyTimes()

	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	return codegen.NewScheduler(generator, tracer), generator
}

func makeApps(names ...string) []*domain.App {
	apps := make([]*domain.App, 0, len(names))
	for _, name := range names {
		apps = append(apps, &domain.App{
			Name:        name,
			RootPath:    "/project",
			OutputRoot:  domain.AppOutputRoot("/project", name),
			MainReactor: "/project/src/Main.lf",
			Target:      "Cpp",
		})
	}
	return apps
}

func appNamed(name string) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		app, ok := x.(*domain.App)
		return ok && app.Name == name
	})
}

func TestScheduler_AllSucceed(t *testing.T) {
	s, generator := setupScheduler(t)
	apps := makeApps("a", "b", "c")

	generator.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)

	results := s.Run(context.Background(), apps, domain.BuildCommandOptions{MaxThreads: 2})

	assert.Equal(t, domain.AllSuccess, results.Overall())
	assert.Equal(t, 3, results.Count(domain.StatusSuccess))
	require.NoError(t, results.Err())
}

func TestScheduler_KeepGoingRunsEveryApp(t *testing.T) {
	s, generator := setupScheduler(t)
	apps := makeApps("a", "b", "c")

	genErr := &domain.BuildError{
		Kind:     domain.KindProcessFailure,
		App:      "a",
		Step:     domain.StepCodegen,
		ExitCode: 1,
		Output:   "syntax error",
	}
	generator.EXPECT().Generate(gomock.Any(), appNamed("a"), gomock.Any(), gomock.Any()).Return(genErr)
	generator.EXPECT().Generate(gomock.Any(), appNamed("b"), gomock.Any(), gomock.Any()).Return(nil)
	generator.EXPECT().Generate(gomock.Any(), appNamed("c"), gomock.Any(), gomock.Any()).Return(nil)

	results := s.Run(context.Background(), apps, domain.BuildCommandOptions{MaxThreads: 1, KeepGoing: true})

	a, _ := results.Result("a")
	assert.Equal(t, domain.StatusFailed, a.Status)
	require.ErrorIs(t, a.Err, domain.ErrExternalProcessFailed)

	for _, name := range []string{"b", "c"} {
		r, ok := results.Result(name)
		require.True(t, ok)
		assert.True(t, r.OK(), name)
	}
	assert.Equal(t, domain.PartialFailure, results.Overall())
}

func TestScheduler_FailFastMarksLaterAppsNotAttempted(t *testing.T) {
	s, generator := setupScheduler(t)
	apps := makeApps("a", "b", "c")

	generator.EXPECT().Generate(gomock.Any(), appNamed("a"), gomock.Any(), gomock.Any()).
		Return(errors.New("boom")).Times(1)

	results := s.Run(context.Background(), apps, domain.BuildCommandOptions{MaxThreads: 1})

	a, _ := results.Result("a")
	assert.Equal(t, domain.StatusFailed, a.Status)

	var be *domain.BuildError
	require.ErrorAs(t, a.Err, &be)
	assert.Equal(t, "a", be.App)
	assert.Equal(t, domain.StepCodegen, be.Step)

	for _, name := range []string{"b", "c"} {
		r, _ := results.Result(name)
		assert.Equal(t, domain.StatusNotAttempted, r.Status, name)
		require.ErrorIs(t, r.Err, domain.ErrNotAttempted)
	}
	assert.Equal(t, domain.TotalFailure, results.Overall())
}

func TestScheduler_MissingGeneratorIsToolNotFound(t *testing.T) {
	s, generator := setupScheduler(t)
	apps := makeApps("a")

	generator.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ErrToolNotFound)

	results := s.Run(context.Background(), apps, domain.BuildCommandOptions{MaxThreads: 1})

	r, _ := results.Result("a")
	var be *domain.BuildError
	require.ErrorAs(t, r.Err, &be)
	assert.Equal(t, domain.KindToolNotFound, be.Kind)
	require.ErrorIs(t, r.Err, domain.ErrToolNotFound)
}

func TestScheduler_CanceledContextStartsNothing(t *testing.T) {
	s, _ := setupScheduler(t)
	apps := makeApps("a", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := s.Run(ctx, apps, domain.BuildCommandOptions{MaxThreads: 4, KeepGoing: true})

	results.Each(func(app *domain.App, r domain.BuildResult) {
		assert.Equal(t, domain.StatusNotAttempted, r.Status, app.Name)
		require.ErrorIs(t, r.Err, domain.ErrCanceled)
		require.ErrorIs(t, r.Err, context.Canceled)
	})
}

func TestScheduler_RespectsMaxThreads(t *testing.T) {
	for _, limit := range []int{1, 3, 8} {
		t.Run("", func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				s, generator := setupScheduler(t)
				apps := makeApps("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")

				var inFlight, peak atomic.Int32
				generator.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, _ *domain.App, _ domain.BuildCommandOptions, _ io.Writer) error {
						n := inFlight.Add(1)
						for {
							p := peak.Load()
							if n <= p || peak.CompareAndSwap(p, n) {
								break
							}
						}
						time.Sleep(time.Second)
						inFlight.Add(-1)
						return nil
					},
				).Times(len(apps))

				results := s.Run(context.Background(), apps, domain.BuildCommandOptions{MaxThreads: limit})

				assert.Equal(t, domain.AllSuccess, results.Overall())
				assert.LessOrEqual(t, int(peak.Load()), limit)
				assert.Equal(t, int32(min(limit, len(apps))), peak.Load())
			})
		})
	}
}

func TestScheduler_FailFastLetsStartedTasksFinish(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s, generator := setupScheduler(t)
		apps := makeApps("a", "b", "c", "d")

		// a fails while b is still running; b's result is kept.
		generator.EXPECT().Generate(gomock.Any(), appNamed("a"), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, *domain.App, domain.BuildCommandOptions, io.Writer) error {
				time.Sleep(100 * time.Millisecond)
				return errors.New("boom")
			},
		)
		generator.EXPECT().Generate(gomock.Any(), appNamed("b"), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, *domain.App, domain.BuildCommandOptions, io.Writer) error {
				time.Sleep(time.Second)
				return nil
			},
		)

		results := s.Run(context.Background(), apps, domain.BuildCommandOptions{MaxThreads: 2})

		b, _ := results.Result("b")
		assert.True(t, b.OK())
		for _, name := range []string{"c", "d"} {
			r, _ := results.Result(name)
			assert.Equal(t, domain.StatusNotAttempted, r.Status, name)
		}
	})
}
