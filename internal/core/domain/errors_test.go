package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/lingo/internal/core/domain"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *domain.BuildError
		want string
	}{
		{
			name: "exit code",
			err:  &domain.BuildError{Kind: domain.KindProcessFailure, App: "a", Step: domain.StepCompile, ExitCode: 2},
			want: "a: compile failed (exit 2): external process failure",
		},
		{
			name: "cause",
			err: &domain.BuildError{
				Kind: domain.KindToolNotFound, App: "a", Step: domain.StepCodegen, ExitCode: -1,
				Err: errors.New("lfc missing"),
			},
			want: "a: codegen failed: lfc missing",
		},
		{
			name: "no process",
			err:  &domain.BuildError{Kind: domain.KindFilesystem, App: "b", Step: domain.StepRename, ExitCode: -1},
			want: "b: rename failed: filesystem error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestBuildError_IsMatchesKind(t *testing.T) {
	kinds := map[domain.ErrorKind]error{
		domain.KindProcessFailure:  domain.ErrExternalProcessFailed,
		domain.KindToolNotFound:    domain.ErrToolNotFound,
		domain.KindFilesystem:      domain.ErrFilesystem,
		domain.KindUpstreamFailure: domain.ErrNotAttempted,
		domain.KindUnsupported:     domain.ErrUnsupportedCommand,
		domain.KindCanceled:        domain.ErrCanceled,
	}
	for kind, sentinel := range kinds {
		err := &domain.BuildError{Kind: kind, App: "a", Step: domain.StepCompile}
		assert.ErrorIs(t, err, sentinel, kind.String())
		if kind != domain.KindToolNotFound {
			assert.NotErrorIs(t, err, domain.ErrToolNotFound, kind.String())
		}
	}
}

func TestBuildError_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := &domain.BuildError{Kind: domain.KindFilesystem, App: "a", Step: domain.StepInstall, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, domain.ErrFilesystem)
}

func TestCompositeError(t *testing.T) {
	inner := domain.NewCompositeError(processErr("c"), nil, processErr("a"))
	composite := domain.NewCompositeError(processErr("b"), inner)

	assert.Len(t, composite.Errs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, composite.Names())
	assert.Equal(t,
		"3 failures: a: compile failed (exit 1): external process failure; "+
			"b: compile failed (exit 1): external process failure; "+
			"c: compile failed (exit 1): external process failure",
		composite.Error())
	assert.ErrorIs(t, composite, domain.ErrExternalProcessFailed)

	var be *domain.BuildError
	assert.ErrorAs(t, composite, &be)
	assert.Equal(t, "a", be.App)

	single := domain.NewCompositeError(errors.New("boom"))
	assert.Equal(t, "1 failure: boom", single.Error())
	assert.Empty(t, single.Names())
}

func TestUnknownAppNamesError(t *testing.T) {
	err := &domain.UnknownAppNamesError{Names: []string{"x", "y"}}
	assert.ErrorIs(t, err, domain.ErrUnknownAppNames)
	assert.Equal(t, "unknown app names: x, y", err.Error())
}
