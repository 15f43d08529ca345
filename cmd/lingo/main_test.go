package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/lingo/internal/app"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/lingo/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func noWhich(name string) (string, error) {
	return "", domain.ErrToolNotFound
}

func noClone(context.Context, string, string) error {
	return domain.ErrTemplateCloneFailed
}

func newApp(ctrl *gomock.Controller, loader ports.ConfigLoader, log ports.Logger) *app.App {
	return app.New(
		loader,
		mocks.NewMockCodeGenerator(ctrl),
		mocks.NewMockProcessRunner(ctrl),
		noWhich,
		noClone,
		log,
	).WithOutput(io.Discard, io.Discard)
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := newApp(ctrl, mocks.NewMockConfigLoader(ctrl), mockLogger)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:      application,
			Logger:   mockLogger,
			Settings: domain.DefaultSettings(),
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_PreflightErrorIsLogged verifies that errors raised before any app
// starts are handed to the logger.
func TestRun_PreflightErrorIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	mockLoader.EXPECT().Load(".").Return(nil, domain.ErrManifestNotFound)
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrManifestNotFound)
	})

	application := newApp(ctrl, mockLoader, mockLogger)
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger, Settings: domain.DefaultSettings()}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"build"}, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_BuildFailureIsNotLogged verifies that per-app failures only show up in the report.
func TestRun_BuildFailureIsNotLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	generator := mocks.NewMockCodeGenerator(ctrl)

	root := t.TempDir()
	cfg := &domain.Config{Root: root, Apps: []*domain.App{{
		Name:        "hello",
		RootPath:    root,
		OutputRoot:  domain.AppOutputRoot(root, "hello"),
		MainReactor: filepath.Join(root, domain.DefaultMainReactor),
		Target:      domain.DefaultTarget,
	}}}
	mockLoader.EXPECT().Load(".").Return(cfg, nil)
	generator.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.BuildError{Kind: domain.KindProcessFailure, App: "hello", Step: domain.StepCodegen, ExitCode: 1})

	lfc := filepath.Join(root, "lfc")
	if err := os.WriteFile(lfc, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	application := app.New(mockLoader, generator, mocks.NewMockProcessRunner(ctrl), noWhich, noClone, mockLogger).
		WithOutput(io.Discard, io.Discard)
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger, Settings: domain.DefaultSettings()}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"build", "--no-compile", "--lfc", lfc}, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_AppliesOptions verifies that options are applied to the app before execution.
func TestRun_AppliesOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	application := newApp(ctrl, mocks.NewMockConfigLoader(ctrl), mockLogger)

	dir := t.TempDir()
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger, Settings: domain.DefaultSettings()}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"init", "--name", "hello"}, io.Discard, provider, func(a *app.App) {
		a.WithWorkDir(dir)
	})
	assert.Equal(t, 0, exitCode)
	assert.FileExists(t, filepath.Join(dir, domain.ManifestFileName))
}
