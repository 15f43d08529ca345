// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Invocation describes one external process.
type Invocation struct {
	// Path is the executable, either absolute or looked up on PATH.
	Path string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is appended to the inherited environment in "KEY=VALUE" form.
	Env []string
	// Output receives a live copy of the combined output, if set.
	Output io.Writer
	// Interactive attaches the process to a pseudo-terminal so it sees a terminal.
	Interactive bool
}

// ProcessResult is the outcome of a process that ran to completion.
type ProcessResult struct {
	ExitCode int
	// Output is the captured combined stdout and stderr.
	Output []byte
}

// Success reports whether the process exited with status zero.
func (r *ProcessResult) Success() bool {
	return r.ExitCode == 0
}

// ProcessRunner runs external tools.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type ProcessRunner interface {
	// Run starts the process and blocks until it exits.
	//
	// A non-zero exit status is reported through ProcessResult, not as an error.
	// The error is reserved for processes that could not be started at all;
	// a missing executable yields an error matching domain.ErrToolNotFound.
	Run(ctx context.Context, inv Invocation) (*ProcessResult, error)
}
