// Package shell runs external processes for the build engine.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner implements ports.ProcessRunner using os/exec, or a pty for interactive runs.
type Runner struct{}

var _ ports.ProcessRunner = (*Runner)(nil)

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run starts the invocation and waits for it to exit.
func (r *Runner) Run(ctx context.Context, inv ports.Invocation) (*ports.ProcessResult, error) {
	executable, err := resolve(inv.Path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, executable, inv.Args...) //nolint:gosec // paths come from the manifest and resolved tools
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)

	captured := &lockedBuffer{}
	var out io.Writer = captured
	if inv.Output != nil {
		out = io.MultiWriter(captured, inv.Output)
	}

	if inv.Interactive {
		err = runPTY(cmd, out)
	} else {
		cmd.Stdout = out
		cmd.Stderr = out
		err = cmd.Run()
	}

	return exitResult(inv.Path, err, captured.Bytes())
}

func runPTY(cmd *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master returns EIO once the child has exited.
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	_ = ptmx.Close()
	<-ioDone
	return err
}

func exitResult(path string, err error, output []byte) (*ports.ProcessResult, error) {
	if err == nil {
		return &ports.ProcessResult{ExitCode: 0, Output: output}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ports.ProcessResult{ExitCode: exitErr.ExitCode(), Output: output}, nil
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return nil, zerr.With(zerr.Wrap(domain.ErrToolNotFound, path), "cause", err.Error())
	}
	return nil, zerr.With(zerr.Wrap(err, "failed to start process"), "path", path)
}

// resolve finds bare executable names on PATH. Paths are used as given.
func resolve(path string) (string, error) {
	if strings.ContainsRune(path, os.PathSeparator) {
		return path, nil
	}
	return Which(path)
}

// lockedBuffer is a bytes.Buffer safe for the concurrent writes of a pty copy loop.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}
