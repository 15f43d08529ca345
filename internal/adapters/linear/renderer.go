// Package linear renders build progress as prefixed, chronological lines.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/lingo/internal/ui/output"
	"go.trai.ch/lingo/internal/ui/style"
)

// prefixPalette colours task prefixes; a name always maps to the same colour.
var prefixPalette = []termenv.Color{
	termenv.ANSICyan,
	termenv.ANSIMagenta,
	termenv.ANSIBlue,
	termenv.ANSIYellow,
	termenv.ANSIBrightCyan,
	termenv.ANSIBrightMagenta,
	termenv.ANSIBrightBlue,
}

// Renderer implements ports.Renderer. Process output goes to stdout, lifecycle
// lines to stderr. Root spans (the command itself) only carry output.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	out    *termenv.Output

	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	name    string
	root    bool
	started time.Time
	partial bytes.Buffer
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer creates a Renderer. Nil writers select stdout and stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		out:    output.NewWithProfile(stderr, output.ColorProfileANSI),
		tasks:  make(map[string]*task),
	}
}

// Start does nothing; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes partial lines of unfinished tasks.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		r.flushLocked(t)
	}
	return nil
}

// OnPlanEmit announces the apps of a command.
func (r *Renderer) OnPlanEmit(command string, apps []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	noun := "apps"
	if len(apps) == 1 {
		noun = "app"
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s %d %s: %s\n",
		r.out.String(style.Dot).Foreground(output.Color(style.Accent)).String(),
		command, len(apps), noun, strings.Join(apps, ", "))
}

// OnTaskStart registers a span and prints its start line.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &task{name: name, root: parentID == "", started: startTime}
	r.tasks[spanID] = t
	if t.root {
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefix(name))
}

// OnTaskLog prints complete lines of span output, holding back a trailing partial line.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[spanID]
	if !ok {
		return
	}

	t.partial.Write(data)
	for {
		buffered := t.partial.Bytes()
		i := bytes.IndexByte(buffered, '\n')
		if i < 0 {
			return
		}
		line := bytes.Clone(buffered[:i])
		t.partial.Next(i + 1)
		r.printLineLocked(t.name, line)
	}
}

// OnTaskComplete flushes the span's output and prints its outcome.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[spanID]
	if !ok {
		return
	}
	delete(r.tasks, spanID)

	r.flushLocked(t)
	if t.root {
		return
	}

	elapsed := endTime.Sub(t.started).Round(time.Millisecond)
	if err != nil {
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n",
			r.prefix(t.name), r.out.String(style.Cross).Foreground(output.Color(style.Red)).String(), elapsed, err)
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n",
		r.prefix(t.name), r.out.String(style.Check).Foreground(output.Color(style.Green)).String(), elapsed)
}

// flushLocked must be called with mu held.
func (r *Renderer) flushLocked(t *task) {
	if t.partial.Len() == 0 {
		return
	}
	r.printLineLocked(t.name, t.partial.Bytes())
	t.partial.Reset()
}

// printLineLocked must be called with mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}

func (r *Renderer) prefix(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(appOf(name)))
	color := prefixPalette[h.Sum32()%uint32(len(prefixPalette))]
	return r.out.String("[" + name + "]").Foreground(color).String()
}

// appOf returns the app part of a "<app>: <step>" span name.
func appOf(name string) string {
	if app, _, ok := strings.Cut(name, ": "); ok {
		return app
	}
	return name
}
