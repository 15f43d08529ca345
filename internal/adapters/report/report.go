// Package report prints the per-app outcome of a batch.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/lingo/internal/ui/output"
	"go.trai.ch/lingo/internal/ui/style"
)

// TailLines is the number of captured output lines shown per failure.
const TailLines = 10

// Reporter implements ports.Reporter.
type Reporter struct {
	w io.Writer

	ok      lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	faint   lipgloss.Style
	bold    lipgloss.Style
}

var _ ports.Reporter = (*Reporter)(nil)

// New creates a Reporter writing to w, or stderr when w is nil.
func New(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stderr
	}

	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile())

	return &Reporter{
		w:       w,
		ok:      r.NewStyle().Foreground(style.Green),
		failed:  r.NewStyle().Foreground(style.Red),
		skipped: r.NewStyle().Foreground(style.Yellow),
		faint:   r.NewStyle().Foreground(style.Slate),
		bold:    r.NewStyle().Bold(true),
	}
}

// Report writes one line per app in batch order, the tail of each failure's
// captured output and a summary line.
func (r *Reporter) Report(command string, results *domain.BatchBuildResults) error {
	var b strings.Builder

	results.Each(func(app *domain.App, res domain.BuildResult) {
		switch res.Status {
		case domain.StatusSuccess:
			fmt.Fprintf(&b, "%s %s\n", r.ok.Render(style.Check), app.Name)
		case domain.StatusNotAttempted:
			fmt.Fprintf(&b, "%s %s: %s\n", r.skipped.Render(style.Skip), app.Name, skipReason(res.Err))
		case domain.StatusFailed:
			for _, err := range failures(res.Err) {
				fmt.Fprintf(&b, "%s %s: %s\n", r.failed.Render(style.Cross), app.Name, describe(err))
				r.writeOutput(&b, err)
			}
		}
	})

	fmt.Fprintf(&b, "\n%s\n", r.bold.Render(summary(command, results)))

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Reporter) writeOutput(b *strings.Builder, err error) {
	var be *domain.BuildError
	if !errors.As(err, &be) || strings.TrimSpace(be.Output) == "" {
		return
	}

	lines := strings.Split(strings.TrimRight(be.Output, "\n"), "\n")
	if hidden := len(lines) - TailLines; hidden > 0 {
		fmt.Fprintf(b, "    %s\n", r.faint.Render(fmt.Sprintf("… %d earlier lines", hidden)))
		lines = lines[hidden:]
	}
	for _, line := range lines {
		fmt.Fprintf(b, "    %s %s\n", r.faint.Render("│"), strings.TrimRight(line, "\r"))
	}
}

// failures flattens merged per-app errors.
func failures(err error) []error {
	var c *domain.CompositeError
	if errors.As(err, &c) {
		return c.Errs
	}
	return []error{err}
}

// describe renders a failure without repeating the app name.
func describe(err error) string {
	var be *domain.BuildError
	if !errors.As(err, &be) {
		if err == nil {
			return "failed"
		}
		return err.Error()
	}

	msg := string(be.Step) + " failed"
	switch {
	case be.Kind == domain.KindProcessFailure && be.ExitCode >= 0:
		return msg + fmt.Sprintf(" (exit %d)", be.ExitCode)
	case be.Err != nil:
		return msg + ": " + be.Err.Error()
	case be.Kind == domain.KindProcessFailure:
		return msg
	default:
		return msg + ": " + be.Kind.String()
	}
}

func skipReason(err error) string {
	var be *domain.BuildError
	if errors.As(err, &be) && be.Kind == domain.KindCanceled {
		return "not attempted (canceled)"
	}
	return "not attempted"
}

func summary(command string, results *domain.BatchBuildResults) string {
	parts := []string{fmt.Sprintf("%d succeeded", results.Count(domain.StatusSuccess))}
	if n := results.Count(domain.StatusFailed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if n := results.Count(domain.StatusNotAttempted); n > 0 {
		parts = append(parts, fmt.Sprintf("%d not attempted", n))
	}
	return fmt.Sprintf("%s: %s (%s)", command, strings.Join(parts, ", "), results.Overall())
}
