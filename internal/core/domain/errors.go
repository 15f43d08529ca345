package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrUnknownAppNames is returned when the caller selects apps absent from the manifest.
	ErrUnknownAppNames = zerr.New("unknown app names")

	// ErrDuplicateAppName is returned when two apps share a name.
	ErrDuplicateAppName = zerr.New("duplicate app name")

	// ErrInvalidAppName is returned when an app name contains invalid characters.
	ErrInvalidAppName = zerr.New("app name can only contain alphanumeric characters, hyphens and underscores")

	// ErrMissingMainReactor is returned when an app has no main compilation unit.
	ErrMissingMainReactor = zerr.New("app is missing a main reactor")

	// ErrUnsupportedTarget is returned when no backend exists for an app's target language.
	ErrUnsupportedTarget = zerr.New("no backend supports target language")

	// ErrInvalidThreads is returned when the codegen concurrency bound is below one.
	ErrInvalidThreads = zerr.New("threads must be at least 1")

	// ErrInvalidProfile is returned for an unknown build profile name.
	ErrInvalidProfile = zerr.New("invalid build profile, expected 'debug' or 'release'")

	// ErrToolNotFound is returned when an external tool cannot be located.
	ErrToolNotFound = zerr.New("tool not found")

	// ErrExternalProcessFailed is returned when an external tool exits with a non-zero status.
	ErrExternalProcessFailed = zerr.New("external process failed")

	// ErrFilesystem is returned when creating, renaming or removing files fails.
	ErrFilesystem = zerr.New("filesystem operation failed")

	// ErrNotAttempted marks apps skipped because an earlier app failed under fail-fast.
	ErrNotAttempted = zerr.New("not attempted due to an upstream failure")

	// ErrUnsupportedCommand is returned when a backend cannot handle a command.
	ErrUnsupportedCommand = zerr.New("command not supported by backend")

	// ErrCanceled marks apps skipped because the command was canceled.
	ErrCanceled = zerr.New("canceled before start")

	// ErrBuildExecutionFailed is returned when at least one app of a batch failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrManifestNotFound is returned when no manifest exists in the cwd or its parents.
	ErrManifestNotFound = zerr.New("could not find Lingo.toml or lingo.yaml")

	// ErrManifestReadFailed is returned when the manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestParseFailed is returned when the manifest cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrManifestWriteFailed is returned when the manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrManifestExists is returned by init when a manifest is already present.
	ErrManifestExists = zerr.New("manifest already exists")

	// ErrTemplateCloneFailed is returned when the project template cannot be cloned.
	ErrTemplateCloneFailed = zerr.New("failed to clone project template")

	// ErrTemplateConflict is returned when a template entry already exists in the project directory.
	ErrTemplateConflict = zerr.New("template would overwrite existing file")

	// ErrSettingsLoadFailed is returned when the user settings cannot be read.
	ErrSettingsLoadFailed = zerr.New("failed to load settings")
)

// ErrorKind classifies per-app failures.
type ErrorKind int

const (
	// KindProcessFailure is a generator or build-system invocation that exited non-zero.
	KindProcessFailure ErrorKind = iota
	// KindToolNotFound is an external binary that could not be located.
	KindToolNotFound
	// KindFilesystem is a failed directory creation, rename or removal.
	KindFilesystem
	// KindUpstreamFailure marks an app not attempted after an earlier failure.
	KindUpstreamFailure
	// KindUnsupported is a command the backend does not implement.
	KindUnsupported
	// KindCanceled marks an app not started because the context was canceled.
	KindCanceled
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindProcessFailure:
		return "external process failure"
	case KindToolNotFound:
		return "tool not found"
	case KindFilesystem:
		return "filesystem error"
	case KindUpstreamFailure:
		return "upstream failure"
	case KindUnsupported:
		return "unsupported"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindToolNotFound:
		return ErrToolNotFound
	case KindFilesystem:
		return ErrFilesystem
	case KindUpstreamFailure:
		return ErrNotAttempted
	case KindUnsupported:
		return ErrUnsupportedCommand
	case KindCanceled:
		return ErrCanceled
	default:
		return ErrExternalProcessFailed
	}
}

// Step names a stage of an app's build.
type Step string

// Steps of the codegen, pipeline and run stages.
const (
	StepPreflight Step = "preflight"
	StepCodegen   Step = "codegen"
	StepConfigure Step = "configure"
	StepCompile   Step = "compile"
	StepInstall   Step = "install"
	StepRename    Step = "rename"
	StepClean     Step = "clean"
	StepRun       Step = "run"
)

// BuildError is an attributable per-app failure.
type BuildError struct {
	Kind ErrorKind
	App  string
	Step Step
	// ExitCode is the external tool's exit status, or -1 when no process ran to completion.
	ExitCode int
	// Output is the captured stdout and stderr of the failing tool.
	Output string
	Err    error
}

// Error implements error.
func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s failed", e.App, e.Step)
	if e.Kind == KindProcessFailure && e.ExitCode >= 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(": ")
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is matches the package sentinel of the error's kind.
func (e *BuildError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// UnknownAppNamesError lists every requested app that the manifest lacks.
type UnknownAppNamesError struct {
	Names []string
}

// Error implements error.
func (e *UnknownAppNamesError) Error() string {
	return ErrUnknownAppNames.Error() + ": " + strings.Join(e.Names, ", ")
}

// Is matches ErrUnknownAppNames.
func (e *UnknownAppNamesError) Is(target error) bool {
	return target == ErrUnknownAppNames
}

// CompositeError enumerates several failures, ordered by app then message.
type CompositeError struct {
	Errs []error
}

// NewCompositeError flattens nested composites and orders the failures deterministically.
func NewCompositeError(errs ...error) *CompositeError {
	var flat []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if c, ok := err.(*CompositeError); ok {
			flat = append(flat, c.Errs...)
			continue
		}
		flat = append(flat, err)
	}
	slices.SortStableFunc(flat, func(a, b error) int {
		if c := strings.Compare(appOf(a), appOf(b)); c != 0 {
			return c
		}
		return strings.Compare(a.Error(), b.Error())
	})
	return &CompositeError{Errs: flat}
}

// Names returns the distinct failing app names in sorted order.
func (e *CompositeError) Names() []string {
	var names []string
	for _, err := range e.Errs {
		if name := appOf(err); name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Error implements error.
func (e *CompositeError) Error() string {
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	noun := "failures"
	if len(parts) == 1 {
		noun = "failure"
	}
	return fmt.Sprintf("%d %s: %s", len(parts), noun, strings.Join(parts, "; "))
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *CompositeError) Unwrap() []error {
	return e.Errs
}

// appOf returns the app a failure is attributed to, or "".
func appOf(err error) string {
	var be *BuildError
	if errors.As(err, &be) {
		return be.App
	}
	return ""
}
