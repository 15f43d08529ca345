package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// BuildProfile selects backend-specific optimisation flags.
type BuildProfile int

const (
	// ProfileDebug builds without optimisations.
	ProfileDebug BuildProfile = iota
	// ProfileRelease builds with optimisations.
	ProfileRelease
)

// String returns the lower-case profile name.
func (p BuildProfile) String() string {
	if p == ProfileRelease {
		return "release"
	}
	return "debug"
}

// ParseBuildProfile parses "debug" or "release" case-insensitively.
func ParseBuildProfile(s string) (BuildProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return ProfileDebug, nil
	case "release":
		return ProfileRelease, nil
	default:
		return ProfileDebug, zerr.With(zerr.Wrap(ErrInvalidProfile, s), "profile", s)
	}
}

// BuildCommandOptions carries everything a backend needs for one build.
type BuildCommandOptions struct {
	Profile BuildProfile
	// CompileTargetCode stops the build after code generation when false.
	CompileTargetCode bool
	// GeneratorExecPath is the resolved path of the code generator.
	GeneratorExecPath string
	// MaxThreads bounds the number of concurrent generator processes.
	MaxThreads int
	// KeepGoing continues with remaining apps after a failure.
	KeepGoing bool
}

// Validate checks the option invariants.
func (o BuildCommandOptions) Validate() error {
	if o.MaxThreads < 1 {
		return zerr.With(zerr.Wrap(ErrInvalidThreads, "options"), "threads", o.MaxThreads)
	}
	return nil
}

// CommandSpec is the unit of work requested by the caller.
// The set of implementations is closed: Build, Clean and Run.
type CommandSpec interface {
	commandName() string
}

// Build generates and optionally compiles apps.
type Build struct {
	Options BuildCommandOptions
}

// Clean removes app output trees.
type Clean struct{}

// Run builds apps and then executes their installed binaries.
type Run struct {
	Options BuildCommandOptions
	// Args are passed through to every executed binary.
	Args []string
}

func (Build) commandName() string { return "build" }
func (Clean) commandName() string { return "clean" }
func (Run) commandName() string   { return "run" }

// CommandName returns the user-facing name of a command.
func CommandName(c CommandSpec) string {
	if c == nil {
		return ""
	}
	return c.commandName()
}

// BatchCommand pairs a command with the ordered apps it applies to.
type BatchCommand struct {
	Command CommandSpec
	Apps    []*App
}

// NewBatchCommand creates a BatchCommand, rejecting duplicate app names.
func NewBatchCommand(cmd CommandSpec, apps []*App) (BatchCommand, error) {
	seen := make(map[string]struct{}, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.Name]; ok {
			return BatchCommand{}, zerr.With(zerr.Wrap(ErrDuplicateAppName, app.Name), "app", app.Name)
		}
		seen[app.Name] = struct{}{}
	}
	return BatchCommand{Command: cmd, Apps: apps}, nil
}
