// Package detector inspects the terminal environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// PTYMode controls whether executed binaries get a pseudo-terminal.
type PTYMode int

const (
	// PTYAuto attaches a pseudo-terminal only in interactive sessions.
	PTYAuto PTYMode = iota
	// PTYAlways always attaches a pseudo-terminal.
	PTYAlways
	// PTYNever never attaches a pseudo-terminal.
	PTYNever
)

// IsCI reports whether a CI environment variable is set.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// IsInteractive reports whether stdin and stdout are terminals outside CI.
func IsInteractive() bool {
	if IsCI() {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// ParsePTYMode maps a flag value to a PTYMode. Unknown values mean auto.
func ParsePTYMode(flag string) PTYMode {
	switch flag {
	case "always", "on", "true":
		return PTYAlways
	case "never", "off", "false":
		return PTYNever
	default:
		return PTYAuto
	}
}

// ResolvePTY applies mode to the detected interactivity.
func ResolvePTY(mode PTYMode, interactive bool) bool {
	switch mode {
	case PTYAlways:
		return true
	case PTYNever:
		return false
	default:
		return interactive
	}
}
