package domain

import "runtime"

// Settings are user-level defaults for CLI flags.
type Settings struct {
	// LFCPath overrides the code generator location.
	LFCPath string `mapstructure:"lfc_path"`
	// Threads bounds concurrent code generation.
	Threads int `mapstructure:"threads"`
	// KeepGoing continues after failures by default.
	KeepGoing bool `mapstructure:"keep_going"`
	// Profile is "debug" or "release".
	Profile string `mapstructure:"profile"`
	// LogFormat is "pretty" or "json".
	LogFormat string `mapstructure:"log_format"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Threads:   runtime.NumCPU(),
		Profile:   ProfileDebug.String(),
		LogFormat: "pretty",
	}
}
