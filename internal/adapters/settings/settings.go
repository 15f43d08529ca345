// Package settings loads user-level CLI defaults from the config directory and the environment.
package settings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	appDir   = "lingo"
	fileName = "settings.yaml"
	// EnvPrefix prefixes every environment override, e.g. LINGO_THREADS.
	EnvPrefix = "LINGO"
)

// Dir returns the settings directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appDir
	}
	return filepath.Join(home, ".config", appDir)
}

// File returns the path to the settings file.
func File() string {
	return filepath.Join(Dir(), fileName)
}

// Loader reads domain.Settings with viper.
type Loader struct {
	path string
}

// NewLoader creates a Loader for the default settings file.
func NewLoader() *Loader {
	return &Loader{path: File()}
}

// NewLoaderAt creates a Loader for an explicit settings file.
func NewLoaderAt(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the settings file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load merges defaults, the settings file and LINGO_* environment variables.
// A missing settings file is not an error.
func (l *Loader) Load() (domain.Settings, error) {
	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetConfigType("yaml")

	def := domain.DefaultSettings()
	v.SetDefault("lfc_path", def.LFCPath)
	v.SetDefault("threads", def.Threads)
	v.SetDefault("keep_going", def.KeepGoing)
	v.SetDefault("profile", def.Profile)
	v.SetDefault("log_format", def.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return def, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", l.path)
	}

	var s domain.Settings
	if err := v.Unmarshal(&s); err != nil {
		return def, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", l.path)
	}
	return s, nil
}
