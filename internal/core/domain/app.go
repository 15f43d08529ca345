package domain

import (
	"path/filepath"
	"strings"
)

const (
	// ManifestFileName is the name of the TOML project manifest.
	ManifestFileName = "Lingo.toml"
	// ManifestYAMLFileName is the name of the YAML project manifest.
	ManifestYAMLFileName = "lingo.yaml"

	// SrcGenDirName is the directory the code generator writes into, relative to the project root.
	SrcGenDirName = "src-gen"
	// OutputDirName is the directory holding per-app output roots, relative to the project root.
	OutputDirName = "target"

	// DefaultMainReactor is the entry compilation unit used when an app does not declare one.
	DefaultMainReactor = "src/Main.lf"
	// DefaultTarget is the target language used when an app does not declare one.
	DefaultTarget = "Cpp"
	// DefaultPlatform is the platform used when an app does not declare one.
	DefaultPlatform = "Native"
)

// App is a read-only view of one buildable unit declared in the manifest.
// It is owned by the Config and only borrowed by the engine for a single command.
type App struct {
	// Name identifies the app and is unique within a manifest.
	Name string
	// RootPath is the absolute project root.
	RootPath string
	// OutputRoot receives the build tree and the installed executable.
	OutputRoot string
	// MainReactor is the absolute path of the entry compilation unit.
	MainReactor string
	// Target is the target language of the generated code (e.g. "Cpp").
	Target string
	// Platform is the execution platform (e.g. "Native").
	Platform string
	// Properties are caller-supplied generator property overrides.
	Properties map[string]any
}

// SrcGenDir returns the directory the code generator writes its sources into.
func (a *App) SrcGenDir() string {
	return filepath.Join(a.RootPath, SrcGenDirName)
}

// BuildDir returns the native build system's working directory.
func (a *App) BuildDir() string {
	return filepath.Join(a.OutputRoot, "build")
}

// BinDir returns the directory executables are installed into.
func (a *App) BinDir() string {
	return filepath.Join(a.OutputRoot, "bin")
}

// ExecutablePath returns the final, renamed executable of the app.
func (a *App) ExecutablePath() string {
	return filepath.Join(a.BinDir(), a.Name)
}

// TargetName returns the build-system target derived from the main reactor's file stem.
func (a *App) TargetName() string {
	base := filepath.Base(a.MainReactor)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BackendKind selects the native build system for the app from its target language.
func (a *App) BackendKind() (BackendKind, bool) {
	switch strings.ToLower(a.Target) {
	case "cpp", "c":
		return BackendCMake, true
	default:
		return "", false
	}
}

// AppOutputRoot returns the app-scoped output root below a project root.
func AppOutputRoot(root, name string) string {
	return filepath.Join(root, OutputDirName, name)
}

// BackendKind enumerates the supported native build systems.
type BackendKind string

const (
	// BackendCMake drives CMake's configure, build and install steps.
	BackendCMake BackendKind = "cmake"
)

// PackageInfo describes the project as a whole.
type PackageInfo struct {
	Name     string
	Version  string
	Authors  []string
	License  string
	Homepage string
}

// Config is the resolved project manifest.
type Config struct {
	// Path is the manifest file the config was read from.
	Path string
	// Root is the absolute project root (the manifest's directory).
	Root    string
	Package PackageInfo
	Apps    []*App
}

// App looks up an app by name.
func (c *Config) App(name string) (*App, bool) {
	for _, app := range c.Apps {
		if app.Name == name {
			return app, true
		}
	}
	return nil, false
}

// Select returns the apps named in names, in manifest order.
// An empty selection yields every app. Every unknown name is reported at once.
func (c *Config) Select(names []string) ([]*App, error) {
	if len(names) == 0 {
		return append([]*App(nil), c.Apps...), nil
	}

	wanted := make(map[string]struct{}, len(names))
	var unknown []string
	for _, name := range names {
		if _, seen := wanted[name]; seen {
			continue
		}
		wanted[name] = struct{}{}
		if _, ok := c.App(name); !ok {
			unknown = append(unknown, name)
		}
	}

	if len(unknown) > 0 {
		return nil, &UnknownAppNamesError{Names: unknown}
	}

	selected := make([]*App, 0, len(wanted))
	for _, app := range c.Apps {
		if _, ok := wanted[app.Name]; ok {
			selected = append(selected, app)
		}
	}
	return selected, nil
}
