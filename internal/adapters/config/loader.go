// Package config provides the manifest loader for lingo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for Lingo.toml and lingo.yaml.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

var validAppNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// ValidAppName reports whether name is usable as an app name.
func ValidAppName(name string) bool {
	return validAppNameRegex.MatchString(name)
}

// Load finds the manifest at or above cwd and resolves it into a domain.Config.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, err := l.findManifest(cwd)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := readManifest(path, &manifest); err != nil {
		return nil, err
	}

	return l.resolve(path, &manifest)
}

// DiscoverRoot returns the directory of the manifest found at or above cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, err := l.findManifest(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

func (l *Loader) findManifest(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	for {
		tomlPath := filepath.Join(currentDir, domain.ManifestFileName)
		yamlPath := filepath.Join(currentDir, domain.ManifestYAMLFileName)

		tomlFound := fileExists(tomlPath)
		yamlFound := fileExists(yamlPath)
		switch {
		case tomlFound && yamlFound:
			l.Logger.Warn(fmt.Sprintf("both %s and %s found in %s, using %s",
				domain.ManifestFileName, domain.ManifestYAMLFileName, currentDir, domain.ManifestFileName))
			return tomlPath, nil
		case tomlFound:
			return tomlPath, nil
		case yamlFound:
			return yamlPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrManifestNotFound, cwd), "cwd", cwd)
}

func readManifest(path string, manifest *Manifest) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the working directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}

	if filepath.Ext(path) == ".toml" {
		err = toml.Unmarshal(data, manifest)
	} else {
		err = yaml.Unmarshal(data, manifest)
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestParseFailed.Error()), "path", path)
	}
	return nil
}

func (l *Loader) resolve(path string, manifest *Manifest) (*domain.Config, error) {
	root := filepath.Dir(path)
	cfg := &domain.Config{
		Path: path,
		Root: root,
		Package: domain.PackageInfo{
			Name:     manifest.Package.Name,
			Version:  manifest.Package.Version,
			Authors:  manifest.Package.Authors,
			License:  manifest.Package.License,
			Homepage: manifest.Package.Homepage,
		},
	}

	if len(manifest.Apps) == 0 {
		l.Logger.Warn(fmt.Sprintf("%s declares no apps", filepath.Base(path)))
	}

	seen := make(map[string]bool, len(manifest.Apps))
	for i := range manifest.Apps {
		app, err := resolveApp(root, &manifest.Apps[i])
		if err != nil {
			return nil, err
		}
		if seen[app.Name] {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicateAppName, app.Name), "app", app.Name)
		}
		seen[app.Name] = true
		cfg.Apps = append(cfg.Apps, app)
	}

	return cfg, nil
}

func resolveApp(root string, dto *AppDTO) (*domain.App, error) {
	if !ValidAppName(dto.Name) {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidAppName, dto.Name), "app", dto.Name)
	}

	mainPath := valueOr(dto.Main, domain.DefaultMainReactor)
	if !filepath.IsAbs(mainPath) {
		mainPath = filepath.Join(root, mainPath)
	}
	if !fileExists(mainPath) {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingMainReactor, dto.Name), "app", dto.Name), "main", mainPath)
	}

	return &domain.App{
		Name:        dto.Name,
		RootPath:    root,
		OutputRoot:  domain.AppOutputRoot(root, dto.Name),
		MainReactor: mainPath,
		Target:      valueOr(dto.Target, domain.DefaultTarget),
		Platform:    valueOr(dto.Platform, domain.DefaultPlatform),
		Properties:  dto.Properties,
	}, nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
