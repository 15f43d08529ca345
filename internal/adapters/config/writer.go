package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/zerr"
)

const filePerm = 0o644

// NewManifest returns the starter manifest for a project with a single app.
func NewManifest(name string) *Manifest {
	return &Manifest{
		Package: PackageDTO{
			Name:    name,
			Version: "0.1.0",
		},
		Apps: []AppDTO{{
			Name:     name,
			Main:     domain.DefaultMainReactor,
			Target:   domain.DefaultTarget,
			Platform: domain.DefaultPlatform,
		}},
	}
}

// WriteManifest writes manifest as Lingo.toml into dir and returns its path.
// An existing manifest is never overwritten.
func WriteManifest(dir string, manifest *Manifest) (string, error) {
	path := filepath.Join(dir, domain.ManifestFileName)
	if HasManifest(dir) {
		return "", zerr.With(zerr.Wrap(domain.ErrManifestExists, path), "dir", dir)
	}

	data, err := toml.Marshal(manifest)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", path)
	}
	return path, nil
}

// HasManifest reports whether dir itself holds a manifest. Parent directories are not searched.
func HasManifest(dir string) bool {
	return fileExists(filepath.Join(dir, domain.ManifestFileName)) ||
		fileExists(filepath.Join(dir, domain.ManifestYAMLFileName))
}
