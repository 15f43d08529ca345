package config

// Manifest represents the structure of Lingo.toml and lingo.yaml.
type Manifest struct {
	Package PackageDTO `toml:"package" yaml:"package"`
	Apps    []AppDTO   `toml:"app" yaml:"app"`
}

// PackageDTO represents the [package] table.
type PackageDTO struct {
	Name     string   `toml:"name" yaml:"name"`
	Version  string   `toml:"version" yaml:"version"`
	Authors  []string `toml:"authors,omitempty" yaml:"authors,omitempty"`
	License  string   `toml:"license,omitempty" yaml:"license,omitempty"`
	Homepage string   `toml:"homepage,omitempty" yaml:"homepage,omitempty"`
}

// AppDTO represents one [[app]] entry.
type AppDTO struct {
	Name       string         `toml:"name" yaml:"name"`
	Main       string         `toml:"main,omitempty" yaml:"main,omitempty"`
	Target     string         `toml:"target,omitempty" yaml:"target,omitempty"`
	Platform   string         `toml:"platform,omitempty" yaml:"platform,omitempty"`
	Properties map[string]any `toml:"properties,omitempty" yaml:"properties,omitempty"`
}
