package config

import (
	"time"
)

// DefaultAssetsBaseURL hosts the stylesheet and scripts generated pages reference.
const DefaultAssetsBaseURL = "https://raw.githubusercontent.com/jamescalam/autodocs/master/documentation/templates"

// Config represents the complete autodocs configuration.
// It can be loaded from .autodocs/config.yml with environment variable overrides.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Assets AssetsConfig `yaml:"assets" mapstructure:"assets"`
	Build  BuildConfig  `yaml:"build" mapstructure:"build"`
}

// PathsConfig defines which Python files to document and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include" validate:"min=1,dive,required"`
	Ignore  []string `yaml:"ignore" mapstructure:"ignore" validate:"dive,required"`
}

// OutputConfig defines where and how pages are written.
type OutputConfig struct {
	Dir        string   `yaml:"dir" mapstructure:"dir" validate:"required"`
	OnConflict string   `yaml:"on_conflict" mapstructure:"on_conflict"` // fail, overwrite or rename
	Formats    []string `yaml:"formats" mapstructure:"formats" validate:"min=1"`
}

// AssetsConfig controls downloading of the Bootstrap and jQuery files.
type AssetsConfig struct {
	Download       bool   `yaml:"download" mapstructure:"download"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"gte=0"`
}

// Timeout returns the per-request download timeout.
func (a AssetsConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	Workers int    `yaml:"workers" mapstructure:"workers"`
	Readme  bool   `yaml:"readme" mapstructure:"readme"`
	Title   string `yaml:"title" mapstructure:"title"`
	Navbar  bool   `yaml:"navbar" mapstructure:"navbar"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{"**/*.py"},
			Ignore: []string{
				"venv/**",
				".venv/**",
				"__pycache__/**",
				".git/**",
				"docs/**",
			},
		},
		Output: OutputConfig{
			Dir:        "docs",
			OnConflict: "overwrite",
			Formats:    []string{"html"},
		},
		Assets: AssetsConfig{
			Download:       true,
			BaseURL:        DefaultAssetsBaseURL,
			TimeoutSeconds: 30,
		},
		Build: BuildConfig{
			Workers: 4,
			Readme:  true,
			Title:   "Documentation",
			Navbar:  true,
		},
	}
}
