package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader loads an explicit config file instead of searching .autodocs/.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{rootDir: rootDir, configFile: configFile}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (AUTODOCS_*), including those from <root>/.env
// 2. Config file (.autodocs/config.yml or .autodocs/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	// A missing .env is fine; variables already set are never overridden.
	_ = godotenv.Load(filepath.Join(l.rootDir, ".env"))

	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".autodocs"))
	}

	v.SetEnvPrefix("AUTODOCS")
	v.AutomaticEnv()
	// AUTODOCS_OUTPUT_ON_CONFLICT -> output.on_conflict
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"output.dir",
		"output.on_conflict",
		"output.formats",
		"assets.download",
		"assets.base_url",
		"assets.timeout_seconds",
		"build.workers",
		"build.readme",
		"build.title",
		"build.navbar",
	} {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.on_conflict", defaults.Output.OnConflict)
	v.SetDefault("output.formats", defaults.Output.Formats)

	v.SetDefault("assets.download", defaults.Assets.Download)
	v.SetDefault("assets.base_url", defaults.Assets.BaseURL)
	v.SetDefault("assets.timeout_seconds", defaults.Assets.TimeoutSeconds)

	v.SetDefault("build.workers", defaults.Build.Workers)
	v.SetDefault("build.readme", defaults.Build.Readme)
	v.SetDefault("build.title", defaults.Build.Title)
	v.SetDefault("build.navbar", defaults.Build.Navbar)
}
