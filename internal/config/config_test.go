package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .autodocs/config.yml and .autodocs/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values
// - A .env file in the root supplies environment overrides
// - NewFileLoader reads an explicit config path
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects bad policies, formats, worker counts, urls and empty includes
// - Validate() returns multiple errors for multiple invalid fields

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, ".autodocs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"**/*.py"}, cfg.Paths.Include)
	assert.Contains(t, cfg.Paths.Ignore, "venv/**")
	assert.Equal(t, "docs", cfg.Output.Dir)
	assert.Equal(t, "overwrite", cfg.Output.OnConflict)
	assert.Equal(t, []string{"html"}, cfg.Output.Formats)
	assert.True(t, cfg.Assets.Download)
	assert.Equal(t, DefaultAssetsBaseURL, cfg.Assets.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Assets.Timeout())
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.True(t, cfg.Build.Readme)
	assert.True(t, cfg.Build.Navbar)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsConfigYml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
paths:
  include: ["src/**/*.py"]
  ignore: ["src/legacy/**"]
output:
  dir: site
  on_conflict: rename
  formats: [html, markdown]
assets:
  download: false
build:
  workers: 2
  readme: false
  title: My Project
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.py"}, cfg.Paths.Include)
	assert.Equal(t, []string{"src/legacy/**"}, cfg.Paths.Ignore)
	assert.Equal(t, "site", cfg.Output.Dir)
	assert.Equal(t, "rename", cfg.Output.OnConflict)
	assert.Equal(t, []string{"html", "markdown"}, cfg.Output.Formats)
	assert.False(t, cfg.Assets.Download)
	assert.Equal(t, 2, cfg.Build.Workers)
	assert.False(t, cfg.Build.Readme)
	assert.Equal(t, "My Project", cfg.Build.Title)

	// Unset keys keep their defaults
	assert.True(t, cfg.Build.Navbar)
	assert.Equal(t, 30, cfg.Assets.TimeoutSeconds)
}

func TestLoad_ReadsConfigYaml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yaml", "output:\n  dir: out\n")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "overwrite", cfg.Output.OnConflict)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "output:\n  dir: site\n  on_conflict: rename\n")

	t.Setenv("AUTODOCS_OUTPUT_DIR", "env-site")
	t.Setenv("AUTODOCS_BUILD_WORKERS", "1")
	t.Setenv("AUTODOCS_ASSETS_DOWNLOAD", "false")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "env-site", cfg.Output.Dir)
	assert.Equal(t, "rename", cfg.Output.OnConflict)
	assert.Equal(t, 1, cfg.Build.Workers)
	assert.False(t, cfg.Assets.Download)
}

func TestLoad_DotEnvFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("AUTODOCS_OUTPUT_ON_CONFLICT=fail\n"), 0644))

	// Registered so the variable godotenv sets is cleared after the test
	t.Setenv("AUTODOCS_OUTPUT_ON_CONFLICT", "")
	require.NoError(t, os.Unsetenv("AUTODOCS_OUTPUT_ON_CONFLICT"))

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "fail", cfg.Output.OnConflict)
}

func TestNewFileLoader(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: custom\n"), 0644))

	cfg, err := NewFileLoader(root, path).Load()
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Output.Dir)
}

func TestLoad_MalformedYaml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", "output:\n  dir: [unclosed\n")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", "output:\n  on_conflict: prompt\n")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown policy", func(c *Config) { c.Output.OnConflict = "ask" }, ErrInvalidPolicy},
		{"unknown format", func(c *Config) { c.Output.Formats = []string{"pdf"} }, ErrInvalidFormat},
		{"zero workers", func(c *Config) { c.Build.Workers = 0 }, ErrInvalidWorkers},
		{"empty include", func(c *Config) { c.Paths.Include = nil }, ErrInvalidField},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }, ErrInvalidField},
		{"bad base url", func(c *Config) { c.Assets.BaseURL = "not a url" }, ErrInvalidField},
		{"download without url", func(c *Config) { c.Assets.BaseURL = "" }, ErrEmptyBaseURL},
		{"negative timeout", func(c *Config) { c.Assets.TimeoutSeconds = -1 }, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_DisabledDownloadNeedsNoURL(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Assets.Download = false
	cfg.Assets.BaseURL = ""
	assert.NoError(t, Validate(cfg))
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.OnConflict = "ask"
	cfg.Build.Workers = -1
	cfg.Output.Dir = ""

	err := Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "validation failed:")
	assert.Contains(t, msg, "invalid conflict policy")
	assert.Contains(t, msg, "invalid worker count")
	assert.Contains(t, msg, "output.dir failed 'required'")
}
