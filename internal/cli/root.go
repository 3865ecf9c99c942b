package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jamescalam/autodocs/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autodocs",
	Short: "Autodocs - HTML documentation from NumPy docstrings",
	Long: `Autodocs reads Python source files, extracts their NumPy-style
docstrings and generates a browsable HTML documentation site.

Run it from the root of a Python project. Configuration is read from
.autodocs/config.yml, AUTODOCS_* environment variables and a .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .autodocs/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadProject resolves the project root and loads its configuration.
func loadProject() (string, *config.Config, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := loadConfig(rootDir, cfgFile)
	if err != nil {
		return "", nil, err
	}
	return rootDir, cfg, nil
}

func loadConfig(rootDir, file string) (*config.Config, error) {
	loader := config.NewLoader(rootDir)
	if file != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(rootDir, file)
		}
		loader = config.NewFileLoader(rootDir, file)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		log.Printf("Loaded configuration (output: %s, formats: %v)", cfg.Output.Dir, cfg.Output.Formats)
	}
	return cfg, nil
}
