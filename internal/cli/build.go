package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jamescalam/autodocs/internal/builder"
	"github.com/jamescalam/autodocs/internal/config"
	"github.com/jamescalam/autodocs/internal/output"
	"github.com/jamescalam/autodocs/internal/watcher"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	quietFlag bool
	watchFlag bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate HTML documentation for the project",
	Long: `Build scans the project for Python files, extracts their NumPy-style
docstrings and writes one page per module and per class into the output
directory, plus a readme index, the navbar script and the stylesheet and
script assets the pages reference.

A file whose docstrings cannot be parsed is reported and skipped; every
other module is still written.

Examples:
  # Build the current directory
  autodocs build

  # Build with progress bars disabled
  autodocs build --quiet

  # Rebuild whenever a Python file changes
  autodocs build --watch

  # Build with a specific configuration file
  autodocs build --config docs.yml
`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	buildCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and rebuild")
}

func runBuild(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(cmd.OutOrStdout(), "\nInterrupted! Stopping...")
		cancel()
	}()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	if watchFlag {
		return executeWatch(ctx, cmd.OutOrStdout(), rootDir, cfg, quietFlag)
	}
	_, err = executeBuild(ctx, cmd.OutOrStdout(), rootDir, cfg, quietFlag)
	return err
}

// buildOptions maps configuration onto builder options. Relative output
// directories are resolved against rootDir and excluded from discovery.
func buildOptions(rootDir string, cfg *config.Config) (builder.Options, error) {
	policy, err := output.ParsePolicy(cfg.Output.OnConflict)
	if err != nil {
		return builder.Options{}, err
	}

	outputDir := cfg.Output.Dir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(rootDir, outputDir)
	}

	ignore := append([]string{}, cfg.Paths.Ignore...)
	if rel, err := filepath.Rel(rootDir, outputDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ignore = append(ignore, filepath.ToSlash(rel)+"/**")
	}

	formats := make([]string, len(cfg.Output.Formats))
	for i, f := range cfg.Output.Formats {
		formats[i] = strings.ToLower(f)
	}

	return builder.Options{
		RootDir:        rootDir,
		Include:        cfg.Paths.Include,
		Ignore:         ignore,
		OutputDir:      outputDir,
		OnConflict:     policy,
		Formats:        formats,
		Workers:        cfg.Build.Workers,
		Readme:         cfg.Build.Readme,
		ReadmeTitle:    cfg.Build.Title,
		Navbar:         cfg.Build.Navbar,
		DownloadAssets: cfg.Assets.Download,
		AssetsBaseURL:  cfg.Assets.BaseURL,
		AssetsTimeout:  cfg.Assets.Timeout(),
	}, nil
}

func newBuilder(out io.Writer, rootDir string, cfg *config.Config, quiet bool, options ...builder.Option) (*builder.Builder, error) {
	opts, err := buildOptions(rootDir, cfg)
	if err != nil {
		return nil, err
	}
	options = append(options, builder.WithProgress(NewCLIProgressReporter(quiet, out)))
	return builder.New(afero.NewOsFs(), opts, options...)
}

// executeBuild runs one build. Per-file failures are listed and returned as
// an error after every other module has been written.
func executeBuild(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, quiet bool, options ...builder.Option) (*builder.Result, error) {
	b, err := newBuilder(out, rootDir, cfg, quiet, options...)
	if err != nil {
		return nil, err
	}
	return runOnce(ctx, out, b, quiet)
}

func runOnce(ctx context.Context, out io.Writer, b *builder.Builder, quiet bool) (*builder.Result, error) {
	result, err := b.Build(ctx)
	if result == nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("build cancelled")
		}
		return nil, fmt.Errorf("build failed: %w", err)
	}

	if quiet {
		fmt.Fprintf(out, "Build complete: %d pages from %d modules in %.2fs\n",
			result.Stats.PagesWritten, result.Stats.ModulesExtracted, result.Stats.ProcessingTimeSeconds)
	}
	if verbose {
		for _, path := range result.Written {
			log.Printf("Wrote %s", path)
		}
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(out, "\n%d files could not be documented:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Fprintf(out, "  ✗ %s\n", f.Error())
		}
		return result, fmt.Errorf("%d files failed", len(result.Failures))
	}
	return result, nil
}

// executeWatch builds once and then rebuilds on every batch of changed
// Python files until ctx is cancelled. Extracted modules are cached across
// rebuilds so unchanged files are not parsed again.
func executeWatch(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, quiet bool) error {
	cache, err := builder.NewModuleCache(0)
	if err != nil {
		return err
	}
	defer cache.Close()

	b, err := newBuilder(out, rootDir, cfg, quiet, builder.WithCache(cache))
	if err != nil {
		return err
	}

	if result, err := runOnce(ctx, out, b, quiet); result == nil {
		return err
	}

	discovery, err := b.Discovery()
	if err != nil {
		return err
	}
	w, err := watcher.New(rootDir, discovery, watcher.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	rebuild := func(files []string) {
		w.Pause()
		defer w.Resume()

		if !quiet {
			log.Printf("Detected %d changed files, rebuilding...", len(files))
		}
		if _, err := runOnce(ctx, out, b, quiet); err != nil && ctx.Err() == nil {
			log.Printf("Warning: rebuild failed: %v", err)
		}
	}
	if err := w.Start(ctx, rebuild); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !quiet {
		log.Printf("Watching %s for changes (Ctrl+C to stop)", rootDir)
	}
	<-ctx.Done()
	if !quiet {
		log.Println("Watch mode stopped")
	}
	return nil
}
