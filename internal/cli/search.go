package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamescalam/autodocs/internal/builder"
	"github.com/jamescalam/autodocs/internal/config"
	"github.com/jamescalam/autodocs/internal/extract"
	"github.com/jamescalam/autodocs/internal/model"
	"github.com/jamescalam/autodocs/internal/search"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	searchLimitFlag int
	searchKindFlag  string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the project's docstrings",
	Long: `Search extracts every Python file the build would document and runs a
full-text query over module, class and function descriptions and
parameters. Each hit names the generated page it appears on.

The query uses bleve query-string syntax: terms, "phrases", +required,
-excluded and field:value (fields: name, text, owner, kind).

Examples:
  autodocs search distance
  autodocs search "polygon area" --limit 5
  autodocs search origin --kind function
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, cfg, err := loadProject()
		if err != nil {
			return err
		}
		opts := &search.Options{Limit: searchLimitFlag, Kind: searchKindFlag}
		return executeSearch(cmd.Context(), cmd.OutOrStdout(), rootDir, cfg, strings.Join(args, " "), opts)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "l", 15, "Maximum number of results (1-100)")
	searchCmd.Flags().StringVarP(&searchKindFlag, "kind", "k", "", "Restrict to one kind (module, class, function)")
}

func executeSearch(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, query string, opts *search.Options) error {
	switch opts.Kind {
	case "", search.KindModule, search.KindClass, search.KindFunction:
	default:
		return fmt.Errorf("unknown kind %q (valid: module, class, function)", opts.Kind)
	}

	mods, err := extractProject(rootDir, cfg)
	if err != nil {
		return err
	}

	index, err := search.New()
	if err != nil {
		return err
	}
	defer index.Close()

	if err := index.Add(ctx, mods...); err != nil {
		return err
	}

	results, err := index.Search(ctx, query, opts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(out, "No results for %q\n", query)
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(out, "%d. [%s] %s  (%s)\n", i+1, r.Entry.Kind, r.Entry.Path, r.Entry.Page)
		for _, h := range r.Highlights {
			fmt.Fprintf(out, "     %s\n", strings.Join(strings.Fields(h), " "))
		}
	}
	return nil
}

// extractProject extracts every file the build would document. Files that
// fail to parse are skipped with a warning.
func extractProject(rootDir string, cfg *config.Config) ([]*model.Module, error) {
	files, err := discoverSources(rootDir, cfg)
	if err != nil {
		return nil, err
	}

	var mods []*model.Module
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		mod, err := extract.Extract(string(data))
		if err != nil {
			log.Printf("Warning: skipping %s: %v", relPath(rootDir, path), err)
			continue
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func discoverSources(rootDir string, cfg *config.Config) ([]string, error) {
	opts, err := buildOptions(rootDir, cfg)
	if err != nil {
		return nil, err
	}
	discovery, err := builder.NewFileDiscovery(afero.NewOsFs(), rootDir, opts.Include, opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid file patterns: %w", err)
	}
	return discovery.Discover()
}

func relPath(rootDir, path string) string {
	if rel, err := filepath.Rel(rootDir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
