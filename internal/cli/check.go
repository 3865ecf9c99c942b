package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jamescalam/autodocs/internal/config"
	"github.com/jamescalam/autodocs/internal/coverage"
	"github.com/spf13/cobra"
)

var (
	failUnderFlag float64
	showAllFlag   bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report documentation coverage",
	Long: `Check compares every function and method defined in the project's Python
files with the ones that carry a NumPy-style docstring, and lists the
definitions that would be missing from the generated pages.

Only module-level functions and methods of module-level classes count.
Files whose docstrings cannot be parsed are reported as errors.

Examples:
  # Print the coverage report
  autodocs check

  # Fail when coverage drops below 80%
  autodocs check --fail-under 80
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, cfg, err := loadProject()
		if err != nil {
			return err
		}
		return executeCheck(cmd.OutOrStdout(), rootDir, cfg, failUnderFlag, showAllFlag)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Float64Var(&failUnderFlag, "fail-under", 0, "Exit with an error when total coverage is below this percentage")
	checkCmd.Flags().BoolVarP(&showAllFlag, "all", "a", false, "List fully documented files too")
}

func executeCheck(out io.Writer, rootDir string, cfg *config.Config, failUnder float64, showAll bool) error {
	if failUnder < 0 || failUnder > 100 {
		return fmt.Errorf("--fail-under must be between 0 and 100, got %g", failUnder)
	}

	files, err := discoverSources(rootDir, cfg)
	if err != nil {
		return err
	}

	checker := coverage.NewChecker()
	var report coverage.Report
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		report.Add(checker.CheckFile(relPath(rootDir, path), data))
	}

	for _, f := range report.Files {
		if f.Err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", f.Path, f.Err)
			continue
		}
		if len(f.Missing) == 0 && !showAll {
			continue
		}
		fmt.Fprintf(out, "%-40s %3d/%-3d %6.1f%%\n", f.Path, f.Documented, f.Total, f.Percent())
		for _, s := range f.Missing {
			fmt.Fprintf(out, "    line %-5d %s\n", s.Line, s.Qualified())
		}
	}

	documented, total := report.Totals()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Coverage: %d/%d definitions documented (%.1f%%) in %d files\n",
		documented, total, report.Percent(), len(report.Files))
	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintf(out, "  %d files could not be parsed\n", len(failed))
	}

	if failUnder > 0 && report.Percent() < failUnder {
		return fmt.Errorf("coverage %.1f%% is below --fail-under %.1f%%", report.Percent(), failUnder)
	}
	if len(report.Failed()) > 0 {
		return fmt.Errorf("%d files failed to parse", len(report.Failed()))
	}
	return nil
}
