package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jamescalam/autodocs/internal/extract"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var extractFormatFlag string

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file.py>",
	Short: "Print the documentation model of one Python file",
	Long: `Extract parses one Python file and prints the module, classes, functions
and parameters found in its docstrings, in source order.

Examples:
  # Print as JSON
  autodocs extract plot_tools.py

  # Print as YAML
  autodocs extract plot_tools.py --format yaml
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeExtract(cmd.OutOrStdout(), args[0], extractFormatFlag)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractFormatFlag, "format", "f", "json", "Output format (json, yaml)")
}

func executeExtract(out io.Writer, path, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q (valid: json, yaml)", format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	mod, err := extract.Extract(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(mod); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mod); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
