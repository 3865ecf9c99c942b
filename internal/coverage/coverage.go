// Package coverage reports which Python functions are missing from the
// generated documentation.
//
// Definitions are found with a real Python grammar (tree-sitter) and compared
// against the extracted model, so undocumented functions, which the extractor
// skips silently, show up here.
package coverage

import (
	"fmt"
	"sort"

	"github.com/jamescalam/autodocs/internal/extract"
	"github.com/jamescalam/autodocs/internal/model"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Symbol is one function or method definition.
type Symbol struct {
	Name  string `json:"name"`
	Class string `json:"class,omitempty"`
	Line  int    `json:"line"`
}

// Qualified returns Class.name for methods and name otherwise.
func (s Symbol) Qualified() string {
	if s.Class == "" {
		return s.Name
	}
	return s.Class + "." + s.Name
}

// FileReport is the coverage of one source file.
type FileReport struct {
	Path       string   `json:"path"`
	Module     string   `json:"module,omitempty"`
	Total      int      `json:"total"`
	Documented int      `json:"documented"`
	Missing    []Symbol `json:"missing,omitempty"`
	Err        error    `json:"-"`
}

// Percent is documented/total as a percentage. A file without functions is
// fully covered.
func (r FileReport) Percent() float64 {
	return percent(r.Documented, r.Total)
}

// Report aggregates file reports.
type Report struct {
	Files []FileReport `json:"files"`
}

// Totals sums definitions and documented definitions over files that parsed.
func (r *Report) Totals() (documented, total int) {
	for _, f := range r.Files {
		if f.Err != nil {
			continue
		}
		documented += f.Documented
		total += f.Total
	}
	return documented, total
}

// Percent is the overall coverage.
func (r *Report) Percent() float64 {
	return percent(r.Totals())
}

// Failed returns the files whose docstrings could not be extracted.
func (r *Report) Failed() []FileReport {
	var failed []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

func percent(documented, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(documented) / float64(total) * 100
}

// Checker finds Python definitions with tree-sitter.
type Checker struct {
	language *sitter.Language
}

// NewChecker creates a checker for Python sources.
func NewChecker() *Checker {
	return &Checker{language: sitter.NewLanguage(python.Language())}
}

// Definitions lists module-level functions and the methods of module-level
// classes in source order. Nested functions are not listed.
func (c *Checker) Definitions(source []byte) ([]Symbol, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(c.language); err != nil {
		return nil, fmt.Errorf("failed to load python grammar: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse python source")
	}
	defer tree.Close()

	var symbols []Symbol
	root := tree.RootNode()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := unwrapDecorated(root.NamedChild(i))
		switch node.Kind() {
		case "function_definition":
			symbols = append(symbols, symbolOf(node, source, ""))
		case "class_definition":
			className := nodeText(node.ChildByFieldName("name"), source)
			body := node.ChildByFieldName("body")
			if body == nil {
				continue
			}
			for j := uint(0); j < body.NamedChildCount(); j++ {
				member := unwrapDecorated(body.NamedChild(j))
				if member.Kind() == "function_definition" {
					symbols = append(symbols, symbolOf(member, source, className))
				}
			}
		}
	}
	return symbols, nil
}

// CheckFile extracts the documentation model of one file and compares it
// with the file's definitions.
func (c *Checker) CheckFile(path string, source []byte) FileReport {
	report := FileReport{Path: path}

	symbols, err := c.Definitions(source)
	if err != nil {
		report.Err = err
		return report
	}
	mod, err := extract.Extract(string(source))
	if err != nil {
		report.Err = err
		return report
	}

	report.Module = mod.Name
	report.Total = len(symbols)
	for _, s := range symbols {
		if documented(mod, s) {
			report.Documented++
		} else {
			report.Missing = append(report.Missing, s)
		}
	}
	return report
}

// Add appends a file report, keeping files sorted by path.
func (r *Report) Add(f FileReport) {
	r.Files = append(r.Files, f)
	sort.SliceStable(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
}

func documented(mod *model.Module, s Symbol) bool {
	if s.Class == "" {
		_, ok := mod.Functions.Get(s.Name)
		return ok
	}
	cls, ok := mod.Classes.Get(s.Class)
	if !ok {
		return false
	}
	_, ok = cls.Functions.Get(s.Name)
	return ok
}

func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node != nil && node.Kind() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

func symbolOf(node *sitter.Node, source []byte, class string) Symbol {
	return Symbol{
		Name:  nodeText(node.ChildByFieldName("name"), source),
		Class: class,
		Line:  int(node.StartPosition().Row) + 1,
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
