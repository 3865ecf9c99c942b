package coverage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamescalam/autodocs/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Checker:
// - Definitions lists module functions and top-level class methods with lines
// - Decorated and async definitions are found; nested functions are not
// - CheckFile reports documented counts and missing symbols
// - Extraction failures are carried on the file report
// - Report totals skip failed files and treat empty files as covered

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "python", name))
	require.NoError(t, err)
	return data
}

func TestChecker_Definitions(t *testing.T) {
	t.Parallel()

	symbols, err := NewChecker().Definitions(fixture(t, "geometry.py"))
	require.NoError(t, err)

	var names []string
	for _, s := range symbols {
		names = append(names, s.Qualified())
	}
	assert.Equal(t, []string{
		"Point.__init__", "Point.distance", "Point._helper",
		"Polygon.__init__",
		"area", "origin", "undocumented",
	}, names)
	assert.Equal(t, 20, symbols[0].Line)
	assert.Equal(t, 91, symbols[6].Line)
}

func TestChecker_DecoratedAndNested(t *testing.T) {
	t.Parallel()

	src := []byte(`
import functools


@functools.cache
def cached():
    def inner():
        pass
    return inner


class Service:
    @property
    def name(self):
        return "svc"

    async def run(self):
        pass
`)
	symbols, err := NewChecker().Definitions(src)
	require.NoError(t, err)

	var names []string
	for _, s := range symbols {
		names = append(names, s.Qualified())
	}
	assert.Equal(t, []string{"cached", "Service.name", "Service.run"}, names)
}

func TestChecker_CheckFile(t *testing.T) {
	t.Parallel()

	report := NewChecker().CheckFile("geometry.py", fixture(t, "geometry.py"))
	require.NoError(t, report.Err)
	assert.Equal(t, "Geometry", report.Module)
	assert.Equal(t, 7, report.Total)
	assert.Equal(t, 5, report.Documented)
	assert.InDelta(t, 71.43, report.Percent(), 0.01)

	require.Len(t, report.Missing, 2)
	assert.Equal(t, Symbol{Name: "_helper", Class: "Point", Line: 56}, report.Missing[0])
	assert.Equal(t, "undocumented", report.Missing[1].Name)
}

func TestChecker_CheckFileExtractionError(t *testing.T) {
	t.Parallel()

	report := NewChecker().CheckFile("broken.py", fixture(t, "missing_developers.py"))
	require.Error(t, report.Err)
	assert.ErrorIs(t, report.Err, extract.ErrFormat)
}

func TestReport_Totals(t *testing.T) {
	t.Parallel()

	var r Report
	r.Add(FileReport{Path: "b.py", Total: 4, Documented: 1})
	r.Add(FileReport{Path: "a.py", Total: 0, Documented: 0})
	r.Add(FileReport{Path: "c.py", Err: extract.ErrFormat})

	documented, total := r.Totals()
	assert.Equal(t, 1, documented)
	assert.Equal(t, 4, total)
	assert.InDelta(t, 25.0, r.Percent(), 0.001)
	assert.Equal(t, "a.py", r.Files[0].Path)
	assert.Equal(t, 100.0, r.Files[0].Percent())
	require.Len(t, r.Failed(), 1)
	assert.Equal(t, "c.py", r.Failed()[0].Path)
}
