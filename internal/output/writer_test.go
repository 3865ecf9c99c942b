package output

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Writer:
// - New files are written under the output directory
// - Filenames without .html/.css/.js/.md/.json get .html appended
// - fail policy returns ErrExists and leaves the file untouched
// - overwrite policy replaces content
// - rename policy writes auto_<name>, then auto_auto_<name>
// - Nested filenames create their directories
// - Close removes the temp directory
// - Unknown policies are rejected

func newTestWriter(t *testing.T, policy ConflictPolicy) (*Writer, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, "docs", policy)
	require.NoError(t, err)
	return w, fs
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestFilename_ExtensionRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"geometry", "geometry.html"},
		{"geometry.Point", "geometry.Point.html"},
		{"readme.html", "readme.html"},
		{"templates/navbar.js", "templates/navbar.js"},
		{"style.CSS", "style.CSS"},
		{"geometry.md", "geometry.md"},
		{"manifest.json", "manifest.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.in), tt.in)
	}
}

func TestWriter_WritesNewFile(t *testing.T) {
	t.Parallel()

	w, fs := newTestWriter(t, PolicyFail)
	path, err := w.Write("geometry", []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("docs", "geometry.html"), path)
	assert.Equal(t, "<html></html>", readFile(t, fs, path))
}

func TestWriter_FailPolicy(t *testing.T) {
	t.Parallel()

	w, fs := newTestWriter(t, PolicyFail)
	_, err := w.Write("a.html", []byte("one"))
	require.NoError(t, err)

	_, err = w.Write("a.html", []byte("two"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))
	assert.Equal(t, "one", readFile(t, fs, filepath.Join("docs", "a.html")))
}

func TestWriter_OverwritePolicy(t *testing.T) {
	t.Parallel()

	w, fs := newTestWriter(t, PolicyOverwrite)
	_, err := w.Write("a.html", []byte("one"))
	require.NoError(t, err)
	path, err := w.Write("a.html", []byte("two"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("docs", "a.html"), path)
	assert.Equal(t, "two", readFile(t, fs, path))
}

func TestWriter_RenamePolicy(t *testing.T) {
	t.Parallel()

	w, fs := newTestWriter(t, PolicyRename)
	for _, body := range []string{"one", "two", "three"} {
		_, err := w.Write("a.html", []byte(body))
		require.NoError(t, err)
	}

	assert.Equal(t, "one", readFile(t, fs, filepath.Join("docs", "a.html")))
	assert.Equal(t, "two", readFile(t, fs, filepath.Join("docs", "auto_a.html")))
	assert.Equal(t, "three", readFile(t, fs, filepath.Join("docs", "auto_auto_a.html")))
}

func TestWriter_NestedAndClose(t *testing.T) {
	t.Parallel()

	w, fs := newTestWriter(t, PolicyOverwrite)
	path, err := w.Write("templates/navbar.js", []byte("//"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("docs", "templates", "navbar.js"), path)

	require.NoError(t, w.Close())
	exists, err := afero.DirExists(fs, filepath.Join("docs", ".tmp"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy(" Rename ")
	require.NoError(t, err)
	assert.Equal(t, PolicyRename, p)

	_, err = ParsePolicy("prompt")
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = NewWriter(afero.NewMemMapFs(), "docs", ConflictPolicy("ask"))
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
