package builder

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDiscovery_Discover(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"setup.py",
		"pkg/core.py",
		"pkg/notes.txt",
		"venv/lib/x.py",
		"pkg/__pycache__/core.py",
		".autodocs/config.py",
	} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/root", p), []byte("x"), 0644))
	}

	fd, err := NewFileDiscovery(fs, "/root", []string{"**/*.py"}, []string{"venv/**", "**/__pycache__/**"})
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("/root", "pkg", "core.py"),
		filepath.Join("/root", "setup.py"),
	}, files)
}

func TestFileDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewFileDiscovery(afero.NewMemMapFs(), ".", []string{"[unclosed"}, nil)
	assert.Error(t, err)
}
