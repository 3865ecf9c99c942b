// Package output persists rendered documents under an output directory.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ConflictPolicy decides what happens when a target file already exists.
type ConflictPolicy string

const (
	// PolicyFail refuses to touch an existing file and returns ErrExists.
	PolicyFail ConflictPolicy = "fail"
	// PolicyOverwrite replaces the existing file.
	PolicyOverwrite ConflictPolicy = "overwrite"
	// PolicyRename writes next to the existing file under an auto_ prefix.
	PolicyRename ConflictPolicy = "rename"
)

const renamePrefix = "auto_"

// Extensions written as-is. Any other filename gets .html appended.
var knownExtensions = []string{".html", ".css", ".js", ".md", ".json"}

var (
	// ErrExists is returned under PolicyFail when the target exists.
	ErrExists = errors.New("output file already exists")
	// ErrUnknownPolicy is returned for a policy name outside fail|overwrite|rename.
	ErrUnknownPolicy = errors.New("unknown conflict policy")
)

// ParsePolicy converts a config value into a ConflictPolicy.
func ParsePolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFail, PolicyOverwrite, PolicyRename:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Writer writes documents atomically using the temp → rename pattern.
type Writer struct {
	fs      afero.Fs
	dir     string
	tempDir string
	policy  ConflictPolicy
}

// NewWriter creates the output directory and a clean temp directory inside it.
func NewWriter(fs afero.Fs, dir string, policy ConflictPolicy) (*Writer, error) {
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}

	tempDir := filepath.Join(dir, ".tmp")
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := fs.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if err := fs.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &Writer{fs: fs, dir: dir, tempDir: tempDir, policy: policy}, nil
}

// Write stores data under filename (relative to the output directory) and
// returns the path actually written.
func (w *Writer) Write(filename string, data []byte) (string, error) {
	target := filepath.Join(w.dir, Filename(filename))

	exists, err := afero.Exists(w.fs, target)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if exists {
		switch w.policy {
		case PolicyFail:
			return "", fmt.Errorf("%w: %s", ErrExists, target)
		case PolicyRename:
			if target, err = w.freeName(target); err != nil {
				return "", err
			}
		}
	}

	if err := w.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	tempFile, err := afero.TempFile(w.fs, w.tempDir, filepath.Base(target)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		w.fs.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		w.fs.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := w.fs.Rename(tempPath, target); err != nil {
		w.fs.Remove(tempPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}
	return target, nil
}

// Close removes the temp directory.
func (w *Writer) Close() error {
	if err := w.fs.RemoveAll(w.tempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory: %w", err)
	}
	return nil
}

// Filename applies the extension rule: names without a known extension are
// written as .html.
func Filename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range knownExtensions {
		if ext == known {
			return name
		}
	}
	return name + ".html"
}

func (w *Writer) freeName(target string) (string, error) {
	dir, base := filepath.Split(target)
	for {
		base = renamePrefix + base
		candidate := filepath.Join(dir, base)
		exists, err := afero.Exists(w.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}
