package builder

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds source files with include globs and ignore rules.
type FileDiscovery struct {
	fs             afero.Fs
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
}

// NewFileDiscovery compiles the include and ignore patterns.
func NewFileDiscovery(fs afero.Fs, rootDir string, includes, ignores []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{fs: fs, rootDir: rootDir}

	var err error
	if fd.includes, err = compilePatterns(includes); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignores); err != nil {
		return nil, err
	}
	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Discover walks the tree and returns matching files sorted by path.
func (fd *FileDiscovery) Discover() ([]string, error) {
	files := []string{}

	err := afero.Walk(fd.fs, fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && fd.ShouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.ShouldIgnore(relPath) {
			return nil
		}
		if fd.Matches(relPath) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// Matches reports whether a root-relative, slash-separated path is included.
func (fd *FileDiscovery) Matches(relPath string) bool {
	return matchesAnyPattern(relPath, fd.includes)
}

// ShouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) ShouldIgnore(relPath string) bool {
	if strings.HasPrefix(relPath, ".autodocs/") || relPath == ".autodocs" {
		return true
	}
	if matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// "venv" should match pattern "venv/**"
	return matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Root-level paths also match patterns with the **/ prefix removed, so
	// "**/*.py" matches both "setup.py" and "pkg/mod.py".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
			if err == nil && simplified.Match(path) {
				return true
			}
		}
	}

	return false
}
