package builder

import (
	"encoding/json"
	"fmt"
	"time"
)

// ManifestFile is written at the root of the output directory.
const ManifestFile = "manifest.json"

// Manifest records what one build produced.
type Manifest struct {
	BuildID     string            `json:"build_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Modules     []ManifestModule  `json:"modules"`
	Failures    map[string]string `json:"failures,omitempty"`
	Stats       BuildStats        `json:"stats"`
}

// ManifestModule maps one source file to the pages generated from it.
type ManifestModule struct {
	Source   string   `json:"source"`
	Name     string   `json:"name"`
	Checksum string   `json:"checksum"`
	Pages    []string `json:"pages"`
}

// BuildStats tracks statistics about a build.
type BuildStats struct {
	FilesDiscovered       int     `json:"files_discovered"`
	ModulesExtracted      int     `json:"modules_extracted"`
	FilesFailed           int     `json:"files_failed"`
	PagesWritten          int     `json:"pages_written"`
	CacheHits             int64   `json:"cache_hits"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

func (m *Manifest) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return data, nil
}
