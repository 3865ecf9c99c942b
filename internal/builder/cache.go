package builder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jamescalam/autodocs/internal/model"
	"github.com/maypok86/otter"
)

const defaultCacheCapacity = 1024

// ModuleCache memoizes extraction results by source content hash, so a
// rebuild in watch mode only re-parses files whose bytes changed.
type ModuleCache struct {
	cache otter.Cache[string, *model.Module]
}

// NewModuleCache creates a cache holding up to capacity modules.
func NewModuleCache(capacity int) (*ModuleCache, error) {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	c, err := otter.MustBuilder[string, *model.Module](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build module cache: %w", err)
	}
	return &ModuleCache{cache: c}, nil
}

// Get returns the cached module for source text.
func (c *ModuleCache) Get(text []byte) (*model.Module, bool) {
	return c.cache.Get(checksum(text))
}

// Set stores the module extracted from source text.
func (c *ModuleCache) Set(text []byte, mod *model.Module) {
	c.cache.Set(checksum(text), mod)
}

// Hits returns the number of cache hits so far.
func (c *ModuleCache) Hits() int64 {
	return c.cache.Stats().Hits()
}

// Close releases the cache's background resources.
func (c *ModuleCache) Close() {
	c.cache.Close()
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
