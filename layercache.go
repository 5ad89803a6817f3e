package rendernode

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

// DefaultMaxSizeMB is the default layer cache budget in megabytes.
const DefaultMaxSizeMB = scene.DefaultMaxSizeMB

// LayerCacheStats is a snapshot of cache counters.
type LayerCacheStats = scene.CacheStats

// LayerCache holds rasterized subtrees keyed by node ID, in an LRU with a
// byte budget. Each entry carries the version of the container it was
// rendered from; a lookup with another version drops the entry and
// misses. It is safe for concurrent use.
type LayerCache struct {
	cache *scene.LayerCache
}

// NewLayerCache creates a cache holding at most maxSizeMB megabytes of
// pixels. Non-positive values select DefaultMaxSizeMB.
func NewLayerCache(maxSizeMB int) *LayerCache {
	return &LayerCache{cache: scene.NewLayerCache(maxSizeMB)}
}

// Get returns the pixmap cached for id at version.
func (c *LayerCache) Get(id, version uint64) (*gg.Pixmap, bool) {
	if v, ok := c.cache.GetVersion(id); ok && v != version {
		c.cache.Invalidate(id)
	}
	return c.cache.Get(id)
}

// Put caches img for id at version, replacing any older entry and
// evicting least recently used ones to stay within budget. Images larger
// than the whole budget are not cached.
func (c *LayerCache) Put(id, version uint64, img image.Image) {
	if img == nil {
		return
	}
	pm, ok := img.(*gg.Pixmap)
	if !ok {
		pm = gg.FromImage(img)
	}
	c.cache.Put(id, pm, version)
}

// Delete drops the entry for id, if any.
func (c *LayerCache) Delete(id uint64) {
	c.cache.Invalidate(id)
}

// Contains reports whether id is cached without touching LRU order.
func (c *LayerCache) Contains(id uint64) bool {
	return c.cache.Contains(id)
}

// Clear drops every entry.
func (c *LayerCache) Clear() {
	c.cache.InvalidateAll()
}

// Trim evicts least recently used entries until at most targetBytes
// remain.
func (c *LayerCache) Trim(targetBytes int64) {
	c.cache.Trim(targetBytes)
}

// MaxSize returns the budget in bytes.
func (c *LayerCache) MaxSize() int64 {
	return c.cache.MaxSize()
}

// Stats returns the current counters.
func (c *LayerCache) Stats() LayerCacheStats {
	return c.cache.Stats()
}
