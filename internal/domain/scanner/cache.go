package scanner

import (
	"slices"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

// DefaultCacheCapacity is the number of distinct workflow versions a Cache
// remembers before it starts over.
const DefaultCacheCapacity = 1024

// Cache memoizes ScanWorkflow by a BLAKE3 digest of the path and content.
// Pull request pushes re-scan every workflow, and most of them have not
// changed since the last push. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[[32]byte][]model.Finding
}

// NewCache creates a cache holding at most capacity results. A non-positive
// capacity uses DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[[32]byte][]model.Finding, capacity),
	}
}

// ScanWorkflow returns the findings for text, scanning only on a cache miss.
// The returned slice is owned by the caller.
func (c *Cache) ScanWorkflow(text, path string) []model.Finding {
	key := cacheKey(text, path)

	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return slices.Clone(cached)
	}

	findings := ScanWorkflow(text, path)

	c.mu.Lock()
	if len(c.entries) >= c.capacity {
		clear(c.entries)
	}
	c.entries[key] = findings
	c.mu.Unlock()

	return slices.Clone(findings)
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(text, path string) [32]byte {
	h := blake3.New()
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(text))

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}
