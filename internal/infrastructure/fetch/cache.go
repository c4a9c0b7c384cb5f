package fetch

import (
	"sync"
	"time"

	"shopmate/internal/domain"
)

type cacheKey struct {
	url     string
	profile domain.ExtractionProfile
}

type cacheEntry struct {
	result    domain.FetchResult
	expiresAt time.Time
}

// ResponseCache holds fetch results keyed by (url, profile). Expired
// entries are evicted lazily: an expired entry found on read is deleted
// and treated as a miss.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	now     func() time.Time
}

// NewResponseCache builds a cache. A nil clock uses time.Now.
func NewResponseCache(now func() time.Time) *ResponseCache {
	if now == nil {
		now = time.Now
	}
	return &ResponseCache{
		entries: make(map[cacheKey]cacheEntry),
		now:     now,
	}
}

// Get returns a live cached result for (url, profile).
func (c *ResponseCache) Get(url string, profile domain.ExtractionProfile) (domain.FetchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{url: url, profile: profile}
	entry, ok := c.entries[key]
	if !ok {
		return domain.FetchResult{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return domain.FetchResult{}, false
	}
	return entry.result, true
}

// Set stores a result under the given TTL. Non-positive TTLs are not
// cached.
func (c *ResponseCache) Set(result domain.FetchResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{url: result.URL, profile: result.Profile}
	c.entries[key] = cacheEntry{result: result, expiresAt: c.now().Add(ttl)}
}

// Len reports the number of entries currently held, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
