package sources

import (
	"sync"
	"time"
)

// cacheTTL bounds how long a scan result may be reused for a repeated
// scan of the same target with the same credential.
const cacheTTL = 10 * time.Minute

type cacheEntry struct {
	result  *Result
	expires time.Time
}

// resultCache is a short-lived in-memory cache keyed by domain plus a
// credential suffix, used purely to avoid redundant external calls when
// the same target is rescanned within the TTL window.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newResultCache() *resultCache {
	return &resultCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// cacheKey combines the domain with the tail of the credential so a
// credential swap invalidates the entry without storing the secret.
func cacheKey(domain, credential string) string {
	suffix := credential
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return domain + "|" + suffix
}

func (c *resultCache) get(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.result, true
}

func (c *resultCache) put(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, expires: c.now().Add(cacheTTL)}
}
