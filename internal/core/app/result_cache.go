package app

import (
	"fmt"
	"strings"
	"time"

	"routelens/internal/engine/parser"
	"routelens/internal/engine/resolver"
)

// resultEntry caches one resolution outcome. Misses are cached alongside
// hits so that a repeatedly unresolvable decorator does not re-run the
// resolution chain on every pass.
type resultEntry struct {
	info   resolver.RouteInfo
	ok     bool
	reason string
	at     time.Time
}

// resultCache is an LRU of per-decorator resolution outcomes with a TTL.
// Keys embed the importing file path so all entries for a file can be
// dropped when it changes.
type resultCache struct {
	ttl time.Duration
	lru *LRUCache[string, resultEntry]
}

func newResultCache(capacity int, ttl time.Duration) *resultCache {
	return &resultCache{
		ttl: ttl,
		lru: NewLRUCache[string, resultEntry](capacity),
	}
}

// resultKey identifies a decorator site within its importing file. Line and
// property path pin the site; edits that move it produce a different key.
func resultKey(file string, ref parser.DecoratorReference) string {
	return fmt.Sprintf("%s:%d:%s:%s", file, ref.Location.Line, ref.BaseIdentifier, strings.Join(ref.PropertyPath, "."))
}

func (c *resultCache) get(key string) (resultEntry, bool) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return resultEntry{}, false
	}
	if c.ttl > 0 && time.Since(entry.at) > c.ttl {
		c.lru.Evict(key)
		return resultEntry{}, false
	}
	return entry, true
}

func (c *resultCache) put(key string, entry resultEntry) {
	entry.at = time.Now()
	c.lru.Put(key, entry)
}

// invalidateFile drops every cached outcome belonging to the given
// importing file.
func (c *resultCache) invalidateFile(file string) {
	prefix := file + ":"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Evict(key)
		}
	}
}

// prune evicts the given percentage of entries, oldest first.
func (c *resultCache) prune(percent int) {
	if percent <= 0 {
		return
	}
	n := c.lru.Len() * percent / 100
	if n < 1 {
		n = 1
	}
	c.lru.EvictOldest(n)
}

func (c *resultCache) len() int {
	return c.lru.Len()
}

func (c *resultCache) clear() {
	c.lru.Clear()
}
