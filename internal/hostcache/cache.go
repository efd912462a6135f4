// Package hostcache provides a thread-safe, TTL-based cache in front of a
// hostname parser, deduplicating concurrent parses of the same domain.
package hostcache

import (
	"sync"
	"time"

	"github.com/optimode/emailaddr/types"
)

// Parser is the wrapped hostname parser.
type Parser interface {
	Parse(domain string) *types.Hostname
}

// Cache memoizes Parse results per domain string.
// Concurrent parses of the same domain are deduplicated:
// only one call reaches the wrapped parser, and all waiters receive its result.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
	next    Parser
}

type entry struct {
	result  *types.Hostname
	expires time.Time
	done    chan struct{} // closed when the parse is complete
}

// New wraps next with a cache. A ttl <= 0 keeps entries forever.
// When maxSize > 0 and the cache is full, expired entries are dropped
// first and the whole map is reset if that frees nothing.
func New(next Parser, ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		maxSize: maxSize,
		next:    next,
	}
}

// Parse returns the cached result for domain, parsing it on a miss.
// The returned value is a copy and may be modified by the caller.
func (c *Cache) Parse(domain string) *types.Hostname {
	c.mu.Lock()

	if e, ok := c.entries[domain]; ok {
		select {
		case <-e.done:
			if c.ttl <= 0 || time.Now().Before(e.expires) {
				c.mu.Unlock()
				return clone(e.result)
			}
			// Expired, fall through to refresh
		default:
			c.mu.Unlock()
			<-e.done
			return clone(e.result)
		}
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	e := &entry{done: make(chan struct{})}
	c.entries[domain] = e
	c.mu.Unlock()

	defer close(e.done)
	e.result = c.next.Parse(domain)
	e.expires = time.Now().Add(c.ttl)

	return clone(e.result)
}

// Len returns the number of entries in the cache (for diagnostics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked must be called with c.mu held. In-flight entries are kept.
func (c *Cache) evictLocked() {
	now := time.Now()
	for k, e := range c.entries {
		select {
		case <-e.done:
			if c.ttl > 0 && now.After(e.expires) {
				delete(c.entries, k)
			}
		default:
		}
	}
	if len(c.entries) < c.maxSize {
		return
	}
	for k, e := range c.entries {
		select {
		case <-e.done:
			delete(c.entries, k)
		default:
		}
	}
}

func clone(h *types.Hostname) *types.Hostname {
	if h == nil {
		return nil
	}
	cp := h.Clone()
	return &cp
}
