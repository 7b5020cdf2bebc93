package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry is a cached provider reply.
type cacheEntry struct {
	expiry time.Time
	reply  string
}

// responseCache keeps provider replies keyed by a digest of the request so
// re-analyzing the same document does not call the provider again.
type responseCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// newResponseCache creates a cache with the given TTL.
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	cache := &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// cacheKey hashes every field that changes the provider's answer.
func cacheKey(model string, req Request) string {
	h := sha256.New()
	for _, part := range []string{model, req.System, req.Prompt, req.MIMEType} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(req.Document)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *responseCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return "", false
	}
	return entry.reply, true
}

func (c *responseCache) set(key, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		reply:  reply,
		expiry: time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *responseCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.purge(time.Now())
		}
	}
}

func (c *responseCache) purge(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *responseCache) Close() {
	c.once.Do(func() { close(c.stopCh) })
}
