package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache stores provider responses keyed by prompt hash so a retried stage
// does not spend budget on a prompt already answered this run.
type Cache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
}

type cacheItem struct {
	response  string
	expiresAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
	}
}

func (c *Cache) Get(prompt string) (string, bool) {
	key := cacheKey(prompt)

	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return "", false
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return "", false
	}
	return item.response, true
}

func (c *Cache) Set(prompt, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[cacheKey(prompt)] = cacheItem{
		response:  response,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func cacheKey(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(h[:])
}
