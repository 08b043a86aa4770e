package llm

import (
	"sync"
	"time"

	"github.com/fubak/cmmcwatch/internal/logger"
)

// Budget caps requests per provider and in total, resetting daily. Keeps the
// pipeline inside free-tier API limits.
type Budget struct {
	mu          sync.Mutex
	used        map[string]int
	limits      map[string]int
	totalUsed   int
	maxTotal    int
	resetTime   time.Time
	cacheHits   int
	cacheMisses int
}

// NewBudget builds a budget from per-provider limits. A zero limit means
// unlimited for that provider; maxTotal zero means no overall cap.
func NewBudget(limits map[string]int, maxTotal int) *Budget {
	return &Budget{
		used:      make(map[string]int),
		limits:    limits,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether a request to the named provider fits the budget.
func (b *Budget) Allow(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if limit := b.limits[provider]; limit > 0 && b.used[provider] >= limit {
		logger.Warn("provider budget reached", "provider", provider, "used", b.used[provider], "limit", limit)
		return false
	}
	if b.maxTotal > 0 && b.totalUsed >= b.maxTotal {
		logger.Warn("total AI budget reached", "used", b.totalUsed, "limit", b.maxTotal)
		return false
	}
	return true
}

// Use records a request against the provider's budget.
func (b *Budget) Use(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	b.used[provider]++
	b.totalUsed++
	b.cacheMisses++
}

// RecordCacheHit counts a prompt served from cache instead of a provider.
func (b *Budget) RecordCacheHit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheHits++
}

// Stats returns current usage for the monitoring endpoint.
func (b *Budget) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":   b.totalUsed,
		"total_limit":  b.maxTotal,
		"cache_hits":   b.cacheHits,
		"cache_misses": b.cacheMisses,
		"reset_time":   b.resetTime,
	}
	for name, used := range b.used {
		stats[name+"_used"] = used
	}
	for name, limit := range b.limits {
		stats[name+"_limit"] = limit
	}
	return stats
}

func (b *Budget) checkReset() {
	if time.Now().After(b.resetTime) {
		b.used = make(map[string]int)
		b.totalUsed = 0
		b.cacheHits = 0
		b.cacheMisses = 0
		b.resetTime = time.Now().Add(24 * time.Hour)
	}
}
