package llm

import (
	"context"
	"time"

	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/metrics"
)

// Chain tries providers in priority order and returns the first non-empty
// response. A provider over budget is skipped without being called.
type Chain struct {
	providers []Provider
	budget    *Budget
	cache     *Cache
	timeout   time.Duration
}

// NewChain wires the fallback chain. budget and cache may be nil.
func NewChain(providers []Provider, budget *Budget, cache *Cache, timeout time.Duration) *Chain {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Chain{
		providers: providers,
		budget:    budget,
		cache:     cache,
		timeout:   timeout,
	}
}

// Complete runs the prompt through the chain. Returns ErrExhausted when no
// provider produced a usable response; callers fail open on that.
func (c *Chain) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cache != nil {
		if resp, hit := c.cache.Get(prompt); hit {
			if c.budget != nil {
				c.budget.RecordCacheHit()
			}
			return resp, nil
		}
	}

	for i, p := range c.providers {
		if c.budget != nil && !c.budget.Allow(p.Name()) {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := p.Complete(callCtx, prompt)
		cancel()

		if c.budget != nil {
			c.budget.Use(p.Name())
		}

		if err != nil {
			logger.Warn("provider call failed", "provider", p.Name(), "error", err)
			if i < len(c.providers)-1 {
				metrics.Global.IncrementProviderFallbacks()
			}
			continue
		}

		if c.cache != nil {
			c.cache.Set(prompt, resp)
		}
		return resp, nil
	}

	return "", ErrExhausted
}

// Available reports whether the chain has any provider configured.
func (c *Chain) Available() bool {
	return len(c.providers) > 0
}
