// Package llm wraps the external classification capability: a set of
// generative providers tried in a fixed fallback order, with per-provider
// request budgets and an in-memory response cache.
package llm

import (
	"context"
	"errors"
)

// Provider is one backing model endpoint.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse marks a provider call that technically succeeded but
// returned nothing usable; the chain treats it as a failure.
var ErrEmptyResponse = errors.New("llm: empty response")

// ErrExhausted means every provider in the chain failed or was over budget.
// Callers are expected to fail open on it.
var ErrExhausted = errors.New("llm: all providers failed")
