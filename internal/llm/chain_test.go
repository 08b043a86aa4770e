package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := &fakeProvider{name: "primary", response: "[]"}
	secondary := &fakeProvider{name: "secondary", response: "unused"}
	chain := NewChain([]Provider{primary, secondary}, nil, nil, time.Second)

	got, err := chain.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "[]" {
		t.Errorf("got %q", got)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called despite primary success")
	}
}

func TestChain_FallsBackOnFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("boom")}
	secondary := &fakeProvider{name: "secondary", response: "ok"}
	chain := NewChain([]Provider{primary, secondary}, nil, nil, time.Second)

	got, err := chain.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want fallback response", got)
	}
}

func TestChain_AllFailedReturnsExhausted(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", err: ErrEmptyResponse}
	chain := NewChain([]Provider{a, b}, nil, nil, time.Second)

	_, err := chain.Complete(context.Background(), "prompt")
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("err = %v, want ErrExhausted", err)
	}
}

func TestChain_BudgetSkipsProvider(t *testing.T) {
	limited := &fakeProvider{name: "limited", response: "never"}
	open := &fakeProvider{name: "open", response: "served"}
	budget := NewBudget(map[string]int{"limited": 1}, 0)
	budget.Use("limited") // exhaust

	chain := NewChain([]Provider{limited, open}, budget, nil, time.Second)
	got, err := chain.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "served" || limited.calls != 0 {
		t.Errorf("over-budget provider was called (calls=%d, got=%q)", limited.calls, got)
	}
}

func TestChain_CacheHitSkipsProviders(t *testing.T) {
	p := &fakeProvider{name: "p", response: "fresh"}
	cache := NewCache(time.Minute)
	chain := NewChain([]Provider{p}, nil, cache, time.Second)

	for i := 0; i < 3; i++ {
		if _, err := chain.Complete(context.Background(), "same prompt"); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cache)", p.calls)
	}
}

func TestBudget_TotalCap(t *testing.T) {
	b := NewBudget(nil, 2)
	b.Use("x")
	b.Use("y")
	if b.Allow("z") {
		t.Error("total budget not enforced")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(-time.Second) // already expired
	c.Set("k", "v")
	if _, hit := c.Get("k"); hit {
		t.Error("expired entry served")
	}
}
