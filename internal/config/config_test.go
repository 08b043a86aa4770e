package config

import (
	"testing"
	"time"

	"github.com/fubak/cmmcwatch/internal/trend"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MinTrends != 5 {
		t.Errorf("MinTrends = %d, want 5", cfg.MinTrends)
	}
	if cfg.DedupThreshold != 0.8 {
		t.Errorf("DedupThreshold = %v, want 0.8", cfg.DedupThreshold)
	}
	if cfg.MaxStoryAge != 14*24*time.Hour {
		t.Errorf("MaxStoryAge = %v, want 14 days", cfg.MaxStoryAge)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MIN_TRENDS", "3")
	t.Setenv("MAX_STORY_AGE_DAYS", "7")
	t.Setenv("DEDUP_THRESHOLD", "0.9")
	t.Setenv("RETRY_ATTEMPTS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MinTrends != 3 {
		t.Errorf("MinTrends = %d, want 3", cfg.MinTrends)
	}
	if cfg.MaxStoryAge != 7*24*time.Hour {
		t.Errorf("MaxStoryAge = %v, want 7 days", cfg.MaxStoryAge)
	}
	if cfg.DedupThreshold != 0.9 {
		t.Errorf("DedupThreshold = %v, want 0.9", cfg.DedupThreshold)
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d, want 5", cfg.RetryAttempts)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := &Config{MinTrends: 0, DedupThreshold: 0.8, MaxStoryAge: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Error("MinTrends 0 should fail validation")
	}

	cfg = &Config{MinTrends: 5, DedupThreshold: 1.5, MaxStoryAge: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Error("DedupThreshold above 1 should fail validation")
	}
}

func TestRules_PriorityOrderMatchesCategories(t *testing.T) {
	cfg := &Config{}
	rules := cfg.Rules()
	categories := trend.Categories()

	if len(rules) != len(categories)-1 {
		t.Fatalf("%d rules for %d categories; fallback should have no rule", len(rules), len(categories))
	}
	for i, r := range rules {
		if r.Category != categories[i] {
			t.Errorf("rule %d category = %s, want %s", i, r.Category, categories[i])
		}
		if len(r.Keywords) == 0 {
			t.Errorf("rule %s has no keywords", r.Category)
		}
		if r.Weight <= 0 {
			t.Errorf("rule %s has non-positive weight", r.Category)
		}
	}
}

func TestAllKeywords_Deduplicated(t *testing.T) {
	cfg := &Config{}
	all := cfg.AllKeywords()

	seen := make(map[string]bool)
	for _, kw := range all {
		if seen[kw] {
			t.Errorf("duplicate keyword %q", kw)
		}
		seen[kw] = true
	}
	for _, want := range []string{"cmmc", "nist 800-171", "espionage", "insider threat", "cisa"} {
		if !seen[want] {
			t.Errorf("composite list missing %q", want)
		}
	}
}
