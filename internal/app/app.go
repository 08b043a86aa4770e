// Package app wires configuration, sources, the AI chain and the pipeline
// into a single run.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fubak/cmmcwatch/internal/classify"
	"github.com/fubak/cmmcwatch/internal/config"
	"github.com/fubak/cmmcwatch/internal/dedup"
	"github.com/fubak/cmmcwatch/internal/llm"
	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/metrics"
	"github.com/fubak/cmmcwatch/internal/pipeline"
	"github.com/fubak/cmmcwatch/internal/rank"
	"github.com/fubak/cmmcwatch/internal/retry"
	"github.com/fubak/cmmcwatch/internal/sources"
	"github.com/fubak/cmmcwatch/internal/storage"
	"github.com/fubak/cmmcwatch/internal/trend"
	"github.com/fubak/cmmcwatch/internal/validate"
)

// Run executes one collection cycle: fetch, filter, validate, rank, persist.
func Run(ctx context.Context, cfg *config.Config) error {
	feeds, err := sources.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return fmt.Errorf("load feeds: %w", err)
	}

	keywords := cfg.AllKeywords()
	feedRetry := retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}
	srcs := []pipeline.Sourcer{
		sources.NewRSS(feeds, keywords, cfg.MaxPerFeed, cfg.MinTitleLength, feedRetry),
		sources.NewReddit(keywords, cfg.MaxPerSubreddit, cfg.MinTitleLength, feedRetry),
		sources.NewLinkedIn(cfg.ApifyAPIKey, cfg.LinkedInProfiles, cfg.LinkedInMaxPosts, cfg.LinkedInMaxProfile, cfg.RequestTimeout),
	}

	chain, cleanup, err := buildChain(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var completer validate.Completer
	if chain != nil {
		completer = chain
	} else {
		logger.Warn("no AI provider configured, semantic validation disabled")
	}

	validator := validate.New(completer, validate.WithMaxAge(cfg.MaxStoryAge))

	pipe := pipeline.New(pipeline.Params{
		Sources:     srcs,
		Classifier:  classify.New(cfg.Rules(), trend.CategoryFederalCyber, 1.0, 3.0),
		Deduper:     dedup.New(nil, cfg.DedupThreshold, cfg.DedupTokenWindow),
		Validator:   validator,
		Ranker:      rank.New(cfg.Buckets()),
		MinTrends:   cfg.MinTrends,
		MaxKeywords: cfg.MaxKeywords,
	})

	result, err := pipe.Run(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}

	published, err := persist(cfg, result)
	if err != nil {
		return err
	}

	metrics.Global.SetLastRun()
	logDigest(published)
	return nil
}

// buildChain assembles the provider fallback chain from whatever keys are
// configured. Order matters: Groq first for speed, Gemini last as the slow
// but reliable fallback.
func buildChain(ctx context.Context, cfg *config.Config) (*llm.Chain, func(), error) {
	cleanup := func() {}
	if !cfg.HasAIProvider() {
		return nil, cleanup, nil
	}

	var providers []llm.Provider
	if cfg.GroqAPIKey != "" {
		providers = append(providers, llm.NewGroq(cfg.GroqAPIKey))
	}
	if cfg.OpenRouterAPIKey != "" {
		providers = append(providers, llm.NewOpenRouter(cfg.OpenRouterAPIKey))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("Gemini unavailable", "error", err)
		} else {
			providers = append(providers, gemini)
			cleanup = gemini.Close
		}
	}
	if len(providers) == 0 {
		return nil, cleanup, nil
	}

	limits := make(map[string]int, len(providers))
	for _, p := range providers {
		limits[p.Name()] = cfg.MaxAIRequests
	}

	chain := llm.NewChain(providers, llm.NewBudget(limits, cfg.MaxAITotal), llm.NewCache(cfg.AICacheTTL), cfg.AITimeout)
	return chain, cleanup, nil
}

// persist filters out stories published in a previous run, saves the
// snapshot, and marks the survivors as seen.
func persist(cfg *config.Config, result *pipeline.Result) ([]trend.Trend, error) {
	seen := storage.NewSeenSet(filepath.Join(cfg.DataDir, "seen.json"), cfg.SeenTTL)
	if err := seen.Load(); err != nil {
		logger.Warn("seen set unreadable, starting fresh", "error", err)
	}

	var fresh []trend.Trend
	for _, t := range result.Trends {
		if seen.Seen(storage.Hash(t.Title, t.URL)) {
			continue
		}
		fresh = append(fresh, t)
	}
	skipped := len(result.Trends) - len(fresh)
	if skipped > 0 {
		logger.Info("skipping already-published stories", "count", skipped)
	}

	store := storage.NewStore(cfg.DataDir)
	snap := storage.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Count:       len(fresh),
		Trends:      fresh,
		Keywords:    result.Keywords,
	}
	if err := store.SaveSnapshot(snap, result.Rejected); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	for _, t := range fresh {
		seen.Mark(storage.Hash(t.Title, t.URL), t.Title, t.URL, t.Source)
	}
	if err := seen.Save(); err != nil {
		logger.Warn("could not save seen set", "error", err)
	}
	return fresh, nil
}

func logDigest(published []trend.Trend) {
	byCategory := make(map[trend.Category]int)
	for _, t := range published {
		byCategory[t.Category]++
	}
	for _, c := range trend.Categories() {
		if byCategory[c] > 0 {
			logger.Info("category digest", "category", c, "stories", byCategory[c])
		}
	}
	for i, t := range published {
		if i >= 5 {
			break
		}
		logger.Info("top story", "rank", i+1, "category", t.Category, "score", fmt.Sprintf("%.2f", t.Score), "title", t.Title)
	}
}
