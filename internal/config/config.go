// Package config loads pipeline settings from the environment and carries the
// keyword rule sets that drive classification and scoring.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fubak/cmmcwatch/internal/classify"
	"github.com/fubak/cmmcwatch/internal/rank"
	"github.com/fubak/cmmcwatch/internal/trend"
)

type Config struct {
	// AI provider settings. All keys are optional: providers without a key
	// are skipped and the semantic stages degrade to pass-through.
	GroqAPIKey       string
	OpenRouterAPIKey string
	GeminiAPIKey     string
	MaxAIRequests    int // per provider per day (0 = unlimited)
	MaxAITotal       int // across all providers per day (0 = unlimited)
	AICacheTTL       time.Duration
	AITimeout        time.Duration

	// LinkedIn collection via Apify (optional).
	ApifyAPIKey        string
	LinkedInProfiles   []string
	LinkedInMaxPosts   int
	LinkedInMaxProfile int

	// Source settings
	FeedsConfigPath string
	MaxPerFeed      int
	MaxPerSubreddit int
	MinTitleLength  int
	RequestTimeout  time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration

	// Filtering and deduplication
	MaxStoryAge         time.Duration
	DedupThreshold      float64
	DedupLooseThreshold float64 // reserved for cross-run matching
	DedupTokenWindow    int

	// Quality gate: a run producing fewer trends than this fails outright.
	MinTrends int

	// Output
	DataDir     string
	SeenTTL     time.Duration
	MaxKeywords int

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		FeedsConfigPath:     "configs/feeds.yaml",
		MaxPerFeed:          8,
		MaxPerSubreddit:     15,
		MinTitleLength:      10,
		RequestTimeout:      20 * time.Second,
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
		MaxAIRequests:       50,
		MaxAITotal:          100,
		AICacheTTL:          6 * time.Hour,
		AITimeout:           60 * time.Second,
		LinkedInMaxPosts:    3,
		LinkedInMaxProfile:  4,
		MaxStoryAge:         14 * 24 * time.Hour,
		DedupThreshold:      0.8,
		DedupLooseThreshold: 0.7,
		DedupTokenWindow:    10,
		MinTrends:           5,
		DataDir:             "data",
		SeenTTL:             48 * time.Hour,
		MaxKeywords:         100,
		LinkedInProfiles:    defaultLinkedInProfiles,
	}

	// Load from environment
	cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GOOGLE_AI_API_KEY")
	cfg.ApifyAPIKey = os.Getenv("APIFY_API_KEY")

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.DataDir = getEnvOrDefault("DATA_DIR", cfg.DataDir)

	cfg.MaxPerFeed = getEnvIntOrDefault("MAX_PER_FEED", cfg.MaxPerFeed)
	cfg.MaxPerSubreddit = getEnvIntOrDefault("MAX_PER_SUBREDDIT", cfg.MaxPerSubreddit)
	cfg.MinTrends = getEnvIntOrDefault("MIN_TRENDS", cfg.MinTrends)
	cfg.MaxKeywords = getEnvIntOrDefault("MAX_KEYWORDS", cfg.MaxKeywords)
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)
	cfg.MaxAITotal = getEnvIntOrDefault("MAX_AI_TOTAL", cfg.MaxAITotal)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := os.Getenv("MAX_STORY_AGE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.MaxStoryAge = time.Duration(days) * 24 * time.Hour
		}
	}
	if v := os.Getenv("SEEN_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.SeenTTL = time.Duration(hours) * time.Hour
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("AI_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.AITimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("DEDUP_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.DedupThreshold = f
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.MinTrends < 1 {
		return fmt.Errorf("MIN_TRENDS must be at least 1")
	}
	if c.DedupThreshold <= 0 || c.DedupThreshold > 1 {
		return fmt.Errorf("DEDUP_THRESHOLD must be in (0, 1]")
	}
	if c.MaxStoryAge <= 0 {
		return fmt.Errorf("max story age must be positive")
	}
	return nil
}

// HasAIProvider reports whether at least one AI key is configured.
func (c *Config) HasAIProvider() bool {
	return c.GroqAPIKey != "" || c.OpenRouterAPIKey != "" || c.GeminiAPIKey != ""
}

// Rules returns the classification rule sets in priority order. A story
// matching several sets gets the first one's category; scoring sums matches
// across all sets at each set's weight.
func (c *Config) Rules() []classify.Rule {
	return []classify.Rule{
		{Category: trend.CategoryCMMCProgram, Weight: 0.3, Keywords: cmmcCoreKeywords},
		{Category: trend.CategoryNISTCompliance, Weight: 0.2, Keywords: nistKeywords},
		{Category: trend.CategoryIntelThreats, Weight: 0.2, Keywords: intelligenceKeywords},
		{Category: trend.CategoryInsiderThreats, Weight: 0.2, Keywords: insiderThreatKeywords},
		{Category: trend.CategoryDefenseIndustry, Weight: 0.15, Keywords: dibKeywords},
	}
}

// Buckets returns the recency boost table for ranking.
func (c *Config) Buckets() []rank.Bucket {
	return rank.DefaultBuckets()
}

// AllKeywords returns the composite keyword list used by source adapters to
// pre-filter broad feeds, deduplicated and in rule order.
func (c *Config) AllKeywords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range [][]string{
		cmmcCoreKeywords, nistKeywords, dibKeywords,
		intelligenceKeywords, insiderThreatKeywords, broadKeywords,
	} {
		for _, kw := range set {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

var cmmcCoreKeywords = []string{
	"cmmc",
	"c3pao",
	"cyber-ab",
	"cyberab",
	"cmmc 2.0",
	"cmmc level",
	"cmmc certification",
	"cmmc assessment",
	"cmmc compliance",
}

var nistKeywords = []string{
	"nist 800-171",
	"nist sp 800-171",
	"nist 800-172",
	"sp 800-172",
	"dfars",
	"dfars 252.204",
	"dfars 7012",
	"cui",
	"controlled unclassified",
	"fedramp",
	"fisma",
	"ato",
	"authority to operate",
}

var dibKeywords = []string{
	"defense industrial base",
	"dib",
	"defense contractor",
	"dod contractor",
	"cleared contractor",
	"defense contract",
	"pentagon",
	"dod cybersecurity",
}

var intelligenceKeywords = []string{
	"espionage",
	"spy",
	"spying",
	"spied",
	"foreign agent",
	"foreign intelligence",
	"counterintelligence",
	"counterespionage",
	"intelligence officer",
	"covert",
	"apt",
	"advanced persistent threat",
	"state-sponsored",
	"nation-state",
	"chinese hackers",
	"russian hackers",
	"north korean hackers",
	"iranian hackers",
	"gru",
	"fsb",
	"mss",
	"pla",
	"lazarus group",
	"apt29",
	"apt28",
	"cozy bear",
	"fancy bear",
	"volt typhoon",
	"salt typhoon",
	"cia",
	"fbi counterintelligence",
	"nsa",
	"dia",
	"five eyes",
	"dead drop",
	"handler",
	"asset recruitment",
	"classified information",
	"national security",
	"treason",
}

var insiderThreatKeywords = []string{
	"insider threat",
	"insider risk",
	"malicious insider",
	"trusted insider",
	"employee threat",
	"internal threat",
	"data exfiltration",
	"unauthorized disclosure",
	"dark web recruitment",
	"employee recruitment",
	"bribery",
	"compromised employee",
	"security clearance",
	"clearance revoked",
	"access abuse",
	"privilege abuse",
	"sabotage",
	"whistleblower",
	"leaker",
	"unauthorized access",
	"credential theft",
	"social engineering",
	"phishing employee",
	"fake identity",
	"fraudulent identity",
	"remote worker fraud",
	"contractor fraud",
}

// broadKeywords widen the adapter pre-filter beyond the weighted sets so
// borderline federal stories reach the semantic validator instead of being
// dropped at ingestion.
var broadKeywords = []string{
	"nist framework",
	"nist cybersecurity",
	"dfars compliance",
	"industrial security",
	"department of defense",
	"federal cybersecurity",
	"government compliance",
	"federal zero trust",
	"cisa",
	"cybersecurity agency",
	"federal cio",
	"government cyber",
	"federal it security",
	"defense cyber",
	"military cyber",
	"dod contract",
	"federal contract",
	"government contract award",
	"cleared defense",
	"supply chain security",
	"supply chain risk",
	"scrm",
}

// defaultLinkedInProfiles are the curated influencer accounts fetched via the
// Apify actor. Kept short to stay inside the free tier.
var defaultLinkedInProfiles = []string{
	"https://www.linkedin.com/in/katie-arrington-a6949425/",
	"https://www.linkedin.com/in/stacy-bostjanick-a3b67173/",
	"https://www.linkedin.com/in/matthewtravisdc/",
	"https://www.linkedin.com/in/amira-armond/",
}
