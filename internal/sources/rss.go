package sources

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/metrics"
	"github.com/fubak/cmmcwatch/internal/normalize"
	"github.com/fubak/cmmcwatch/internal/retry"
	"github.com/fubak/cmmcwatch/internal/trend"
)

// defaultFeedRetry covers transient feed failures. Slow government feeds drop
// connections often enough that one attempt loses whole sources.
var defaultFeedRetry = retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}

func feedRetryOrDefault(cfg retry.Config) retry.Config {
	if cfg.MaxAttempts <= 0 {
		return defaultFeedRetry
	}
	return cfg
}

// Feed is a single named feed in the YAML config.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FeedsConfig is the YAML config structure:
//
//	feeds:
//	  - name: FedScoop
//	    url: https://fedscoop.com/feed/
type FeedsConfig struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds reads the feed list from a YAML file.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds config %s is empty", path)
	}
	return cfg.Feeds, nil
}

// RSS collects from the configured news feeds. Broad feeds are keyword
// pre-filtered so only on-topic stories enter the pipeline.
type RSS struct {
	feeds       []Feed
	keywords    []string
	maxPerFeed  int
	minTitleLen int
	retry       retry.Config
	parser      *gofeed.Parser
}

func NewRSS(feeds []Feed, keywords []string, maxPerFeed, minTitleLen int, retryCfg retry.Config) *RSS {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &RSS{
		feeds:       feeds,
		keywords:    keywords,
		maxPerFeed:  maxPerFeed,
		minTitleLen: minTitleLen,
		retry:       feedRetryOrDefault(retryCfg),
		parser:      parser,
	}
}

func (s *RSS) Name() string { return "rss" }

// Fetch downloads and filters all feeds. A failing feed is logged and
// skipped; the error return is reserved for total failure.
func (s *RSS) Fetch(ctx context.Context) ([]trend.Trend, error) {
	var out []trend.Trend
	succeeded := 0

	for _, feed := range s.feeds {
		items, err := s.fetchFeed(ctx, feed)
		if err != nil {
			logger.Warn("feed failed", "feed", feed.Name, "error", err)
			metrics.Global.IncrementSourceFailures()
			continue
		}
		out = append(out, items...)
		succeeded++
	}

	logger.Info("RSS collection done", "feeds_ok", succeeded, "feeds_total", len(s.feeds), "stories", len(out))
	if succeeded == 0 && len(s.feeds) > 0 {
		return nil, fmt.Errorf("all %d feeds failed", len(s.feeds))
	}
	return out, nil
}

func (s *RSS) fetchFeed(ctx context.Context, feed Feed) ([]trend.Trend, error) {
	var parsed *gofeed.Feed
	err := retry.Do(ctx, s.retry, func() error {
		var err error
		parsed, err = s.parser.ParseURLWithContext(feed.URL, ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	var out []trend.Trend
	for _, item := range parsed.Items {
		if len(out) >= s.maxPerFeed {
			break
		}

		title := normalize.Collapse(item.Title)
		if len(title) < s.minTitleLen {
			continue
		}

		description := normalize.Description(item.Description)
		if !matchesAny(title+" "+description, s.keywords) {
			continue
		}

		out = append(out, trend.Trend{
			Title:       normalize.Title(title),
			Source:      feed.Name,
			URL:         item.Link,
			Description: description,
			Timestamp:   itemTime(item),
			ImageURL:    extractImage(item),
		})
	}
	return out, nil
}

func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
