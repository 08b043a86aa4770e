package sources

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/metrics"
	"github.com/fubak/cmmcwatch/internal/normalize"
	"github.com/fubak/cmmcwatch/internal/retry"
	"github.com/fubak/cmmcwatch/internal/trend"
)

type subreddit struct {
	name string
	url  string
	// wholesale subreddits are on-topic by construction and skip the
	// keyword pre-filter.
	wholesale bool
}

var defaultSubreddits = []subreddit{
	{name: "CMMC", url: "https://www.reddit.com/r/CMMC/.rss", wholesale: true},
	{name: "NISTControls", url: "https://www.reddit.com/r/NISTControls/.rss", wholesale: true},
	{name: "FederalEmployees", url: "https://www.reddit.com/r/FederalEmployees/.rss"},
	{name: "cybersecurity", url: "https://www.reddit.com/r/cybersecurity/.rss"},
	{name: "GovContracting", url: "https://www.reddit.com/r/GovContracting/.rss"},
}

// Reddit collects from compliance and federal community feeds.
type Reddit struct {
	subreddits  []subreddit
	keywords    []string
	maxPerSub   int
	minTitleLen int
	retry       retry.Config
	parser      *gofeed.Parser
}

func NewReddit(keywords []string, maxPerSub, minTitleLen int, retryCfg retry.Config) *Reddit {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &Reddit{
		subreddits:  defaultSubreddits,
		keywords:    keywords,
		maxPerSub:   maxPerSub,
		minTitleLen: minTitleLen,
		retry:       feedRetryOrDefault(retryCfg),
		parser:      parser,
	}
}

func (s *Reddit) Name() string { return "reddit" }

func (s *Reddit) Fetch(ctx context.Context) ([]trend.Trend, error) {
	var out []trend.Trend
	succeeded := 0

	for _, sub := range s.subreddits {
		items, err := s.fetchSubreddit(ctx, sub)
		if err != nil {
			logger.Warn("subreddit failed", "subreddit", sub.name, "error", err)
			metrics.Global.IncrementSourceFailures()
			continue
		}
		out = append(out, items...)
		succeeded++
	}

	logger.Info("Reddit collection done", "subreddits_ok", succeeded, "stories", len(out))
	if succeeded == 0 && len(s.subreddits) > 0 {
		return nil, fmt.Errorf("all %d subreddits failed", len(s.subreddits))
	}
	return out, nil
}

func (s *Reddit) fetchSubreddit(ctx context.Context, sub subreddit) ([]trend.Trend, error) {
	var parsed *gofeed.Feed
	err := retry.Do(ctx, s.retry, func() error {
		var err error
		parsed, err = s.parser.ParseURLWithContext(sub.url, ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	var out []trend.Trend
	for _, item := range parsed.Items {
		if len(out) >= s.maxPerSub {
			break
		}

		title := normalize.Collapse(item.Title)
		if len(title) < s.minTitleLen {
			continue
		}

		description := normalize.Description(item.Description)
		if !sub.wholesale && !matchesAny(title+" "+description, s.keywords) {
			continue
		}

		out = append(out, trend.Trend{
			Title:       normalize.Title(title),
			Source:      "r/" + sub.name,
			URL:         item.Link,
			Description: description,
			Timestamp:   itemTime(item),
			ImageURL:    extractImage(item),
		})
	}
	return out, nil
}
