package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/metrics"
	"github.com/fubak/cmmcwatch/internal/normalize"
	"github.com/fubak/cmmcwatch/internal/trend"
)

const (
	apifyBaseURL       = "https://api.apify.com/v2"
	defaultApifyActor  = "apimaestro~linkedin-profile-posts"
	linkedInTimeLayout = "2006-01-02 15:04:05"
)

var profileUsernameRe = regexp.MustCompile(`linkedin\.com/in/([^/]+)`)

// LinkedIn collects recent posts from curated influencer profiles through an
// Apify actor. Posts from these profiles are marked exempt: they come from
// hand-picked practitioners and skip AI relevance rejection.
type LinkedIn struct {
	apiKey      string
	actor       string
	profiles    []string
	maxPosts    int
	maxProfiles int
	client      *http.Client
	now         func() time.Time
}

func NewLinkedIn(apiKey string, profiles []string, maxPosts, maxProfiles int, timeout time.Duration) *LinkedIn {
	actor := os.Getenv("APIFY_ACTOR_ID")
	if actor == "" {
		actor = defaultApifyActor
	}
	return &LinkedIn{
		apiKey:      apiKey,
		actor:       actor,
		profiles:    profiles,
		maxPosts:    maxPosts,
		maxProfiles: maxProfiles,
		client:      &http.Client{Timeout: timeout},
		now:         time.Now,
	}
}

func (s *LinkedIn) Name() string { return "linkedin" }

func (s *LinkedIn) Fetch(ctx context.Context) ([]trend.Trend, error) {
	if s.apiKey == "" {
		logger.Debug("APIFY_API_KEY not set, skipping LinkedIn collection")
		return nil, nil
	}

	profiles := s.profiles
	if len(profiles) > s.maxProfiles {
		logger.Warn("limiting LinkedIn profiles", "requested", len(profiles), "max", s.maxProfiles)
		profiles = profiles[:s.maxProfiles]
	}

	var out []trend.Trend
	succeeded := 0
	for _, profile := range profiles {
		username := profileUsername(profile)
		posts, err := s.fetchProfile(ctx, username)
		if err != nil {
			logger.Warn("LinkedIn profile failed", "profile", username, "error", err)
			metrics.Global.IncrementSourceFailures()
			continue
		}
		out = append(out, posts...)
		succeeded++
	}

	logger.Info("LinkedIn collection done", "profiles_ok", succeeded, "posts", len(out))
	if succeeded == 0 && len(profiles) > 0 {
		return nil, fmt.Errorf("all %d LinkedIn profiles failed", len(profiles))
	}
	return out, nil
}

// profileUsername extracts the username from a profile URL, e.g.
// https://www.linkedin.com/in/amira-armond/ -> amira-armond.
func profileUsername(profileURL string) string {
	if m := profileUsernameRe.FindStringSubmatch(profileURL); m != nil {
		return strings.TrimRight(m[1], "/")
	}
	return profileURL
}

// apifyPost is the relevant slice of the actor's dataset item format.
type apifyPost struct {
	Text     string `json:"text"`
	URL      string `json:"url"`
	PostType string `json:"post_type"`
	Author   struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		ProfileURL string `json:"profile_url"`
	} `json:"author"`
	PostedAt struct {
		Date string `json:"date"`
	} `json:"posted_at"`
	Stats struct {
		TotalReactions int `json:"total_reactions"`
		Comments       int `json:"comments"`
		Reposts        int `json:"reposts"`
	} `json:"stats"`
}

func (s *LinkedIn) fetchProfile(ctx context.Context, username string) ([]trend.Trend, error) {
	input, err := json.Marshal(map[string]any{
		"username":    username,
		"total_posts": s.maxPosts,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		apifyBaseURL, s.actor, url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("apify returned %d: %s", resp.StatusCode, body)
	}

	var items []apifyPost
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode apify response: %w", err)
	}

	var out []trend.Trend
	for _, item := range items {
		if t, ok := s.postToTrend(item); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *LinkedIn) postToTrend(post apifyPost) (trend.Trend, bool) {
	if post.Text == "" || post.PostType == "repost" {
		return trend.Trend{}, false
	}

	author := strings.TrimSpace(post.Author.FirstName + " " + post.Author.LastName)
	if author == "" {
		author = "Unknown"
	}

	excerpt := normalize.Truncate(normalize.Collapse(post.Text), 100)

	var ts time.Time
	if post.PostedAt.Date != "" {
		if parsed, err := time.Parse(linkedInTimeLayout, post.PostedAt.Date); err == nil {
			ts = parsed
		}
	}

	postURL := post.URL
	if postURL == "" {
		postURL = post.Author.ProfileURL
	}

	return trend.Trend{
		Title:       author + ": " + excerpt,
		Source:      "LinkedIn",
		URL:         postURL,
		Description: normalize.Description(post.Text),
		Score:       s.postScore(post, ts),
		Timestamp:   ts,
		Exempt:      true,
	}, true
}

// postScore rates a post by engagement and recency. Curated posts start
// above the feed baseline.
func (s *LinkedIn) postScore(post apifyPost, ts time.Time) float64 {
	score := 1.5

	engagement := float64(post.Stats.TotalReactions + post.Stats.Comments*2 + post.Stats.Reposts*3)
	boost := engagement / 100
	if boost > 1.0 {
		boost = 1.0
	}
	score += boost

	if !ts.IsZero() {
		age := s.now().Sub(ts)
		switch {
		case age < 24*time.Hour:
			score += 0.5
		case age < 72*time.Hour:
			score += 0.25
		}
	}
	return score
}
