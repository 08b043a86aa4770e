package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/fubak/cmmcwatch/internal/retry"
)

func TestMatchesAny(t *testing.T) {
	keywords := []string{"cmmc", "nist 800-171"}

	tests := []struct {
		text string
		want bool
	}{
		{"DoD finalizes CMMC rule", true},
		{"NIST 800-171 Revision 3 released", true},
		{"Local sports roundup", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := matchesAny(tt.text, keywords); got != tt.want {
			t.Errorf("matchesAny(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestLoadFeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	content := `feeds:
  - name: FedScoop
    url: https://fedscoop.com/feed/
  - name: DefenseScoop
    url: https://defensescoop.com/feed/
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	feeds, err := LoadFeeds(path)
	if err != nil {
		t.Fatalf("LoadFeeds() error: %v", err)
	}
	if len(feeds) != 2 {
		t.Fatalf("got %d feeds, want 2", len(feeds))
	}
	if feeds[0].Name != "FedScoop" || feeds[0].URL != "https://fedscoop.com/feed/" {
		t.Errorf("first feed = %+v", feeds[0])
	}
}

func TestLoadFeeds_EmptyConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	if err := os.WriteFile(path, []byte("feeds: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFeeds(path); err == nil {
		t.Error("empty feed list should be an error")
	}
}

func TestRetryConfigPlumbing(t *testing.T) {
	cfg := retry.Config{MaxAttempts: 5, Delay: time.Second, Backoff: true}

	rss := NewRSS(nil, nil, 8, 10, cfg)
	if rss.retry.MaxAttempts != 5 || rss.retry.Delay != time.Second {
		t.Errorf("RSS retry = %+v, want the configured values", rss.retry)
	}

	reddit := NewReddit(nil, 15, 10, retry.Config{})
	if reddit.retry != defaultFeedRetry {
		t.Errorf("Reddit retry = %+v, want the default when unconfigured", reddit.retry)
	}
}

func TestExtractImage(t *testing.T) {
	tests := []struct {
		name string
		item *gofeed.Item
		want string
	}{
		{
			name: "media content image",
			item: &gofeed.Item{
				Extensions: ext.Extensions{
					"media": {
						"content": []ext.Extension{
							{Attrs: map[string]string{"medium": "image", "url": "https://cdn.example.com/a.jpg"}},
						},
					},
				},
			},
			want: "https://cdn.example.com/a.jpg",
		},
		{
			name: "media content by mime type",
			item: &gofeed.Item{
				Extensions: ext.Extensions{
					"media": {
						"content": []ext.Extension{
							{Attrs: map[string]string{"type": "image/png", "url": "https://cdn.example.com/b.png"}},
						},
					},
				},
			},
			want: "https://cdn.example.com/b.png",
		},
		{
			name: "enclosure",
			item: &gofeed.Item{
				Enclosures: []*gofeed.Enclosure{
					{Type: "audio/mpeg", URL: "https://cdn.example.com/pod.mp3"},
					{Type: "image/jpeg", URL: "https://cdn.example.com/c.jpg"},
				},
			},
			want: "https://cdn.example.com/c.jpg",
		},
		{
			name: "nothing",
			item: &gofeed.Item{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractImage(tt.item); got != tt.want {
				t.Errorf("extractImage() = %q, want %q", got, tt.want)
			}
		})
	}
}
