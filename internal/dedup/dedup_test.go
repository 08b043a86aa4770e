package dedup

import (
	"testing"

	"github.com/fubak/cmmcwatch/internal/trend"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		window int
		want   string
	}{
		{"punctuation stripped", "Pentagon: $100M drone challenge!", 10, "pentagon 100m drone challenge"},
		{"window applied", "one two three four five six", 3, "one two three"},
		{"case folded", "CMMC Level 2", 10, "cmmc level 2"},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in, tt.window); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRatio_SimilarTitles(t *testing.T) {
	sim := TokenSequenceSimilarity{}
	a := NormalizeTitle("Pentagon announces $100M drone challenge", 10)
	b := NormalizeTitle("Pentagon announces $100M drone challenge program", 10)
	if r := sim.Ratio(a, b); r <= 0.8 {
		t.Errorf("near-identical titles ratio = %v, want > 0.8", r)
	}

	c := NormalizeTitle("NIST releases 800-171 revision 3 public draft", 10)
	if r := sim.Ratio(a, c); r > 0.5 {
		t.Errorf("unrelated titles ratio = %v, want low", r)
	}
}

func TestFilter_NearDuplicateKeepsFirstSeen(t *testing.T) {
	d := New(nil, 0.8, 10)
	batch := []trend.Trend{
		{Title: "Pentagon announces $100M drone challenge", Source: "a", URL: "https://a.example/1"},
		{Title: "Pentagon announces $100M drone challenge today", Source: "b", URL: "https://b.example/2"},
	}

	kept, rejected := d.Filter(batch)
	if len(kept) != 1 || len(rejected) != 1 {
		t.Fatalf("kept %d rejected %d, want 1/1", len(kept), len(rejected))
	}
	if kept[0].Source != "a" {
		t.Errorf("first-seen record not kept: %+v", kept[0])
	}
	if rejected[0].RejectionReason == "" {
		t.Error("rejected record missing reason")
	}
}

func TestFilter_URLDuplicate(t *testing.T) {
	d := New(nil, 0.8, 10)
	batch := []trend.Trend{
		{Title: "CMMC final rule published", URL: "https://example.com/x"},
		{Title: "Completely different headline entirely", URL: "https://example.com/x"},
	}

	kept, rejected := d.Filter(batch)
	if len(kept) != 1 {
		t.Fatalf("kept %d, want 1", len(kept))
	}
	if len(rejected) != 1 || rejected[0].RejectionReason != "duplicate url" {
		t.Errorf("url duplicate not rejected: %+v", rejected)
	}
}

func TestFilter_DistinctTitlesSurvive(t *testing.T) {
	d := New(nil, 0.8, 10)
	batch := []trend.Trend{
		{Title: "CMMC Level 2 assessment backlog grows", URL: "https://a.example/1"},
		{Title: "CISA director nomination advances in Senate", URL: "https://a.example/2"},
		{Title: "Insider threat case hits defense subcontractor", URL: "https://a.example/3"},
	}

	kept, rejected := d.Filter(batch)
	if len(kept) != 3 || len(rejected) != 0 {
		t.Errorf("kept %d rejected %d, want 3/0", len(kept), len(rejected))
	}
}

func TestFilter_DegenerateBatches(t *testing.T) {
	d := New(nil, 0.8, 10)

	kept, rejected := d.Filter(nil)
	if len(kept) != 0 || len(rejected) != 0 {
		t.Errorf("empty batch mishandled")
	}

	single := []trend.Trend{{Title: "only one"}}
	kept, rejected = d.Filter(single)
	if len(kept) != 1 || len(rejected) != 0 {
		t.Errorf("single-record batch mishandled")
	}
}

func TestFilter_MissingURLsNeverCollide(t *testing.T) {
	d := New(nil, 0.8, 10)
	batch := []trend.Trend{
		{Title: "DFARS clause change briefing for contractors"},
		{Title: "Espionage indictment names former engineer"},
	}

	kept, _ := d.Filter(batch)
	if len(kept) != 2 {
		t.Errorf("records without URLs were merged, kept %d", len(kept))
	}
}
