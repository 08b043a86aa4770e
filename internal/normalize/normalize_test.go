package normalize

import (
	"strings"
	"testing"
)

func TestCleanHTML_StripsMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "DoD updates CMMC guidance", "DoD updates CMMC guidance"},
		{"simple tags", "<p>DoD updates <b>CMMC</b> guidance</p>", "DoD updates CMMC guidance"},
		{"whitespace collapse", "DoD   updates\n\nCMMC\tguidance ", "DoD updates CMMC guidance"},
		{"nested markup", "<div><a href='x'>NIST 800-171</a> revision <span>3</span></div>", "NIST 800-171 revision 3"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHTML(tt.in); got != tt.want {
				t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate_ShortTextUnchanged(t *testing.T) {
	in := "Short title."
	if got := Truncate(in, 100); got != in {
		t.Errorf("Truncate left short text modified: %q", got)
	}
}

func TestTruncate_PrefersSentenceBoundary(t *testing.T) {
	first := strings.Repeat("a", 70) + "."
	in := first + " " + strings.Repeat("b", 100)
	got := Truncate(in, 100)
	if got != first {
		t.Errorf("expected cut at sentence boundary, got %q", got)
	}
}

func TestTruncate_SentenceBoundaryTooEarlyUsesWordBoundary(t *testing.T) {
	// Sentence ends at 10% of the budget, below the minimum fraction.
	in := "Short. " + strings.Repeat("word ", 40)
	got := Truncate(in, 100)
	if strings.HasSuffix(got, ".") && len(got) < 20 {
		t.Fatalf("cut at too-early sentence boundary: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis after word-boundary cut, got %q", got)
	}
	if len([]rune(got)) > 103 {
		t.Errorf("truncated text too long: %d runes", len([]rune(got)))
	}
}

func TestTruncate_NoBoundariesHardCut(t *testing.T) {
	in := strings.Repeat("x", 200)
	got := Truncate(in, 50)
	if got != strings.Repeat("x", 50)+"..." {
		t.Errorf("expected hard cut with ellipsis, got %q", got)
	}
}

func TestDescription_Bounded(t *testing.T) {
	in := "<p>" + strings.Repeat("defense contractor compliance news. ", 50) + "</p>"
	got := Description(in)
	if n := len([]rune(got)); n > MaxDescriptionLen+len("...") {
		t.Errorf("description length %d exceeds budget", n)
	}
	if strings.Contains(got, "<") {
		t.Errorf("markup survived normalization: %q", got)
	}
}
