package classify

import (
	"testing"

	"github.com/fubak/cmmcwatch/internal/trend"
)

func testClassifier() *Classifier {
	rules := []Rule{
		{Category: trend.CategoryCMMCProgram, Keywords: []string{"cmmc", "c3pao", "cyber-ab"}, Weight: 0.3},
		{Category: trend.CategoryNISTCompliance, Keywords: []string{"nist 800-171", "dfars", "fedramp"}, Weight: 0.2},
		{Category: trend.CategoryDefenseIndustry, Keywords: []string{"defense contractor", "pentagon"}, Weight: 0.1},
	}
	return New(rules, trend.CategoryFederalCyber, 1.0, 3.0)
}

func TestClassify_PriorityOrder(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		name  string
		title string
		want  trend.Category
	}{
		{"top priority wins", "CMMC assessment and DFARS clause update", trend.CategoryCMMCProgram},
		{"second priority", "DFARS 7012 and Pentagon contract news", trend.CategoryNISTCompliance},
		{"third priority", "Pentagon awards new defense contractor deal", trend.CategoryDefenseIndustry},
		{"fallback", "Generic agency IT modernization", trend.CategoryFederalCyber},
		{"case insensitive", "New C3PAO Accredited", trend.CategoryCMMCProgram},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.title, ""); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.title, got, tt.want)
			}
		})
	}
}

func TestScore_MonotonicUpToCap(t *testing.T) {
	c := testClassifier()

	none := c.Score("agency modernization update", "")
	one := c.Score("cmmc news", "")
	two := c.Score("cmmc and c3pao news", "")
	three := c.Score("cmmc c3pao cyber-ab news", "")

	if none != 1.0 {
		t.Errorf("base score = %v, want 1.0", none)
	}
	if !(one > none && two > one && three > two) {
		t.Errorf("score not monotone in match count: %v %v %v %v", none, one, two, three)
	}
}

func TestScore_NeverExceedsCap(t *testing.T) {
	rules := []Rule{
		{Category: trend.CategoryCMMCProgram, Keywords: []string{"cmmc", "c3pao", "cyber-ab"}, Weight: 0.3},
		{Category: trend.CategoryNISTCompliance, Keywords: []string{"nist 800-171", "dfars", "fedramp"}, Weight: 0.2},
	}
	c := New(rules, trend.CategoryFederalCyber, 1.0, 2.0)
	loaded := "cmmc c3pao cyber-ab nist 800-171 dfars fedramp"
	if got := c.Score(loaded, loaded); got != 2.0 {
		t.Errorf("score %v, want capped at 2.0", got)
	}
}

func TestScore_CombinesWeightedSets(t *testing.T) {
	c := testClassifier()
	got := c.Score("cmmc and dfars update", "")
	want := 1.0 + 0.3 + 0.2
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestApply_Idempotent(t *testing.T) {
	c := testClassifier()
	tr := trend.Trend{
		Title:       "CMMC Level 2 assessments and DFARS changes",
		Description: "Pentagon briefing on defense contractor readiness",
		Source:      "cmmc_rss_test",
	}

	c.Apply(&tr)
	cat1, score1 := tr.Category, tr.Score
	c.Apply(&tr)

	if tr.Category != cat1 || tr.Score != score1 {
		t.Errorf("Apply not idempotent: (%s, %v) then (%s, %v)", cat1, score1, tr.Category, tr.Score)
	}
}

func TestMatchedKeywords(t *testing.T) {
	c := testClassifier()
	got := c.MatchedKeywords("CMMC and Pentagon news", "")
	want := map[string]bool{"cmmc": true, "pentagon": true}
	if len(got) != len(want) {
		t.Fatalf("MatchedKeywords = %v", got)
	}
	for _, kw := range got {
		if !want[kw] {
			t.Errorf("unexpected keyword %q", kw)
		}
	}
}
