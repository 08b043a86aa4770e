package keywords

import (
	"testing"

	"github.com/fubak/cmmcwatch/internal/trend"
)

func TestTop_FrequencyOrder(t *testing.T) {
	batch := []trend.Trend{
		{Title: "CMMC assessment delays", Description: "cmmc backlog grows"},
		{Title: "CMMC rule finalized"},
		{Title: "Pentagon budget news"},
	}

	got := Top(batch, 10)
	if len(got) == 0 || got[0] != "cmmc" {
		t.Fatalf("expected cmmc as most frequent token, got %v", got)
	}
}

func TestTop_FiltersStopwordsAndShortTokens(t *testing.T) {
	batch := []trend.Trend{
		{Title: "What will come from this DoD cyber memo"},
	}

	for _, w := range Top(batch, 10) {
		switch w {
		case "what", "will", "from", "this", "dod":
			t.Errorf("token %q should have been filtered", w)
		}
	}
}

func TestTop_Limit(t *testing.T) {
	batch := []trend.Trend{
		{Title: "alpha bravo charlie delta echo foxtrot golf hotel india juliett"},
	}
	if got := Top(batch, 3); len(got) != 3 {
		t.Errorf("limit not applied, got %d tokens", len(got))
	}
}

func TestTop_EmptyBatch(t *testing.T) {
	if got := Top(nil, 10); len(got) != 0 {
		t.Errorf("empty batch produced tokens: %v", got)
	}
}

func TestTop_DeterministicTieBreak(t *testing.T) {
	batch := []trend.Trend{{Title: "zulu alpha"}}
	first := Top(batch, 10)
	second := Top(batch, 10)
	if len(first) != 2 || first[0] != "alpha" {
		t.Fatalf("expected alphabetical tie-break, got %v", first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic output: %v vs %v", first, second)
		}
	}
}
