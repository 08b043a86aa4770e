package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/normalize"
	"github.com/fubak/cmmcwatch/internal/trend"
)

type duplicateCluster struct {
	Keep   int   `json:"keep"`
	Remove []int `json:"remove"`
}

// Deduplicate asks the provider chain to cluster stories covering the same
// underlying event across different outlets and keeps one per cluster.
// Like Validate, it fails open on any provider or parse error.
func (v *Validator) Deduplicate(ctx context.Context, batch []trend.Trend) (kept, rejected []trend.Trend) {
	if len(batch) < 2 || v.ai == nil {
		return batch, nil
	}

	prompt := buildDedupePrompt(batch)
	response, err := v.ai.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("AI deduplication unavailable, keeping all stories", "error", err)
		return batch, nil
	}

	var clusters []duplicateCluster
	if err := decodeArray(response, &clusters); err != nil {
		logger.Warn("AI deduplication response unusable, keeping all stories", "error", err)
		return batch, nil
	}

	// A keep index from any usable cluster is immune: the canonical record
	// of one cluster may show up in another cluster's remove list and must
	// still survive.
	keepSet := make(map[int]bool)
	for _, c := range clusters {
		if usableCluster(c, len(batch)) {
			keepSet[c.Keep] = true
		}
	}

	remove := make(map[int]bool)
	for _, c := range clusters {
		if !usableCluster(c, len(batch)) {
			continue
		}
		// Bad indices are skipped one by one; the rest of the cluster still
		// applies, salvaging partially garbled responses.
		for _, idx := range c.Remove {
			if idx < 1 || idx > len(batch) || idx == c.Keep || keepSet[idx] {
				continue
			}
			remove[idx] = true
		}
	}

	for i, t := range batch {
		if remove[i+1] {
			rejected = append(rejected, t.Reject("semantic duplicate"))
		} else {
			kept = append(kept, t)
		}
	}
	return kept, rejected
}

// usableCluster requires an in-range keep and a non-empty remove list.
func usableCluster(c duplicateCluster, n int) bool {
	return c.Keep >= 1 && c.Keep <= n && len(c.Remove) > 0
}

func buildDedupePrompt(batch []trend.Trend) string {
	var list strings.Builder
	for i, t := range batch {
		fmt.Fprintf(&list, "%d. [%s] %s\n", i+1, t.Source, normalize.Truncate(t.Title, 80))
	}

	return fmt.Sprintf(`These are news story titles. Some may be about the SAME underlying story/event reported by different outlets.

Identify groups of duplicate stories (same event, different headlines).

STORIES:
%s
Respond with ONLY a valid JSON array of duplicate groups. Each group lists the story to KEEP and the stories to REMOVE:
[
  {"keep": 1, "remove": [5, 12]},
  {"keep": 3, "remove": [8]}
]

Prefer keeping the story with the most informative title. If there are no duplicates, respond with an empty array: []`, list.String())
}
