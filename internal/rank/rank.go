// Package rank orders the final batch by recency-weighted score.
package rank

import (
	"sort"
	"time"

	"github.com/fubak/cmmcwatch/internal/trend"
)

// Bucket maps a maximum record age to an additive score boost. Buckets are
// evaluated in order; boosts must be non-increasing with age.
type Bucket struct {
	MaxAge time.Duration
	Boost  float64
}

// DefaultBuckets keeps the top of the page fresh without burying slower,
// higher-relevance stories.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{MaxAge: 6 * time.Hour, Boost: 0.5},
		{MaxAge: 12 * time.Hour, Boost: 0.4},
		{MaxAge: 24 * time.Hour, Boost: 0.3},
		{MaxAge: 48 * time.Hour, Boost: 0.2},
		{MaxAge: 72 * time.Hour, Boost: 0.1},
	}
}

// Ranker applies recency boosts and produces the final ordering.
type Ranker struct {
	buckets []Bucket
	now     func() time.Time
}

func New(buckets []Bucket) *Ranker {
	if len(buckets) == 0 {
		buckets = DefaultBuckets()
	}
	return &Ranker{buckets: buckets, now: time.Now}
}

// NewAt pins the clock; used by tests.
func NewAt(buckets []Bucket, now func() time.Time) *Ranker {
	r := New(buckets)
	r.now = now
	return r
}

// Boost returns the additive recency bonus for a trend. Records without a
// timestamp, and records older than the last bucket, get zero.
func (r *Ranker) Boost(t trend.Trend) float64 {
	if !t.HasTimestamp() {
		return 0
	}
	age := t.Age(r.now())
	if age < 0 {
		age = 0
	}
	for _, b := range r.buckets {
		if age < b.MaxAge {
			return b.Boost
		}
	}
	return 0
}

// Rank adds each record's recency boost to its score and stably sorts by
// final score descending. Equal-score records keep their input order, which
// derives from source iteration order.
func (r *Ranker) Rank(batch []trend.Trend) []trend.Trend {
	ranked := make([]trend.Trend, len(batch))
	copy(ranked, batch)

	for i := range ranked {
		ranked[i].Score += r.Boost(ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
