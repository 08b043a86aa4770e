// Package trend defines the record that flows through the collection pipeline.
package trend

import (
	"time"
)

// Category is the topical bucket a trend belongs to. The constant order below
// is also the classification priority order: a trend matching keywords from
// several categories gets the highest-priority one.
type Category string

const (
	CategoryCMMCProgram     Category = "cmmc_program"
	CategoryNISTCompliance  Category = "nist_compliance"
	CategoryIntelThreats    Category = "intelligence_threats"
	CategoryInsiderThreats  Category = "insider_threats"
	CategoryDefenseIndustry Category = "defense_industrial_base"
	CategoryFederalCyber    Category = "federal_cybersecurity"
)

// Categories returns all valid categories in classification priority order.
// CategoryFederalCyber is the fallback when nothing matches.
func Categories() []Category {
	return []Category{
		CategoryCMMCProgram,
		CategoryNISTCompliance,
		CategoryIntelThreats,
		CategoryInsiderThreats,
		CategoryDefenseIndustry,
		CategoryFederalCyber,
	}
}

// ParseCategory maps a string to a known Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Trend is a single candidate story. All fields except Title and Source are
// best-effort: adapters fill whatever their feed exposes.
type Trend struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
	Score       float64   `json:"score"`
	Keywords    []string  `json:"keywords,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
	ImageURL    string    `json:"image_url,omitempty"`

	// OriginalCategory records the pre-correction category when the semantic
	// validator overrides the rule classifier. Kept for auditability.
	OriginalCategory Category `json:"original_category,omitempty"`

	// Exempt marks curated sources (LinkedIn influencer posts) that skip
	// relevance rejection but remain eligible for category correction.
	Exempt bool `json:"-"`

	// RejectionReason is set only on records moved to the rejected set.
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// HasTimestamp reports whether the publication time is known. Trends without
// a timestamp are never age-filtered and never recency-boosted.
func (t Trend) HasTimestamp() bool {
	return !t.Timestamp.IsZero()
}

// Age returns the trend age relative to now. Call only when HasTimestamp.
func (t Trend) Age(now time.Time) time.Duration {
	return now.Sub(t.Timestamp)
}

// Reject returns a copy of the trend with the rejection reason set.
func (t Trend) Reject(reason string) Trend {
	t.RejectionReason = reason
	return t
}
