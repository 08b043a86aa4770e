// Package validate is the semantic stage of the pipeline: rule-based junk
// filtering, age filtering, and AI-backed relevance checking, category
// correction and duplicate-story clustering over a single batched request.
//
// Every AI-backed step fails open: when the provider chain is exhausted or
// the response is unusable, the batch passes through unchanged. Suppressing
// corrections is preferable to producing an empty output.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/normalize"
	"github.com/fubak/cmmcwatch/internal/trend"
)

// Completer is the slice of the llm chain the validator needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DefaultMaxStoryAge drops stale pinned posts from sources that never
// refresh publication dates.
const DefaultMaxStoryAge = 14 * 24 * time.Hour

// DefaultFutureTolerance absorbs ordinary feed clock skew. A timestamp
// further in the future than this is unreliable and gets clamped to now, so
// it cannot hoard the maximum recency boost downstream.
const DefaultFutureTolerance = time.Hour

// defaultIrrelevantPatterns catch obvious junk before any AI call: career
// threads, recurring community posts, personal stories.
var defaultIrrelevantPatterns = []string{
	`mentorship\s+monday`,
	`career\s+(question|advice)`,
	`looking\s+for\s+(job|work|position)`,
	`(hiring|job)\s+thread`,
	`certification\s+(training|advice|bootcamp)`,
	`^\[?megathread\]?`,
	`weekly\s+(discussion|thread)`,
	`daily\s+(discussion|thread)`,
	`^(leaving|quitting|my\s+experience)`,
}

// Validator runs the semantic stage.
type Validator struct {
	ai        Completer
	maxAge    time.Duration
	futureTol time.Duration
	patterns  []*regexp.Regexp
	now       func() time.Time
}

// Option tweaks validator construction.
type Option func(*Validator)

func WithMaxAge(d time.Duration) Option {
	return func(v *Validator) { v.maxAge = d }
}

func WithPatterns(patterns []string) Option {
	return func(v *Validator) { v.patterns = compilePatterns(patterns) }
}

func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New builds a validator. ai may be nil, in which case the AI-backed steps
// are no-ops.
func New(ai Completer, opts ...Option) *Validator {
	v := &Validator{
		ai:        ai,
		maxAge:    DefaultMaxStoryAge,
		futureTol: DefaultFutureTolerance,
		patterns:  compilePatterns(defaultIrrelevantPatterns),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// QuickFilter removes records matching an irrelevant pattern. Exempt records
// pass untouched: curated sources are not pattern-filtered.
func (v *Validator) QuickFilter(batch []trend.Trend) (kept, rejected []trend.Trend) {
	for _, t := range batch {
		if t.Exempt {
			kept = append(kept, t)
			continue
		}

		content := strings.ToLower(t.Title + " " + t.Description)
		matched := ""
		for _, re := range v.patterns {
			if re.MatchString(content) {
				matched = re.String()
				break
			}
		}

		if matched != "" {
			rejected = append(rejected, t.Reject("matched irrelevant pattern: "+matched))
		} else {
			kept = append(kept, t)
		}
	}
	return kept, rejected
}

// FilterOld drops records older than the max story age. Records without a
// timestamp pass through: absence is not evidence of staleness. Timestamps
// beyond the future tolerance are clamped to now on the way through.
func (v *Validator) FilterOld(batch []trend.Trend) (kept, rejected []trend.Trend) {
	now := v.now()
	cutoff := now.Add(-v.maxAge)
	for _, t := range batch {
		if t.HasTimestamp() && t.Timestamp.After(now.Add(v.futureTol)) {
			t.Timestamp = now
		}
		if t.HasTimestamp() && t.Timestamp.Before(cutoff) {
			rejected = append(rejected, t.Reject("too old: "+t.Timestamp.Format("2006-01-02")))
			continue
		}
		kept = append(kept, t)
	}
	return kept, rejected
}

type validationEntry struct {
	Index    int    `json:"index"`
	Relevant bool   `json:"relevant"`
	Category string `json:"category"`
	Reason   string `json:"reason,omitempty"`
}

// Validate sends the batch for relevance and category judgment and applies
// the verdicts. Returns the surviving records, the newly rejected records,
// and the number of category corrections.
func (v *Validator) Validate(ctx context.Context, batch []trend.Trend) (kept, rejected []trend.Trend, corrections int) {
	if len(batch) == 0 || v.ai == nil {
		return batch, nil, 0
	}

	prompt := buildValidationPrompt(batch)
	response, err := v.ai.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("AI validation unavailable, keeping all stories", "error", err)
		return batch, nil, 0
	}

	var entries []validationEntry
	if err := decodeArray(response, &entries); err != nil {
		logger.Warn("AI validation response unusable, keeping all stories", "error", err)
		return batch, nil, 0
	}

	byIndex := make(map[int]validationEntry, len(entries))
	for _, e := range entries {
		byIndex[e.Index] = e
	}

	for i, t := range batch {
		entry, addressed := byIndex[i+1]
		if !addressed {
			// Never silently drop a record the response skipped.
			kept = append(kept, t)
			continue
		}

		if !entry.Relevant && !t.Exempt {
			reason := entry.Reason
			if reason == "" {
				reason = "marked irrelevant by validator"
			}
			rejected = append(rejected, t.Reject(reason))
			continue
		}

		if corrected, ok := trend.ParseCategory(entry.Category); ok && corrected != t.Category {
			t.OriginalCategory = t.Category
			t.Category = corrected
			corrections++
		}
		kept = append(kept, t)
	}

	return kept, rejected, corrections
}

func buildValidationPrompt(batch []trend.Trend) string {
	var list strings.Builder
	for i, t := range batch {
		fmt.Fprintf(&list, "%d. Title: %s\n   Description: %s\n   Current Category: %s\n   Source: %s\n",
			i+1,
			normalize.Truncate(t.Title, 100),
			normalize.Truncate(t.Description, 150),
			t.Category,
			t.Source,
		)
	}

	return fmt.Sprintf(`You are a content moderator for CMMC Watch, a news aggregator focused on:
- CMMC (Cybersecurity Maturity Model Certification) program news
- NIST 800-171/800-172 compliance
- Defense Industrial Base (DIB) cybersecurity
- Federal cybersecurity policy affecting defense contractors
- Espionage, counterintelligence, and nation-state cyber threats
- Insider threats and security clearance issues

Analyze these %d stories and determine:
1. Is each story RELEVANT to CMMC Watch's focus? (true/false)
2. What is the CORRECT category? Choose from:
   - cmmc_program: Core CMMC news (CMMC certification, C3PAO, Cyber-AB, assessments)
   - nist_compliance: NIST frameworks, DFARS, FedRAMP, FISMA, CUI
   - intelligence_threats: Espionage, spying, nation-state hackers, APTs, foreign agents, counterintelligence
   - insider_threats: Insider risks, employee recruitment by adversaries, data exfiltration, dark web recruitment
   - defense_industrial_base: DoD contractors, Pentagon, defense contracts, DIB
   - federal_cybersecurity: CISA, federal cyber policy, government IT security
3. If irrelevant, WHY?

RELEVANT content includes (keep these!):
- Espionage cases (spying for China, Russia, etc.) - categorize as intelligence_threats
- Nation-state hacking (APT groups, Chinese/Russian/DPRK hackers) - categorize as intelligence_threats
- Insider threat cases and dark web recruitment - categorize as insider_threats
- Foreign agent arrests and indictments - categorize as intelligence_threats
- Security clearance issues - categorize as insider_threats

IRRELEVANT content includes:
- Career advice, job hunting, certification training questions
- Generic EU/NATO European political affairs (unless espionage-related)
- Generic cybersecurity news not specific to federal/defense/national security
- SEC, SBA, or other non-cyber federal agencies
- Personal career stories or rants
- AI deepfakes, consumer privacy (unless federal policy)
- Reddit community posts (Discord invites, megathreads)

STORIES TO VALIDATE:
%s
Respond with ONLY a valid JSON array. Each element must have:
- index: story number (1-based)
- relevant: boolean
- category: one of the valid categories
- reason: string (only if relevant=false, explain why)

Example:
[
  {"index": 1, "relevant": true, "category": "cmmc_program"},
  {"index": 2, "relevant": false, "category": "federal_cybersecurity", "reason": "Canadian financial news, not US federal"},
  {"index": 3, "relevant": true, "category": "defense_industrial_base"}
]`, len(batch), list.String())
}
