// Package pipeline wires the collection, filtering, validation and ranking
// stages into a single run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fubak/cmmcwatch/internal/classify"
	"github.com/fubak/cmmcwatch/internal/dedup"
	"github.com/fubak/cmmcwatch/internal/keywords"
	"github.com/fubak/cmmcwatch/internal/logger"
	"github.com/fubak/cmmcwatch/internal/metrics"
	"github.com/fubak/cmmcwatch/internal/rank"
	"github.com/fubak/cmmcwatch/internal/trend"
	"github.com/fubak/cmmcwatch/internal/validate"
)

// Sourcer is a collection adapter. Fetch returns raw candidate records; an
// error means the whole adapter failed, not that zero items matched.
type Sourcer interface {
	Name() string
	Fetch(ctx context.Context) ([]trend.Trend, error)
}

// ErrNotEnoughTrends is returned when a run produces fewer records than the
// configured minimum. It is the only hard failure a run can report after
// collection: everything else degrades.
var ErrNotEnoughTrends = errors.New("not enough trends collected")

// Result is one pipeline run's output.
type Result struct {
	Trends   []trend.Trend
	Rejected []trend.Trend
	Keywords []string
}

// Params collects the pipeline's stage dependencies.
type Params struct {
	Sources     []Sourcer
	Classifier  *classify.Classifier
	Deduper     *dedup.Deduper
	Validator   *validate.Validator
	Ranker      *rank.Ranker
	MinTrends   int
	MaxKeywords int
}

type Pipeline struct {
	sources     []Sourcer
	classifier  *classify.Classifier
	deduper     *dedup.Deduper
	validator   *validate.Validator
	ranker      *rank.Ranker
	minTrends   int
	maxKeywords int
}

func New(p Params) *Pipeline {
	return &Pipeline{
		sources:     p.Sources,
		classifier:  p.Classifier,
		deduper:     p.Deduper,
		validator:   p.Validator,
		ranker:      p.Ranker,
		minTrends:   p.MinTrends,
		maxKeywords: p.MaxKeywords,
	}
}

// Run executes all stages in order. Stage failures other than the minimum
// count are absorbed: a failing source costs its items, an unavailable AI
// provider costs corrections, but the run continues.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRunDuration(time.Since(start))
	}()

	collected := p.collect(ctx)
	metrics.Global.AddCollected(len(collected))
	logger.Info("collection done", "stories", len(collected))

	for i := range collected {
		// Curated posts arrive pre-scored; everything else gets the rule
		// classifier's category, score and keyword hits.
		if collected[i].Score > 0 {
			t := &collected[i]
			t.Category = p.classifier.Classify(t.Title, t.Description)
			t.Keywords = p.classifier.MatchedKeywords(t.Title, t.Description)
		} else {
			p.classifier.Apply(&collected[i])
		}
	}

	result := &Result{}

	batch, rejected := p.validator.QuickFilter(collected)
	metrics.Global.AddRejectedByPattern(len(rejected))
	result.Rejected = append(result.Rejected, rejected...)

	batch, rejected = p.validator.FilterOld(batch)
	metrics.Global.AddRejectedByAge(len(rejected))
	result.Rejected = append(result.Rejected, rejected...)

	batch, rejected = p.deduper.Filter(batch)
	metrics.Global.AddRejectedDuplicates(len(rejected))
	result.Rejected = append(result.Rejected, rejected...)

	batch, rejected, corrections := p.validator.Validate(ctx, batch)
	metrics.Global.AddRejectedByAI(len(rejected))
	metrics.Global.AddCategoryCorrected(corrections)
	result.Rejected = append(result.Rejected, rejected...)

	batch, rejected = p.validator.Deduplicate(ctx, batch)
	metrics.Global.AddSemanticDuplicates(len(rejected))
	result.Rejected = append(result.Rejected, rejected...)

	result.Trends = p.ranker.Rank(batch)

	if len(result.Trends) < p.minTrends {
		return result, fmt.Errorf("%w: got %d, need %d", ErrNotEnoughTrends, len(result.Trends), p.minTrends)
	}

	result.Keywords = keywords.Top(result.Trends, p.maxKeywords)
	metrics.Global.AddPublished(len(result.Trends))

	logger.Info("pipeline done",
		"published", len(result.Trends),
		"rejected", len(result.Rejected),
		"corrections", corrections,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func (p *Pipeline) collect(ctx context.Context) []trend.Trend {
	var out []trend.Trend
	for _, src := range p.sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			logger.Error("source failed", "source", src.Name(), "error", err)
			metrics.Global.IncrementSourceFailures()
			continue
		}
		logger.Debug("source done", "source", src.Name(), "stories", len(items))
		out = append(out, items...)
	}
	return out
}
