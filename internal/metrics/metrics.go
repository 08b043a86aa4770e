package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline counters for the monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	TrendsCollected    int64
	TrendsPublished    int64
	RejectedByPattern  int64
	RejectedByAge      int64
	RejectedDuplicates int64
	RejectedByAI       int64
	SemanticDuplicates int64
	CategoryCorrected  int64
	SourceFailures     int64
	ProviderFallbacks  int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrendsCollected += int64(n)
}

func (m *Metrics) AddPublished(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrendsPublished += int64(n)
}

func (m *Metrics) AddRejectedByPattern(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectedByPattern += int64(n)
}

func (m *Metrics) AddRejectedByAge(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectedByAge += int64(n)
}

func (m *Metrics) AddRejectedDuplicates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectedDuplicates += int64(n)
}

func (m *Metrics) AddRejectedByAI(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectedByAI += int64(n)
}

func (m *Metrics) AddSemanticDuplicates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SemanticDuplicates += int64(n)
}

func (m *Metrics) AddCategoryCorrected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CategoryCorrected += int64(n)
}

func (m *Metrics) IncrementSourceFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFailures++
}

func (m *Metrics) IncrementProviderFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProviderFallbacks++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"trends_collected":        m.TrendsCollected,
		"trends_published":        m.TrendsPublished,
		"rejected_by_pattern":     m.RejectedByPattern,
		"rejected_by_age":         m.RejectedByAge,
		"rejected_duplicates":     m.RejectedDuplicates,
		"rejected_by_ai":          m.RejectedByAI,
		"semantic_duplicates":     m.SemanticDuplicates,
		"category_corrected":      m.CategoryCorrected,
		"source_failures":         m.SourceFailures,
		"provider_fallbacks":      m.ProviderFallbacks,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
