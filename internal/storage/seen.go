package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// seenEntry records one published story for cross-run duplicate suppression.
type seenEntry struct {
	Hash   string    `json:"hash"`
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	SeenAt time.Time `json:"seen_at"`
	Source string    `json:"source"`
}

// SeenSet is a TTL'd set of already-published stories backed by a JSON file.
type SeenSet struct {
	filePath string
	ttl      time.Duration
	items    map[string]seenEntry
	mu       sync.RWMutex
}

func NewSeenSet(filePath string, ttl time.Duration) *SeenSet {
	return &SeenSet{
		filePath: filePath,
		ttl:      ttl,
		items:    make(map[string]seenEntry),
	}
}

// Load reads the set from disk, dropping expired entries. A missing file is
// an empty set, not an error.
func (s *SeenSet) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seen set: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("unmarshal seen set: %w", err)
	}

	cutoff := time.Now().Add(-s.ttl)
	for _, e := range entries {
		if e.SeenAt.After(cutoff) {
			s.items[e.Hash] = e
		}
	}
	return nil
}

// Save writes the current set to disk.
func (s *SeenSet) Save() error {
	s.mu.RLock()
	entries := make([]seenEntry, 0, len(s.items))
	for _, e := range s.items {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen set: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write seen set: %w", err)
	}
	return nil
}

// Hash builds a stable key from the normalized title and the URL's domain,
// so the same story republished under a tracking-parameter URL still matches.
func Hash(title, url string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(title))), " ")
	h := sha256.Sum256([]byte(normalized + "|" + extractDomain(url)))
	return hex.EncodeToString(h[:])[:16]
}

// Seen reports whether the story is in the set and unexpired.
func (s *SeenSet) Seen(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[hash]
	if !ok {
		return false
	}
	return e.SeenAt.After(time.Now().Add(-s.ttl))
}

// Mark adds a story to the set.
func (s *SeenSet) Mark(hash, title, url, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[hash] = seenEntry{
		Hash:   hash,
		Title:  title,
		URL:    url,
		SeenAt: time.Now(),
		Source: source,
	}
}

// Len returns the number of entries currently held.
func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func extractDomain(url string) string {
	if url == "" {
		return "unknown"
	}
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	domain := strings.SplitN(url, "/", 2)[0]
	domain = strings.TrimPrefix(domain, "www.")
	return strings.ToLower(domain)
}
