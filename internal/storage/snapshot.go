// Package storage persists pipeline output and the cross-run seen set as
// JSON files under the data directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fubak/cmmcwatch/internal/trend"
)

// Snapshot is one pipeline run's output, written for downstream site builds.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Count       int           `json:"count"`
	Trends      []trend.Trend `json:"trends"`
	Keywords    []string      `json:"keywords,omitempty"`
}

// Store reads and writes pipeline data files.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// SaveSnapshot writes the run output to trends.json. Rejected records go to
// rejected.json separately so the main file stays presentation-ready.
func (s *Store) SaveSnapshot(snap Snapshot, rejected []trend.Trend) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := s.writeJSON("trends.json", snap); err != nil {
		return err
	}
	if len(rejected) > 0 {
		if err := s.writeJSON("rejected.json", rejected); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot reads the previous run's output, if any.
func (s *Store) LoadSnapshot() (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(filepath.Join(s.dir, "trends.json"))
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// writeJSON writes atomically: a partial write must never clobber the
// previous run's good data.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
