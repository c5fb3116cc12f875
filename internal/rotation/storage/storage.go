// Package storage persists rotation run records as JSON files so past runs
// can be audited after the process exits.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/systmms/keyrotate/internal/rotation"
)

// Store writes one JSON file per rotation run under a base directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// New creates a run store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultDir returns the default run-history directory.
func DefaultDir() string {
	if dir := os.Getenv("KEYROTATE_HISTORY_DIR"); dir != "" {
		return dir
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "keyrotate", "runs")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "keyrotate", "runs")
	}

	return filepath.Join(os.TempDir(), "keyrotate", "runs")
}

// SaveRun persists one rotation result. The filename is derived from the
// run's start time, so listing in name order is listing in time order.
func (s *Store) SaveRun(res *rotation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0700); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	filename := filepath.Join(s.baseDir, res.StartedAt.Format("20060102-150405.000000000")+".json")
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}

	return nil
}

// ListRuns returns past runs, newest first. A limit of zero or less returns
// everything. A missing base directory means no history, not an error.
func (s *Store) ListRuns(limit int) ([]rotation.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []rotation.Result{}, nil
		}
		return nil, fmt.Errorf("failed to read run directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() > files[j].Name()
	})

	var runs []rotation.Result
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, file.Name()))
		if err != nil {
			continue
		}
		var res rotation.Result
		if err := json.Unmarshal(data, &res); err != nil {
			continue
		}
		runs = append(runs, res)
		if limit > 0 && len(runs) >= limit {
			break
		}
	}

	return runs, nil
}
