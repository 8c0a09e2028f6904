// Package buildid collects GNU build IDs and writes them out as an ids.txt
// style index.
package buildid

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildIDStore = (*Store)(nil)

// Store accumulates build-ID to file mappings. Safe for concurrent use.
type Store struct {
	mu  sync.Mutex
	ids map[string]string
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{ids: make(map[string]string)}
}

// Add records one build ID. Re-adding the same ID overwrites the previous
// path, matching a rebuild of the same binary.
func (s *Store) Add(buildID, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[buildID] = path
}

// Save writes the index to path, one "<id> <file>" line per entry, sorted by
// ID.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	lines := make([]string, 0, len(s.ids))
	for id, file := range s.ids {
		lines = append(lines, fmt.Sprintf("%s %s\n", id, file))
	}
	s.mu.Unlock()
	sort.Strings(lines)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", dir)
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), 0o600); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write build-ID index"), "path", path)
	}
	return nil
}
