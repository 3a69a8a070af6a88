// ABOUTME: Boot counter persisted in a single-value file store
// ABOUTME: Informational only; any storage failure silently falls back to the baseline
package bootcount

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const fileName = "boot_count"

// Store persists one integer across restarts. It is written exactly once at
// process start, before any concurrent worker exists, so there are no
// concurrent writers by construction.
type Store struct {
	path string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// Increment reads the persisted count, adds one, writes it back, and returns
// the new value. Missing or unreadable state defaults to the baseline; a
// failed write is logged and otherwise ignored. The counter is never allowed
// to affect control flow.
func (s *Store) Increment() int {
	count := 0
	if raw, err := os.ReadFile(s.path); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(string(raw))); err == nil && n >= 0 {
			count = n
		}
	}
	count++

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Warn().Err(err).Msg("boot counter state dir unavailable")
		return count
	}
	if err := os.WriteFile(s.path, []byte(strconv.Itoa(count)+"\n"), 0o644); err != nil {
		log.Warn().Err(err).Msg("failed to persist boot counter")
	}
	return count
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}
