// Package staging owns the per-run scratch directory. Every download and
// rendered image for one pipeline run lives under a single session
// directory that is removed on every exit path.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Session is a scoped temporary directory exclusively owned by one run.
type Session struct {
	dir    string
	closed bool
}

// NewSession creates a fresh run directory under baseDir.
func NewSession(baseDir string) (*Session, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("staging: base directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create base directory: %w", err)
	}
	dir, err := os.MkdirTemp(baseDir, "run-")
	if err != nil {
		return nil, fmt.Errorf("staging: create session directory: %w", err)
	}
	return &Session{dir: dir}, nil
}

// Dir returns the session directory path.
func (s *Session) Dir() string {
	return s.dir
}

// Path joins name onto the session directory.
func (s *Session) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Close removes the session directory and everything in it. Calling
// Close more than once is a no-op, so callers can defer it and still
// close early on failure paths.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("staging: remove session directory: %w", err)
	}
	return nil
}
