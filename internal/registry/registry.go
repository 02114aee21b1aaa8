// Package registry tracks dates whose upstream front-page document is
// known to be unusable. The set lives in a flat JSON file that is read
// once at run start and rewritten (sorted, deduplicated) after every
// mutation. Concurrent invocations are out of scope; there is no
// cross-process locking.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"frontpage/internal/dateinfo"
)

// Registry is the in-memory view of the corrupted-date file.
type Registry struct {
	path  string
	dates map[dateinfo.Date]struct{}
}

// Load reads the registry file. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	reg := &Registry{path: path, dates: make(map[dateinfo.Date]struct{})}
	if path == "" {
		return reg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reg, nil
		}
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	for _, entry := range entries {
		date, err := dateinfo.Parse(entry)
		if err != nil {
			return nil, fmt.Errorf("registry: entry %q in %s: %w", entry, path, err)
		}
		reg.dates[date] = struct{}{}
	}
	return reg, nil
}

// Contains reports whether the date is registered as corrupted.
func (r *Registry) Contains(date dateinfo.Date) bool {
	_, ok := r.dates[date]
	return ok
}

// Len returns the number of registered dates.
func (r *Registry) Len() int {
	return len(r.dates)
}

// Dates returns the registered dates in ascending order.
func (r *Registry) Dates() []dateinfo.Date {
	dates := make([]dateinfo.Date, 0, len(r.dates))
	for date := range r.dates {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Mark registers a date as corrupted and persists the file immediately.
// Marking an already-registered date is a reported no-op: added is false
// and the file is left untouched.
func (r *Registry) Mark(date dateinfo.Date) (added bool, err error) {
	if r.Contains(date) {
		return false, nil
	}
	r.dates[date] = struct{}{}
	if err := r.save(); err != nil {
		delete(r.dates, date)
		return false, err
	}
	return true, nil
}

func (r *Registry) save() error {
	if r.path == "" {
		return errors.New("registry: no file path configured")
	}
	dates := r.Dates()
	entries := make([]string, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, date.ISO())
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("registry: create directory: %w", err)
	}
	if err := os.WriteFile(r.path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", r.path, err)
	}
	return nil
}
