package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const defaultReportDir = "./reports"

// ReportStore keeps rendered run reports in one directory tree.
type ReportStore struct {
	dir string
	now func() time.Time
}

// NewReportStore creates dir when missing. An empty dir falls back to ./reports.
func NewReportStore(dir string) (*ReportStore, error) {
	if dir == "" {
		dir = defaultReportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir %s: %w", dir, err)
	}
	return &ReportStore{dir: dir, now: time.Now}, nil
}

// Dir returns the root of the store.
func (s *ReportStore) Dir() string {
	return s.dir
}

// Save writes one report under the store root and returns its path. Names may contain
// subdirectories; absolute names and names escaping the root are rejected.
func (s *ReportStore) Save(name string, content []byte) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("report name %q outside %s", name, s.dir)
	}
	path := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create report subdir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", clean, err)
	}
	return path, nil
}

// Prune deletes reports last written more than retention ago and returns their names
// relative to the store root, sorted.
func (s *ReportStore) Prune(retention time.Duration) ([]string, error) {
	cutoff := s.now().Add(-retention)
	var removed []string
	walk := func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		name, relErr := filepath.Rel(s.dir, path)
		if relErr != nil {
			name = path
		}
		removed = append(removed, name)
		return nil
	}
	if err := filepath.WalkDir(s.dir, walk); err != nil {
		return removed, fmt.Errorf("prune reports older than %s: %w", retention, err)
	}
	sort.Strings(removed)
	return removed, nil
}
