// Package runs tracks generation runs: identifier minting, the on-disk
// layout of a run directory, and an in-memory index from run ID to its
// artifacts.
package runs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run records the artifacts of one generation request. PDFPath is empty
// when compilation failed or was skipped.
type Run struct {
	ID      string
	Dir     string
	TexPath string
	PDFPath string
}

// Store is the in-memory run index plus the root directory runs live
// under. Safe for concurrent use.
type Store struct {
	root string

	mu   sync.RWMutex
	runs map[string]Run
}

// NewStore returns a Store rooted at dir.
func NewStore(root string) *Store {
	return &Store{root: root, runs: make(map[string]Run)}
}

// Root returns the directory runs are created under.
func (s *Store) Root() string {
	return s.root
}

// NewID mints a run identifier: a second-resolution timestamp plus a short
// random suffix so concurrent requests in the same second stay distinct.
func NewID() string {
	ts := time.Now().Format("20060102_150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return ts + "_" + suffix
}

// Create makes the run directory with its output and export subdirectories
// and registers the run in the index.
func (s *Store) Create(id string) (Run, error) {
	dir := filepath.Join(s.root, id)
	for _, sub := range []string{"output", "export"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return Run{}, fmt.Errorf("creating run directory: %w", err)
		}
	}
	run := Run{ID: id, Dir: dir}
	s.mu.Lock()
	s.runs[id] = run
	s.mu.Unlock()
	return run, nil
}

// Set stores or replaces the run record.
func (s *Store) Set(run Run) {
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()
}

// Get looks up a run by ID.
func (s *Store) Get(id string) (Run, bool) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	return run, ok
}

// FindTex returns the run's LaTeX artifact path. When the index entry has
// no recorded path (for instance after a process restart with the run
// directory still on disk), the run's output directory is scanned for the
// first .tex file.
func (s *Store) FindTex(id string) (string, error) {
	if run, ok := s.Get(id); ok && run.TexPath != "" {
		if _, err := os.Stat(run.TexPath); err == nil {
			return run.TexPath, nil
		}
	}

	outputDir := filepath.Join(s.root, id, "output")
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("run %s has no output directory: %w", id, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".tex") {
			return filepath.Join(outputDir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("run %s has no LaTeX artifact", id)
}

// FindPDF returns the run's PDF artifact path, scanning the export
// directory when the index has no usable record.
func (s *Store) FindPDF(id string) (string, error) {
	if run, ok := s.Get(id); ok && run.PDFPath != "" {
		if _, err := os.Stat(run.PDFPath); err == nil {
			return run.PDFPath, nil
		}
	}

	exportDir := filepath.Join(s.root, id, "export")
	entries, err := os.ReadDir(exportDir)
	if err != nil {
		return "", fmt.Errorf("run %s has no export directory: %w", id, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".pdf") {
			return filepath.Join(exportDir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("run %s has no PDF artifact", id)
}

// Cleanup removes the run directory and drops the index entry. Used when a
// generation fails partway so half-written runs do not accumulate.
func (s *Store) Cleanup(id string) error {
	s.mu.Lock()
	delete(s.runs, id)
	s.mu.Unlock()
	return os.RemoveAll(filepath.Join(s.root, id))
}
