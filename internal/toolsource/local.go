package toolsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LocalStore keeps the table in a JSON file on disk. The parsed table is
// held in memory and re-read only when the file's size or modification time
// changes, so a table rewritten by another process is picked up on the next
// Get.
type LocalStore struct {
	path string

	mu      sync.Mutex
	cached  *Snapshot
	modTime time.Time
	size    int64
}

// NewLocalStore returns a store backed by path. An empty path disables the
// store: Get finds nothing and Set discards the table.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// Get returns the table in the file, or nil if the file does not exist.
func (s *LocalStore) Get(_ context.Context) (*Snapshot, error) {
	if s.path == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.cached = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat tool sources file: %w", err)
	}
	if s.cached != nil && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tool sources file: %w", err)
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to parse tool sources file: %w", err)
	}

	s.cached, s.modTime, s.size = snap, info.ModTime(), info.Size()
	return snap, nil
}

// Set replaces the file. Readers never observe a partially written table.
func (s *LocalStore) Set(_ context.Context, snap *Snapshot) error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tool sources: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create tool sources directory: %w", err)
	}
	if err := replaceFile(dir, s.path, data); err != nil {
		return err
	}
	s.cached = nil
	return nil
}

// replaceFile writes data to a sibling temp file and renames it over path.
func replaceFile(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create tool sources temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmpName, 0o644)
	}
	if werr == nil {
		werr = os.Rename(tmpName, path)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write tool sources file: %w", werr)
	}
	return nil
}

// Close is a no-op.
func (s *LocalStore) Close() error {
	return nil
}
