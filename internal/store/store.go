// Package store persists table snapshots as JSON files, one per table.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/game"
)

const snapshotExt = ".json"

var (
	// ErrNotFound is returned when no snapshot exists for a table.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidID is returned for ids that cannot name a file.
	ErrInvalidID = errors.New("invalid table id")
)

// Store reads and writes table snapshots under a directory.
type Store struct {
	dir    string
	logger *log.Logger
}

// New opens a store rooted at dir, creating the directory if needed.
func New(dir string, logger *log.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{dir: dir, logger: logger.WithPrefix("store")}, nil
}

// Dir returns the directory snapshots are written to.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+snapshotExt), nil
}

// Save writes the table's complete state, replacing any earlier snapshot.
func (s *Store) Save(t *game.Table) error {
	path, err := s.path(t.ID())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal table %s: %w", t.ID(), err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save table %s: %w", t.ID(), err)
	}
	s.logger.Debug("Saved snapshot", "table", t.ID(), "bytes", len(data))
	return nil
}

// Load restores a table. Options supply the runtime collaborators that are
// not persisted; see game.UnmarshalTable.
func (s *Store) Load(id string, opts ...game.TableOption) (*game.Table, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", id, err)
	}
	t, err := game.UnmarshalTable(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", id, err)
	}
	s.logger.Debug("Loaded snapshot", "table", id)
	return t, nil
}

// List returns the ids of every stored table, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapshotExt) || strings.Contains(name, ".tmp.") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, snapshotExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// Delete removes a table's snapshot. Deleting a missing snapshot is not an
// error.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete table %s: %w", id, err)
	}
	return nil
}
