package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	fileStoreVersionV1  = "1"
	defaultCLIStoreDir  = ".devtools"
	defaultCLIStoreFile = "tools.json"
)

var errEmptyStorePath = errors.New("persist: file store path is empty")

type fileStoreDocument struct {
	Version   string     `json:"version"`
	Snapshots []Snapshot `json:"snapshots"`
}

// FileStore persists snapshots in a local JSON file. This store is intended
// for CLI mode.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed snapshot store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns the default snapshot file path for CLI mode,
// ~/.devtools/tools.json.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("persist: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultCLIStoreDir, defaultCLIStoreFile), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// List returns all snapshots in deterministic (key-sorted) order.
func (s *FileStore) List(ctx context.Context) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Get returns a snapshot by type key.
func (s *FileStore) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	snaps, err := s.List(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	for _, snap := range snaps {
		if snap.Key == key {
			return snap, true, nil
		}
	}
	return Snapshot{}, false, nil
}

// Upsert inserts or updates a snapshot by type key.
func (s *FileStore) Upsert(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snaps, err := s.load()
	if err != nil {
		return err
	}

	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}

	index := -1
	for i := range snaps {
		if snaps[i].Key == snap.Key {
			index = i
			break
		}
	}
	if index >= 0 {
		snaps[index] = snap
	} else {
		snaps = append(snaps, snap)
	}
	return s.save(snaps)
}

// Delete removes a snapshot by type key. Deleting a missing key is a no-op.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snaps, err := s.load()
	if err != nil {
		return err
	}

	filtered := make([]Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		if snap.Key != key {
			filtered = append(filtered, snap)
		}
	}
	return s.save(filtered)
}

func (s *FileStore) load() ([]Snapshot, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, errEmptyStorePath
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Snapshot{}, nil
		}
		return nil, fmt.Errorf("persist: read snapshots: %w", err)
	}
	if len(data) == 0 {
		return []Snapshot{}, nil
	}

	var doc fileStoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("persist: decode snapshots: %w", err)
	}
	snaps := doc.Snapshots
	if snaps == nil {
		snaps = []Snapshot{}
	}
	sortSnapshots(snaps)
	return snaps, nil
}

func (s *FileStore) save(snaps []Snapshot) error {
	if strings.TrimSpace(s.path) == "" {
		return errEmptyStorePath
	}

	sortSnapshots(snaps)
	doc := fileStoreDocument{
		Version:   fileStoreVersionV1,
		Snapshots: snaps,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode snapshots: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("persist: create store dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("persist: write temp store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("persist: replace store file: %w", err)
	}
	return nil
}

func validateSnapshot(snap Snapshot) error {
	if strings.TrimSpace(snap.Key) == "" {
		return errors.New("persist: snapshot key is required")
	}
	return nil
}

func sortSnapshots(snaps []Snapshot) {
	slices.SortFunc(snaps, func(a, b Snapshot) int {
		return strings.Compare(a.Key, b.Key)
	})
}

var _ Store = (*FileStore)(nil)
