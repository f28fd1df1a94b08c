// Package persist stores tool state snapshots so that enabled flags survive
// process restarts. Stores hold one snapshot per tool type key.
package persist

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Snapshot is the persisted record of one tool's last observed state.
type Snapshot struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Enabled   bool            `json:"enabled"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// Store abstracts snapshot persistence for CLI (file) and daemon (SQLite)
// modes.
type Store interface {
	List(ctx context.Context) ([]Snapshot, error)
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	Upsert(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-memory Store for tests and ephemeral daemons.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

// List returns all snapshots in key-sorted order.
func (s *MemoryStore) List(ctx context.Context) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := make([]Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		snaps = append(snaps, snap)
	}
	sortSnapshots(snaps)
	return snaps, nil
}

// Get returns a snapshot by type key.
func (s *MemoryStore) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[key]
	return snap, ok, nil
}

// Upsert inserts or replaces a snapshot by type key.
func (s *MemoryStore) Upsert(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Key] = snap
	return nil
}

// Delete removes a snapshot; deleting a missing key is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
