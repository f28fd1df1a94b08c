package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteStoreSchema = `
CREATE TABLE IF NOT EXISTS tool_snapshots (
	key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

const (
	defaultSQLiteStoreDir = ".devtools"
	defaultSQLiteStoreDB  = "devtools.db"
)

// SQLiteStoreConfig configures the SQLite-backed snapshot store.
type SQLiteStoreConfig struct {
	DSN string
}

// SQLiteStore persists snapshots in SQLite. This store is intended for
// daemon mode.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath returns the default SQLite path for daemon storage,
// ~/.devtools/devtools.db.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("persist: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultSQLiteStoreDir, defaultSQLiteStoreDB), nil
}

// NewSQLiteStore opens (or creates) a SQLite-backed snapshot store.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("persist: sqlite store dsn is required")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("persist: sqlite store open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persist: sqlite store set WAL mode: %w", err)
	}

	if _, err := db.Exec(sqliteStoreSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persist: sqlite store create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// List returns all snapshots in deterministic (key-sorted) order.
func (s *SQLiteStore) List(ctx context.Context) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, errors.New("persist: sqlite store is nil")
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT payload
FROM tool_snapshots
ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("persist: sqlite list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("persist: sqlite scan snapshot: %w", err)
		}
		snap, err := decodeSnapshot(payload)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: sqlite snapshot rows: %w", err)
	}
	return snaps, nil
}

// Get returns a snapshot by type key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	if s == nil || s.db == nil {
		return Snapshot{}, false, errors.New("persist: sqlite store is nil")
	}

	row := s.db.QueryRowContext(ctx, `
SELECT payload
FROM tool_snapshots
WHERE key = ?`, key)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("persist: sqlite get snapshot: %w", err)
	}

	snap, err := decodeSnapshot(payload)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Upsert inserts or updates a snapshot by type key.
func (s *SQLiteStore) Upsert(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("persist: sqlite store is nil")
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	now := time.Now().UTC()
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = now
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO tool_snapshots (key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	payload = excluded.payload,
	updated_at = excluded.updated_at`,
		snap.Key,
		payload,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("persist: sqlite upsert snapshot: %w", err)
	}
	return nil
}

// Delete removes a snapshot by type key. Deleting a missing key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("persist: sqlite store is nil")
	}

	if _, err := s.db.ExecContext(ctx, `
DELETE FROM tool_snapshots
WHERE key = ?`, key); err != nil {
		return fmt.Errorf("persist: sqlite delete snapshot: %w", err)
	}
	return nil
}

func decodeSnapshot(payload []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("persist: decode snapshot: %w", err)
	}
	return snap, nil
}

var _ Store = (*SQLiteStore)(nil)
