// Package pendingstore stashes serialized pending-action records so a
// half-filled action survives a disconnect. Records are JSON, compressed
// with zstd, keyed by handle in a SQLite table. Committed game history never
// passes through here; the store holds uncommitted player input only.
package pendingstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"tablecraft.gg/internal/engine"
)

type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	mu  sync.Mutex // single-writer discipline, same as the rest of the engine
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty store path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS pending_actions (
		handle     TEXT PRIMARY KEY,
		player     TEXT NOT NULL,
		action     TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		record     BLOB NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, enc: enc, dec: dec}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Save upserts one pending record.
func (s *Store) Save(rec engine.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	blob := s.enc.EncodeAll(raw, nil)
	_, err = s.db.Exec(`INSERT INTO pending_actions (handle, player, action, updated_at, record)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET player=excluded.player, action=excluded.action,
			updated_at=excluded.updated_at, record=excluded.record;`,
		rec.Handle, rec.Player, rec.Action, time.Now().UnixMilli(), blob)
	return err
}

// Load fetches one record by handle. The second return is false when the
// handle is unknown.
func (s *Store) Load(handle string) (engine.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var blob []byte
	err := s.db.QueryRow(`SELECT record FROM pending_actions WHERE handle = ?;`, handle).Scan(&blob)
	if err == sql.ErrNoRows {
		return engine.Record{}, false, nil
	}
	if err != nil {
		return engine.Record{}, false, err
	}
	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return engine.Record{}, false, fmt.Errorf("decompress %s: %w", handle, err)
	}
	var rec engine.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return engine.Record{}, false, fmt.Errorf("decode %s: %w", handle, err)
	}
	return rec, true, nil
}

// Delete drops a record; unknown handles are a no-op.
func (s *Store) Delete(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM pending_actions WHERE handle = ?;`, handle)
	return err
}

// Handles lists stored handles for one player, oldest first.
func (s *Store) Handles(player string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT handle FROM pending_actions WHERE player = ? ORDER BY updated_at;`, player)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
