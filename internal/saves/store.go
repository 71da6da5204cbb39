// Package saves keeps named scoreboard snapshots in an embedded sqlite
// database, so the server stays a single binary with no database service.
package saves

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/mkraus12/courtside/internal/models"
)

// ErrNotFound indicates a requested slot does not exist.
var ErrNotFound = errors.New("save not found")

// Store persists named snapshots.
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Open creates (or opens) the saves database at path and ensures the schema.
func Open(path string) (*Store, error) {
	return OpenWithClock(path, clockwork.NewRealClock())
}

// OpenWithClock is Open with an injectable clock for tests.
func OpenWithClock(path string, clock clockwork.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open saves db: %w", err)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			name TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			saved_at TIMESTAMP NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to init saves schema: %w", err)
		}
	}
	return &Store{db: db, clock: clock}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a snapshot under name, overwriting any existing slot. A blank
// name gets a timestamp name; the cleaned name is returned. The ".json"
// suffix from older file-based saves is kept for compatibility.
func (s *Store) Save(ctx context.Context, name string, state models.Scoreboard) (string, error) {
	name = SanitizeName(name)
	if name == "" {
		name = s.clock.Now().Format("20060102-150405")
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	body, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (name, body, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, saved_at = excluded.saved_at`,
		name, body, s.clock.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to store save %s: %w", name, err)
	}
	return name, nil
}

// Load returns the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (models.Scoreboard, error) {
	name = SanitizeName(name)
	if name == "" {
		return models.Scoreboard{}, ErrNotFound
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM saves WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Scoreboard{}, ErrNotFound
	}
	if err != nil {
		return models.Scoreboard{}, fmt.Errorf("failed to read save %s: %w", name, err)
	}
	var state models.Scoreboard
	if err := json.Unmarshal(body, &state); err != nil {
		return models.Scoreboard{}, fmt.Errorf("save %s holds invalid JSON: %w", name, err)
	}
	return state, nil
}

// List returns all slot names, newest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM saves ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan save name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SanitizeName keeps only [a-zA-Z0-9._-] and strips path separators, so a
// slot name can never escape into a path.
func SanitizeName(in string) string {
	in = strings.TrimSpace(in)
	in = strings.ReplaceAll(in, "\\", "")
	in = strings.ReplaceAll(in, "/", "")
	var b strings.Builder
	for _, r := range in {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
