// Package settings stores named configuration blobs read and written
// wholesale: the category list, the template list and small scalars. Values
// are JSON documents; callers own the schema of each name.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Store reads and writes whole named values. Get returns (nil, nil) when the
// name has never been written.
type Store interface {
	Get(ctx context.Context, name string) (json.RawMessage, error)
	Put(ctx context.Context, name string, value json.RawMessage) error
}

const schema = `
CREATE TABLE IF NOT EXISTS settings (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// SQLite keeps settings in a table on an existing database handle, so the
// attribute store and settings share one file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite ensures the settings schema on db and returns the store.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply settings schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, name string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return json.RawMessage(value), nil
}

func (s *SQLite) Put(ctx context.Context, name string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, string(value),
	)
	if err != nil {
		return fmt.Errorf("failed to put setting %s: %w", name, err)
	}
	return nil
}

// Memory is an in-memory settings store for tests.
type Memory struct {
	values map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{values: map[string]json.RawMessage{}}
}

func (m *Memory) Get(_ context.Context, name string) (json.RawMessage, error) {
	value, ok := m.values[name]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), value...), nil
}

func (m *Memory) Put(_ context.Context, name string, value json.RawMessage) error {
	m.values[name] = append(json.RawMessage(nil), value...)
	return nil
}
