package attrstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS attrs (
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (id, name)
);
`

// SQLite is the production attribute store, one row per (id, attribute name).
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file and ensures the
// attrs schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// DB exposes the underlying handle so sibling stores can share the same file.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, id string) (Attrs, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM attrs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attrs for %s: %w", id, err)
	}
	defer rows.Close()

	var attrs Attrs
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan attr row for %s: %w", id, err)
		}
		if attrs == nil {
			attrs = Attrs{}
		}
		attrs[name] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attrs for %s: %w", id, err)
	}
	return attrs, nil
}

// Put replaces the whole record at id with the given attributes.
func (s *SQLite) Put(ctx context.Context, id string, attrs Attrs) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin put for %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attrs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear attrs for %s: %w", id, err)
	}
	for name, value := range attrs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attrs (id, name, value) VALUES (?, ?, ?)`,
			id, name, string(value),
		); err != nil {
			return fmt.Errorf("failed to write attr %s for %s: %w", name, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit put for %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT id FROM attrs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attr ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attr id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attr ids: %w", err)
	}
	return ids, nil
}

func (s *SQLite) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM attrs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove attrs for %s: %w", id, err)
	}
	return nil
}
