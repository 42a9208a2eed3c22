// Package progress persists per-book reading position in SQLite so a reader
// can resume where playback stopped.
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Position is the last spoken location in a book.
type Position struct {
	Book      string
	Page      int
	Sentence  int
	UpdatedAt time.Time
}

// Store wraps a SQLite-backed reading position store.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Open creates or opens the progress database at path, creating parent
// directories as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, clock: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS positions (
    book TEXT PRIMARY KEY,
    page INTEGER NOT NULL,
    sentence INTEGER NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the position for a book.
func (s *Store) Save(ctx context.Context, book string, page, sentence int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO positions(book, page, sentence, updated_at)
		 VALUES(?, ?, ?, ?)
		 ON CONFLICT(book) DO UPDATE SET page=excluded.page, sentence=excluded.sentence, updated_at=excluded.updated_at`,
		book, page, sentence, s.clock().UTC())
	return err
}

// Load returns the saved position for a book, or ok=false when none exists.
func (s *Store) Load(ctx context.Context, book string) (Position, bool, error) {
	var p Position
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT book, page, sentence, updated_at FROM positions WHERE book = ?`, book).
		Scan(&p.Book, &p.Page, &p.Sentence, &updated)
	if err == sql.ErrNoRows {
		return Position{}, false, nil
	}
	if err != nil {
		return Position{}, false, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		p.UpdatedAt = ts
	}
	return p, true, nil
}

// List returns all saved positions ordered by most recently updated.
func (s *Store) List(ctx context.Context) ([]Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book, page, sentence, updated_at FROM positions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		var updated string
		if err := rows.Scan(&p.Book, &p.Page, &p.Sentence, &updated); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			p.UpdatedAt = ts
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the saved position for a book.
func (s *Store) Delete(ctx context.Context, book string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE book = ?`, book)
	return err
}
