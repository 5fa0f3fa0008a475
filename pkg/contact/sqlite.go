package contact

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/go-drift/nodeward/pkg/errors"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is a Store backed by a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS contact_submissions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		industry TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_created ON contact_submissions(created_at)`,
}

// Open opens or creates the database at path and migrates its schema.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (*SQLiteStore, error) {
	const op = "contact.Open"
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.New(op, errors.KindStorage, fmt.Errorf("create directory: %w", err))
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.New(op, errors.KindStorage, fmt.Errorf("open database: %w", err))
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers on the file.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.New("contact.migrate", errors.KindStorage, err)
		}
	}
	return nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string { return s.path }

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, sub Submission) (Submission, error) {
	sub.ID = uuid.NewString()
	sub.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, name, email, industry, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Email, sub.Industry, sub.Message, sub.CreatedAt.UnixMilli())
	if err != nil {
		return Submission{}, errors.New("contact.Insert", errors.KindStorage, err)
	}
	return sub, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Submission, error) {
	const op = "contact.List"
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, industry, message, created_at FROM contact_submissions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, errors.New(op, errors.KindStorage, err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		var created int64
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Industry, &sub.Message, &created); err != nil {
			return nil, errors.New(op, errors.KindStorage, err)
		}
		sub.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(op, errors.KindStorage, err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
