package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database handle and applies the appointment schema.
type Storage struct {
	db *sql.DB
}

// Open establishes a SQLite connection for the provided DSN.
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}
	// database/sql pooling hands a second connection its own view of an
	// in-memory database; a single connection keeps reads and the CAS update
	// on the same handle.
	db.SetMaxOpenConns(1)
	return &Storage{db: db}, nil
}

// DB returns the underlying database handle.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS appointments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_name TEXT NOT NULL,
		client_phone TEXT NOT NULL,
		scheduled_at TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'confirmed', 'declined')),
		signing_salt TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments (status)`,
}

// Migrate applies the schema statements in order. Statements are idempotent
// so Migrate is safe to run on every startup.
func (s *Storage) Migrate(ctx context.Context) error {
	for i, statement := range migrations {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("sqlite: migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
