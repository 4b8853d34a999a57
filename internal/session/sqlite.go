package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Default location: $STOCKROOM_HOME/session.db, else ~/.stockroom/session.db.
const (
	envHome     = "STOCKROOM_HOME"
	homeDirName = ".stockroom"
	dbFilename  = "session.db"
)

// DefaultPath resolves where the session database lives when no explicit
// path is configured. The directory is created by OpenSQLite, not here.
func DefaultPath() (string, error) {
	if dir := os.Getenv(envHome); dir != "" {
		return filepath.Join(dir, dbFilename), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("session: resolve home directory: %w", err)
	}
	return filepath.Join(home, homeDirName, dbFilename), nil
}

// SQLiteStore persists session keys in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the store at path with WAL journaling.
// An empty path resolves to DefaultPath().
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	// the session holds a bearer token; keep the directory private
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS KeyValues (
            Key TEXT PRIMARY KEY,
            Value TEXT NOT NULL,
            UpdateTime TIMESTAMP NOT NULL
        );`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT Value FROM KeyValues WHERE Key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoKey
	}
	return v, err
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO KeyValues (Key, Value, UpdateTime) VALUES (?,?,?)
         ON CONFLICT(Key) DO UPDATE SET Value = excluded.Value, UpdateTime = excluded.UpdateTime`,
		key, value, time.Now().UTC())
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM KeyValues WHERE Key = ?`, key)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
