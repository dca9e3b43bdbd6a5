// Package cache persists detection results in SQLite so unchanged files are
// not sniffed again.
package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver.

	"github.com/yaklabco/gocharset/pkg/sniff"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory cache.
const MemoryPath = ":memory:"

// Key identifies one detection. A file whose size or mtime changed, a
// different inspection cap or different sniffer settings miss.
type Key struct {
	Path     string
	Size     int64
	ModTime  time.Time
	MaxBytes int

	// Settings fingerprints the sniffer options, see sniff.Options.Fingerprint.
	Settings string
}

// Store is a SQLite-backed detection cache. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the per-user cache database location.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}
	return filepath.Join(dir, "gocharset", "detections.db"), nil
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	dsn := path
	if path != MemoryPath {
		// Connection parameters apply to every pooled connection, unlike
		// the pragmas below which only reach the first one.
		dsn += "?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first.
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.addColumnIfNotExists("detections", "settings", "TEXT NOT NULL DEFAULT ''"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return store, nil
}

// addColumnIfNotExists upgrades databases created before column existed.
// Concurrent openers may race; "duplicate column name" counts as success.
func (s *Store) addColumnIfNotExists(table, column, definition string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("query table info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name, typ    string
			notNull, key int
			dflt         any
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &key); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}

	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)
	if err := execWithRetry(s.db, alter, 5, 10*time.Millisecond); err != nil {
		if strings.Contains(err.Error(), "duplicate column name") {
			return nil
		}
		return fmt.Errorf("alter table: %w", err)
	}
	return nil
}

// execWithRetry retries statements that hit "database is locked" while
// another process initialises the same file.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := range maxRetries {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	return nil
}

// Get returns the cached guess for key, with ok == false on a miss.
func (s *Store) Get(ctx context.Context, key Key) (sniff.Guess, bool, error) {
	const query = `SELECT charset, confidence, method, bom, inspected, truncated
		FROM detections
		WHERE path = ? AND size = ? AND mod_time = ? AND max_bytes = ? AND settings = ?`

	var (
		guess  sniff.Guess
		method string
	)
	err := s.db.QueryRowContext(ctx, query, key.Path, key.Size, key.ModTime.UnixNano(), key.MaxBytes, key.Settings).
		Scan(&guess.Name, &guess.Confidence, &method, &guess.BOM, &guess.Inspected, &guess.Truncated)
	if errors.Is(err, sql.ErrNoRows) {
		return sniff.Guess{}, false, nil
	}
	if err != nil {
		return sniff.Guess{}, false, fmt.Errorf("query detection %s: %w", key.Path, err)
	}

	guess.Method = sniff.Method(method)
	return guess, true, nil
}

// Put stores guess under key, replacing any earlier row for the same path.
func (s *Store) Put(ctx context.Context, key Key, guess sniff.Guess) error {
	const stmt = `INSERT INTO detections
		(path, size, mod_time, max_bytes, settings, charset, confidence, method, bom, inspected, truncated, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			max_bytes = excluded.max_bytes,
			settings = excluded.settings,
			charset = excluded.charset,
			confidence = excluded.confidence,
			method = excluded.method,
			bom = excluded.bom,
			inspected = excluded.inspected,
			truncated = excluded.truncated,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, stmt,
		key.Path, key.Size, key.ModTime.UnixNano(), key.MaxBytes, key.Settings,
		guess.Name, guess.Confidence, string(guess.Method), guess.BOM, guess.Inspected, guess.Truncated,
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store detection %s: %w", key.Path, err)
	}
	return nil
}

// Invalidate drops the row for path, if any.
func (s *Store) Invalidate(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM detections WHERE path = ?`, path); err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	return nil
}

// Prune removes rows last written before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM detections WHERE updated_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return n, nil
}

// Count returns the number of cached rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM detections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}
