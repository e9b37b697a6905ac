package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"streamfinder/internal/catalog"
	"streamfinder/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; older databases must be cleared.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version differs from the
// one this build expects.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore keeps each namespace in its own table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Per-connection pragmas only hold when every statement shares one connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DiscoveryIDs(ctx context.Context, key string) ([]int64, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT ids_json FROM discover_results WHERE cache_key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query discovery ids: %w", err)
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false, fmt.Errorf("decode discovery ids: %w", err)
	}
	return ids, true, nil
}

func (s *SQLiteStore) PutDiscoveryIDs(ctx context.Context, key string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode discovery ids: %w", err)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO discover_results (cache_key, ids_json, updated_at) VALUES (?, ?, ?)
             ON CONFLICT(cache_key) DO UPDATE SET ids_json = excluded.ids_json, updated_at = excluded.updated_at`,
			key, string(data), now())
		if err != nil {
			return fmt.Errorf("upsert discovery ids: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Item(ctx context.Context, movieID int64) (Item, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT details_json FROM items WHERE movie_id = ?", movieID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{StreamingLinks: map[string]string{}}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("query item: %w", err)
	}
	item := Item{StreamingLinks: map[string]string{}}
	if err := json.Unmarshal([]byte(raw), &item.Details); err != nil {
		return Item{}, false, fmt.Errorf("decode item details: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT service, link FROM streaming_links WHERE movie_id = ?", movieID)
	if err != nil {
		return Item{}, false, fmt.Errorf("query streaming links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var service, link string
		if err := rows.Scan(&service, &link); err != nil {
			return Item{}, false, fmt.Errorf("scan streaming link: %w", err)
		}
		item.StreamingLinks[service] = link
	}
	if err := rows.Err(); err != nil {
		return Item{}, false, fmt.Errorf("iterate streaming links: %w", err)
	}
	return item, true, nil
}

func (s *SQLiteStore) PutItem(ctx context.Context, movieID int64, details catalog.MovieDetails) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode item details: %w", err)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM streaming_links WHERE movie_id = ?", movieID); err != nil {
			return fmt.Errorf("reset streaming links: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (movie_id, details_json, updated_at) VALUES (?, ?, ?)
             ON CONFLICT(movie_id) DO UPDATE SET details_json = excluded.details_json, updated_at = excluded.updated_at`,
			movieID, string(data), now())
		if err != nil {
			return fmt.Errorf("upsert item: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) StreamingLink(ctx context.Context, movieID int64, service string) (string, bool, error) {
	var link string
	err := s.db.QueryRowContext(ctx,
		"SELECT link FROM streaming_links WHERE movie_id = ? AND service = ?", movieID, service,
	).Scan(&link)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query streaming link: %w", err)
	}
	return link, true, nil
}

func (s *SQLiteStore) SetStreamingLink(ctx context.Context, movieID int64, service, link string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM items WHERE movie_id = ?", movieID).Scan(&count); err != nil {
			return fmt.Errorf("check item: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("set streaming link for %d: %w", movieID, ErrItemNotCached)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO streaming_links (movie_id, service, link, resolved_at) VALUES (?, ?, ?, ?)
             ON CONFLICT(movie_id, service) DO UPDATE SET link = excluded.link, resolved_at = excluded.resolved_at`,
			movieID, service, link, now())
		if err != nil {
			return fmt.Errorf("upsert streaming link: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: config.CacheBackendSQLite, Location: s.path}
	counts := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(1) FROM discover_results", &stats.DiscoveryKeys},
		{"SELECT COUNT(1) FROM items", &stats.Items},
		{"SELECT COUNT(1) FROM streaming_links", &stats.StreamingLinks},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("count rows: %w", err)
		}
	}
	return stats, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"streaming_links", "items", "discover_results"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
