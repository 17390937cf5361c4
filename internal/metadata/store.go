// Package metadata implements the single-writer relational index over
// filesystem entries and blob references: path/id lookups, atomic batch
// creation, and transactional semantics with savepoint-based nesting,
// embedded on modernc.org/sqlite (pure Go, no cgo).
package metadata

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/durablefs/vfs/internal/cache"
)

//go:embed schema.sql
var schemaSQL string

// defaultPathCacheTTL and defaultPathCacheSize seed the path-lookup cache
// before a caller tunes it via SetPathCacheOptions from config.CacheConfig.
const (
	defaultPathCacheTTL  = 60 * time.Second
	defaultPathCacheSize = 10000
)

// Store is the metadata engine's single-writer handle to the database.
type Store struct {
	db       *sql.DB
	savepointSeq atomic.Int64

	txTimeout time.Duration
	pathCache *cache.Cache[*Entry]
}

// SetTransactionTimeout bounds how long a top-level WithTx call may run
// before it is aborted and reported as EBUSY to the caller. Zero (the
// default) disables the bound. Nested savepoints share the timeout of
// their enclosing transaction and aren't bounded individually.
func (s *Store) SetTransactionTimeout(d time.Duration) {
	s.txTimeout = d
}

// SetPathCacheOptions replaces the path-lookup cache with one sized per
// ttl/maxEntries, discarding whatever was cached under the old settings.
// ttl <= 0 disables the cache entirely (every GetByPath call hits SQLite).
func (s *Store) SetPathCacheOptions(ttl time.Duration, maxEntries int) {
	if ttl <= 0 {
		s.pathCache = nil
		return
	}
	s.pathCache = cache.New[*Entry](ttl, maxEntries)
}

// Open opens or creates the SQLite-backed metadata store at dbPath and
// runs startup recovery over the transaction log. Unlike a disposable
// cache, this store is authoritative: an incompatible schema is a hard
// error rather than a silent delete-and-recreate.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create metadata directory: %w", err)
		}
	}

	escapedPath := strings.ReplaceAll(dbPath, " ", "%20")
	connStr := "file:" + escapedPath + "?_time_format=sqlite"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open metadata database: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer: serialize everything through one connection

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	s := &Store{db: db}
	s.SetPathCacheOptions(defaultPathCacheTTL, defaultPathCacheSize)
	if err := s.recoverTransactions(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("recover transaction log: %w", err)
	}
	return s, nil
}

// Close stops the path cache's cleanup goroutine and closes the
// underlying database connection.
func (s *Store) Close() error {
	if s.pathCache != nil {
		s.pathCache.Stop()
	}
	return s.db.Close()
}

// DB returns the underlying connection for callers that need raw access
// (migrations, integrity sweeps).
func (s *Store) DB() *sql.DB {
	return s.db
}

// recoverTransactions marks any transaction_log row left "in_progress" by a
// prior incarnation as rolled back. The underlying SQLite engine's own
// journal/WAL replay already undid the data changes on open; this only
// reconciles the log's bookkeeping so getTransactionLog reports accurately.
func (s *Store) recoverTransactions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE transaction_log SET status = 'rolled_back', ended_at = (strftime('%s','now') * 1000)
		 WHERE status = 'in_progress'`)
	return err
}

// GetTransactionLog returns the most recent transaction log entries,
// newest first, bounded by limit.
func (s *Store) GetTransactionLog(ctx context.Context, limit int) ([]TransactionLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, status FROM transaction_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionLogEntry
	for rows.Next() {
		var e TransactionLogEntry
		var endedAt sql.NullInt64
		if err := rows.Scan(&e.ID, &e.StartedAt, &endedAt, &e.Status); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			e.EndedAt = &endedAt.Int64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
