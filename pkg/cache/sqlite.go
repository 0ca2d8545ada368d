package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/lexgo/pkg/core"
)

// SQLiteStore implements the Cache interface using SQLite as storage.
//
// Entries survive process restarts, which makes this the store of choice
// for CLI invocations that would otherwise start cold every time. Expired
// rows are filtered out of reads and removed by CleanupExpired; nothing
// runs in the background.
type SQLiteStore struct {
	db     *sql.DB
	config Config
	clock  core.Clock
	stats  CacheStats
	mu     sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed cache.
func NewSQLiteStore(config Config) (*SQLiteStore, error) {
	if config.Path == "" {
		config.Path = "lexgo_cache.db"
	}
	clock := config.Clock
	if clock == nil {
		clock = core.SystemClock
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:     db,
		config: config,
		clock:  clock,
	}

	// Initialize database
	if err := store.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set other pragmas for performance
	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Log warning but don't fail
			log.Printf("Warning: failed to set pragma %s: %v", pragma, err)
		}
	}

	// Load initial stats
	store.loadStats()

	return store, nil
}

func (c *SQLiteStore) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS lookup_cache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER,
		created_at INTEGER NOT NULL,
		accessed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lookup_expires_at ON lookup_cache(expires_at) WHERE expires_at > 0;
	CREATE INDEX IF NOT EXISTS idx_lookup_accessed_at ON lookup_cache(accessed_at);
	`

	_, err := c.db.Exec(query)
	return err
}

func (c *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	atomic.AddInt64(&c.stats.Misses, 1) // Assume miss, will correct if hit

	query := `
	SELECT value FROM lookup_cache
	WHERE key = ? AND (expires_at = 0 OR expires_at > ?)
	`

	var value []byte
	now := c.clock.Now()

	err := c.db.QueryRowContext(ctx, query, key, now.UnixNano()).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	// Update access time
	updateQuery := `UPDATE lookup_cache SET accessed_at = ? WHERE key = ?`
	if _, err := c.db.ExecContext(ctx, updateQuery, now.UnixNano(), key); err != nil {
		// Log warning but don't fail the get operation
		log.Printf("Warning: failed to update access time: %v", err)
	}

	// Correct the stats
	atomic.AddInt64(&c.stats.Misses, -1)
	atomic.AddInt64(&c.stats.Hits, 1)
	c.setLastAccess(now)

	return value, true, nil
}

func (c *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.clock.Now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	} else if c.config.TTL > 0 {
		expiresAt = now.Add(c.config.TTL).UnixNano()
	}

	// Check whether the key already exists so eviction and the entry
	// count only consider genuinely new rows
	var existing int
	existingQuery := `SELECT 1 FROM lookup_cache WHERE key = ?`
	err := c.db.QueryRowContext(ctx, existingQuery, key).Scan(&existing)
	exists := err == nil

	if !exists && c.config.MaxEntries > 0 {
		if err := c.evictEntries(ctx); err != nil {
			return fmt.Errorf("failed to evict entries: %w", err)
		}
	}

	query := `
	INSERT OR REPLACE INTO lookup_cache (key, value, expires_at, created_at, accessed_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err = c.db.ExecContext(ctx, query, key, value, expiresAt, now.UnixNano(), now.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	// Update stats
	atomic.AddInt64(&c.stats.Sets, 1)
	if !exists {
		atomic.AddInt64(&c.stats.Entries, 1)
	}
	c.setLastAccess(now)

	return nil
}

func (c *SQLiteStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM lookup_cache WHERE key = ?`
	result, err := c.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		atomic.AddInt64(&c.stats.Deletes, 1)
		atomic.AddInt64(&c.stats.Entries, -rowsAffected)
	}

	return nil
}

func (c *SQLiteStore) Clear(ctx context.Context) error {
	query := `DELETE FROM lookup_cache`
	_, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	// Reset stats
	atomic.StoreInt64(&c.stats.Hits, 0)
	atomic.StoreInt64(&c.stats.Misses, 0)
	atomic.StoreInt64(&c.stats.Sets, 0)
	atomic.StoreInt64(&c.stats.Deletes, 0)
	atomic.StoreInt64(&c.stats.Entries, 0)

	// Vacuum to reclaim space
	if _, err := c.db.Exec("VACUUM"); err != nil {
		// Log warning but don't fail
		log.Printf("Warning: failed to vacuum after clear: %v", err)
	}

	return nil
}

func (c *SQLiteStore) Stats() CacheStats {
	c.mu.RLock()
	lastAccess := c.stats.LastAccess
	c.mu.RUnlock()

	return CacheStats{
		Hits:       atomic.LoadInt64(&c.stats.Hits),
		Misses:     atomic.LoadInt64(&c.stats.Misses),
		Sets:       atomic.LoadInt64(&c.stats.Sets),
		Deletes:    atomic.LoadInt64(&c.stats.Deletes),
		Entries:    atomic.LoadInt64(&c.stats.Entries),
		MaxEntries: int64(c.config.MaxEntries),
		LastAccess: lastAccess,
	}
}

func (c *SQLiteStore) Close() error {
	return c.db.Close()
}

// CleanupExpired removes all rows that have expired by now and returns how
// many were dropped.
func (c *SQLiteStore) CleanupExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM lookup_cache WHERE expires_at > 0 AND expires_at < ?`
	result, err := c.db.ExecContext(ctx, query, c.clock.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired entries: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		atomic.AddInt64(&c.stats.Entries, -rowsAffected)
	}

	return int(rowsAffected), nil
}

// evictEntries drops least-recently-accessed rows until there is room for
// one more entry under MaxEntries.
func (c *SQLiteStore) evictEntries(ctx context.Context) error {
	var count int64
	countQuery := `SELECT COUNT(*) FROM lookup_cache`
	if err := c.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return err
	}

	excess := count - int64(c.config.MaxEntries) + 1
	if excess <= 0 {
		return nil
	}

	deleteQuery := `
	DELETE FROM lookup_cache WHERE key IN (
		SELECT key FROM lookup_cache ORDER BY accessed_at ASC LIMIT ?
	)
	`
	result, err := c.db.ExecContext(ctx, deleteQuery, excess)
	if err != nil {
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		atomic.AddInt64(&c.stats.Entries, -rowsAffected)
	}

	return nil
}

func (c *SQLiteStore) loadStats() {
	var count int64
	query := `SELECT COUNT(*) FROM lookup_cache`
	if err := c.db.QueryRow(query).Scan(&count); err != nil {
		log.Printf("Warning: failed to load cache entry count: %v", err)
		return
	}
	atomic.StoreInt64(&c.stats.Entries, count)
}

func (c *SQLiteStore) setLastAccess(now time.Time) {
	c.mu.Lock()
	c.stats.LastAccess = now
	c.mu.Unlock()
}
