package cache

import (
	"context"
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/config"
	"github.com/XiaoConstantine/lexgo/pkg/core"
)

// Cache defines the interface for caching lookup responses.
type Cache interface {
	// Get retrieves a cached value by key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given key and TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error

	// Stats returns cache statistics.
	Stats() CacheStats

	// Close releases any resources held by the cache.
	Close() error
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Sets       int64     `json:"sets"`
	Deletes    int64     `json:"deletes"`
	Entries    int64     `json:"entries"`
	MaxEntries int64     `json:"max_entries"`
	LastAccess time.Time `json:"last_access"`
}

// CacheEntry represents a cached item.
type CacheEntry struct {
	Key        string    `json:"key"`
	Value      []byte    `json:"value"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

// IsExpired checks whether the entry has expired at the given instant.
// Entries with a zero expiry never expire.
func (e *CacheEntry) IsExpired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Config holds cache configuration.
type Config struct {
	// Type of cache: "memory" or "sqlite"
	Type string `json:"type" yaml:"type"`

	// Path to the SQLite database file; unused by the memory store
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Default TTL for cache entries (0 = no expiration)
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// Maximum number of entries (0 = unlimited)
	MaxEntries int `json:"max_entries" yaml:"max_entries"`

	// Clock supplies the instant used for expiry checks. Defaults to the
	// system clock; tests inject a fake to step through TTL windows.
	Clock core.Clock `json:"-" yaml:"-"`
}

// DefaultConfig returns the cache configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Type:       "memory",
		TTL:        time.Hour,
		MaxEntries: 4096,
		Clock:      core.SystemClock,
	}
}

// LoadConfig maps the file-level cache section onto a cache Config,
// filling defaults for anything the section leaves unset.
func LoadConfig(fileConfig *config.CacheConfig) Config {
	cfg := DefaultConfig()
	if fileConfig == nil {
		return cfg
	}
	if fileConfig.Type != "" {
		cfg.Type = fileConfig.Type
	}
	if fileConfig.Path != "" {
		cfg.Path = fileConfig.Path
	}
	if fileConfig.TTL > 0 {
		cfg.TTL = fileConfig.TTL
	}
	if fileConfig.MaxEntries > 0 {
		cfg.MaxEntries = fileConfig.MaxEntries
	}
	return cfg
}

// IsEnabled reports whether the file-level cache section enables caching.
func IsEnabled(fileConfig *config.CacheConfig) bool {
	return fileConfig != nil && fileConfig.Enabled
}

// NewCache creates a new cache instance based on the configuration.
func NewCache(config Config) (Cache, error) {
	if config.Clock == nil {
		config.Clock = core.SystemClock
	}
	switch config.Type {
	case "memory":
		return NewMemoryStore(config)
	case "sqlite":
		return NewSQLiteStore(config)
	default:
		// Default to the memory store
		return NewMemoryStore(config)
	}
}
