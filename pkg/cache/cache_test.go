package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/XiaoConstantine/lexgo/pkg/config"
)

func TestCacheEntry_IsExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		entry    CacheEntry
		expected bool
	}{
		{
			name: "Entry not expired",
			entry: CacheEntry{
				Key:       "test",
				Value:     []byte("data"),
				ExpiresAt: now.Add(time.Hour),
				CreatedAt: now,
			},
			expected: false,
		},
		{
			name: "Entry expired",
			entry: CacheEntry{
				Key:       "test",
				Value:     []byte("data"),
				ExpiresAt: now.Add(-time.Hour),
				CreatedAt: now.Add(-2 * time.Hour),
			},
			expected: true,
		},
		{
			name: "Entry with zero expiration time (never expires)",
			entry: CacheEntry{
				Key:       "test",
				Value:     []byte("data"),
				ExpiresAt: time.Time{},
				CreatedAt: now,
			},
			expected: false,
		},
		{
			name: "Entry exactly at expiration time",
			entry: CacheEntry{
				Key:       "test",
				Value:     []byte("data"),
				ExpiresAt: now.Add(-time.Nanosecond),
				CreatedAt: now.Add(-time.Hour),
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.entry.IsExpired(now)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNewCache(t *testing.T) {
	tests := []struct {
		name         string
		config       Config
		expectedType string
	}{
		{
			name: "Memory store",
			config: Config{
				Type:       "memory",
				TTL:        time.Hour,
				MaxEntries: 16,
			},
			expectedType: "*cache.MemoryStore",
		},
		{
			name: "SQLite store",
			config: Config{
				Type: "sqlite",
				Path: ":memory:",
				TTL:  time.Hour,
			},
			expectedType: "*cache.SQLiteStore",
		},
		{
			name: "Default to memory store for unknown type",
			config: Config{
				Type: "unknown",
				TTL:  time.Hour,
			},
			expectedType: "*cache.MemoryStore",
		},
		{
			name: "Empty type defaults to memory",
			config: Config{
				Type: "",
				TTL:  time.Hour,
			},
			expectedType: "*cache.MemoryStore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := NewCache(tt.config)

			assert.NoError(t, err)
			assert.NotNil(t, cache)
			assert.Equal(t, tt.expectedType, fmt.Sprintf("%T", cache))

			if cache != nil {
				cache.Close()
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, time.Hour, cfg.TTL)
	assert.Equal(t, 4096, cfg.MaxEntries)
	assert.NotNil(t, cfg.Clock)
}

func TestLoadConfig(t *testing.T) {
	t.Run("nil section yields defaults", func(t *testing.T) {
		cfg := LoadConfig(nil)
		assert.Equal(t, DefaultConfig().Type, cfg.Type)
		assert.Equal(t, DefaultConfig().TTL, cfg.TTL)
		assert.Equal(t, DefaultConfig().MaxEntries, cfg.MaxEntries)
	})

	t.Run("section values override defaults", func(t *testing.T) {
		cfg := LoadConfig(&config.CacheConfig{
			Enabled:    true,
			Type:       "sqlite",
			Path:       "/tmp/lookups.db",
			TTL:        30 * time.Minute,
			MaxEntries: 128,
		})
		assert.Equal(t, "sqlite", cfg.Type)
		assert.Equal(t, "/tmp/lookups.db", cfg.Path)
		assert.Equal(t, 30*time.Minute, cfg.TTL)
		assert.Equal(t, 128, cfg.MaxEntries)
	})

	t.Run("unset fields keep defaults", func(t *testing.T) {
		cfg := LoadConfig(&config.CacheConfig{Enabled: true})
		assert.Equal(t, "memory", cfg.Type)
		assert.Equal(t, time.Hour, cfg.TTL)
		assert.Equal(t, 4096, cfg.MaxEntries)
	})
}

func TestIsEnabled(t *testing.T) {
	assert.False(t, IsEnabled(nil))
	assert.False(t, IsEnabled(&config.CacheConfig{Enabled: false}))
	assert.True(t, IsEnabled(&config.CacheConfig{Enabled: true}))
}
