package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/core"
)

// ResponseCache stores lookup responses keyed by request. It sits between
// the engine and a byte-level Cache so callers never touch serialization
// or key construction.
//
// Only successful responses are stored. Failures always re-resolve, so a
// transient provider outage never poisons an hour of lookups for a word.
type ResponseCache struct {
	cache        Cache
	keyGenerator *KeyGenerator
	ttl          time.Duration
	enabled      atomic.Bool
}

// NewResponseCache creates a response cache over the given store.
func NewResponseCache(cache Cache, opts ...Option) *ResponseCache {
	rc := &ResponseCache{
		cache:        cache,
		keyGenerator: NewKeyGenerator("lexgo_"),
	}
	rc.enabled.Store(true)
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Get returns the cached response for the request, if one is stored and
// unexpired. A hit replays the stored response exactly as it was written.
func (rc *ResponseCache) Get(ctx context.Context, req *core.LookupRequest) (*core.LookupResponse, bool) {
	if !rc.enabled.Load() || rc.cache == nil {
		return nil, false
	}

	key := rc.keyGenerator.GenerateKey(req)
	cached, found, err := rc.cache.Get(ctx, key)
	if !found || err != nil {
		return nil, false
	}

	var response core.LookupResponse
	if err := json.Unmarshal(cached, &response); err != nil {
		// Treat undecodable entries as misses; the next Put overwrites them
		return nil, false
	}
	return &response, true
}

// Put stores a successful response under the request's key. Failed
// responses are ignored so the next request resolves fresh.
func (rc *ResponseCache) Put(ctx context.Context, req *core.LookupRequest, resp *core.LookupResponse) error {
	if !rc.enabled.Load() || rc.cache == nil {
		return nil
	}
	if resp == nil || !resp.Success {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	key := rc.keyGenerator.GenerateKey(req)
	return rc.cache.Set(ctx, key, data, rc.ttl)
}

// Key returns the cache key the request maps to.
func (rc *ResponseCache) Key(req *core.LookupRequest) string {
	return rc.keyGenerator.GenerateKey(req)
}

// SetEnabled enables or disables caching.
func (rc *ResponseCache) SetEnabled(enabled bool) {
	rc.enabled.Store(enabled)
}

// IsEnabled returns whether caching is enabled.
func (rc *ResponseCache) IsEnabled() bool {
	return rc.enabled.Load()
}

// Stats returns cache statistics.
func (rc *ResponseCache) Stats() CacheStats {
	if rc.cache == nil {
		return CacheStats{}
	}
	return rc.cache.Stats()
}

// Clear clears all cached entries.
func (rc *ResponseCache) Clear(ctx context.Context) error {
	if rc.cache == nil {
		return nil
	}
	return rc.cache.Clear(ctx)
}

// Close closes the underlying store.
func (rc *ResponseCache) Close() error {
	if rc.cache == nil {
		return nil
	}
	return rc.cache.Close()
}

// Option is a functional option for configuring the response cache.
type Option func(*ResponseCache)

// WithTTL sets the TTL applied to stored responses.
func WithTTL(ttl time.Duration) Option {
	return func(rc *ResponseCache) {
		rc.ttl = ttl
	}
}

// WithKeyPrefix sets a custom key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(rc *ResponseCache) {
		rc.keyGenerator = NewKeyGenerator(prefix)
	}
}

// WithEnabled sets the initial enabled state.
func WithEnabled(enabled bool) Option {
	return func(rc *ResponseCache) {
		rc.enabled.Store(enabled)
	}
}
