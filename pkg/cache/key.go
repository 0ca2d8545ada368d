package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/XiaoConstantine/lexgo/pkg/core"
)

// KeyGenerator generates cache keys for lookup requests.
type KeyGenerator struct {
	// Prefix for all cache keys (e.g., "lexgo_")
	prefix string
}

// NewKeyGenerator creates a new cache key generator.
func NewKeyGenerator(prefix string) *KeyGenerator {
	if prefix == "" {
		prefix = "lexgo_"
	}
	return &KeyGenerator{prefix: prefix}
}

// GenerateKey creates a deterministic cache key from a lookup request.
// Two requests for the same word, section and sense address always map to
// the same key, regardless of letter case in the word.
func (g *KeyGenerator) GenerateKey(req *core.LookupRequest) string {
	keyData := g.createKeyData(req)

	h := sha256.New()
	h.Write([]byte(keyData))
	hash := hex.EncodeToString(h.Sum(nil))

	// Return prefixed key (truncate hash for readability)
	return fmt.Sprintf("%s%s_%s", g.prefix, req.Section, hash[:16])
}

// createKeyData creates a normalized string representation of the request.
func (g *KeyGenerator) createKeyData(req *core.LookupRequest) string {
	word := g.normalizeWord(req.Word)
	return fmt.Sprintf("%s|%s|%s", req.Section, word, g.addressToString(req))
}

// normalizeWord trims and case-folds the headword so that lookups differing
// only in letter case share a cache entry. Unicode case folding catches
// pairs that ASCII lowercasing misses.
func (g *KeyGenerator) normalizeWord(word string) string {
	// cases.Caser is stateful, so build one per call rather than sharing
	return cases.Fold().String(strings.TrimSpace(word))
}

// addressToString converts the optional sense address to a deterministic string.
func (g *KeyGenerator) addressToString(req *core.LookupRequest) string {
	var parts []string
	if req.EntryIndex != nil {
		parts = append(parts, fmt.Sprintf("entry:%d", *req.EntryIndex))
	}
	if req.SenseIndex != nil {
		parts = append(parts, fmt.Sprintf("sense:%d", *req.SenseIndex))
	}
	return strings.Join(parts, "|")
}
