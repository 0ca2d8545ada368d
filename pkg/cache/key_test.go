package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/XiaoConstantine/lexgo/pkg/core"
)

func intPtr(i int) *int {
	return &i
}

func TestKeyGenerator_Deterministic(t *testing.T) {
	g := NewKeyGenerator("")

	req := &core.LookupRequest{Word: "serendipity", Section: core.SectionEtymology}

	key1 := g.GenerateKey(req)
	key2 := g.GenerateKey(req)
	assert.Equal(t, key1, key2)
	assert.True(t, strings.HasPrefix(key1, "lexgo_etymology_"))
}

func TestKeyGenerator_CaseFolding(t *testing.T) {
	g := NewKeyGenerator("")

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"lower vs upper", "bank", "BANK"},
		{"mixed case", "Bank", "baNK"},
		{"surrounding whitespace", "bank", "  bank  "},
		{"non-ascii fold", "straße", "STRASSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyA := g.GenerateKey(&core.LookupRequest{Word: tt.a, Section: core.SectionBasic})
			keyB := g.GenerateKey(&core.LookupRequest{Word: tt.b, Section: core.SectionBasic})
			assert.Equal(t, keyA, keyB)
		})
	}
}

func TestKeyGenerator_SectionsDoNotCollide(t *testing.T) {
	g := NewKeyGenerator("")

	basic := g.GenerateKey(&core.LookupRequest{Word: "bank", Section: core.SectionBasic})
	etym := g.GenerateKey(&core.LookupRequest{Word: "bank", Section: core.SectionEtymology})
	assert.NotEqual(t, basic, etym)
}

func TestKeyGenerator_SenseAddressInKey(t *testing.T) {
	g := NewKeyGenerator("")

	base := &core.LookupRequest{Word: "bank", Section: core.SectionDetailedSense}
	addressed := &core.LookupRequest{
		Word:       "bank",
		Section:    core.SectionDetailedSense,
		EntryIndex: intPtr(0),
		SenseIndex: intPtr(1),
	}
	otherSense := &core.LookupRequest{
		Word:       "bank",
		Section:    core.SectionDetailedSense,
		EntryIndex: intPtr(0),
		SenseIndex: intPtr(2),
	}

	keyBase := g.GenerateKey(base)
	keyAddr := g.GenerateKey(addressed)
	keyOther := g.GenerateKey(otherSense)

	assert.NotEqual(t, keyBase, keyAddr)
	assert.NotEqual(t, keyAddr, keyOther)

	// Same address generates the same key
	again := g.GenerateKey(&core.LookupRequest{
		Word:       "Bank",
		Section:    core.SectionDetailedSense,
		EntryIndex: intPtr(0),
		SenseIndex: intPtr(1),
	})
	assert.Equal(t, keyAddr, again)
}

func TestKeyGenerator_CustomPrefix(t *testing.T) {
	g := NewKeyGenerator("test_")

	key := g.GenerateKey(&core.LookupRequest{Word: "bank", Section: core.SectionBasic})
	assert.True(t, strings.HasPrefix(key, "test_basic_"))
}

func TestKeyGenerator_EmptyPrefixUsesDefault(t *testing.T) {
	g := NewKeyGenerator("")

	key := g.GenerateKey(&core.LookupRequest{Word: "bank", Section: core.SectionBasic})
	assert.True(t, strings.HasPrefix(key, "lexgo_"))
}
