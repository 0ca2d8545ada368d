// Package media integrates the auxiliary content search used by the media
// section. Candidates arrive already filtered and ranked by the provider;
// the engine relays them as an opaque list and never re-orders or inspects
// them.
package media

import (
	"context"

	"github.com/XiaoConstantine/lexgo/pkg/core"
)

// Searcher finds learning-media candidates for a word.
type Searcher interface {
	Search(ctx context.Context, word string, limit int) ([]core.MediaCandidate, error)
}
