package tasks

import (
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/config"
	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// Catalog is the fixed section-to-tasks mapping. Dispatch over sections is
// an exhaustive switch: adding a section without a catalog arm is a compile
// failure in the builder, not a silent no-task request.
type Catalog struct {
	budgets      config.BudgetsConfig
	mediaTimeout time.Duration
}

// NewCatalog creates a catalog with the configured budget classes. Zero
// budgets fall back to the package defaults.
func NewCatalog(cfg config.TasksConfig, mediaTimeout time.Duration) *Catalog {
	defaults := config.GetDefaultConfig().Tasks.Budgets

	budgets := cfg.Budgets
	if budgets.Simple.MaxTokens == 0 {
		budgets.Simple = defaults.Simple
	}
	if budgets.Medium.MaxTokens == 0 {
		budgets.Medium = defaults.Medium
	}
	if budgets.Complex.MaxTokens == 0 {
		budgets.Complex = defaults.Complex
	}
	if budgets.Discovery.MaxTokens == 0 {
		budgets.Discovery = defaults.Discovery
	}
	if mediaTimeout <= 0 {
		mediaTimeout = 10 * time.Second
	}

	return &Catalog{budgets: budgets, mediaTimeout: mediaTimeout}
}

// Kinds returns the task kinds a section fans out to, in dispatch order.
// The basic section is served from the entry set alone and fans out to
// nothing.
func (c *Catalog) Kinds(section core.Section) ([]TaskKind, error) {
	switch section {
	case core.SectionBasic:
		return nil, nil
	case core.SectionEtymology:
		return []TaskKind{KindEtymology}, nil
	case core.SectionWordFamily:
		return []TaskKind{KindWordFamily}, nil
	case core.SectionUsageContext:
		return []TaskKind{KindUsageContext}, nil
	case core.SectionCulturalNotes:
		return []TaskKind{KindCulturalNotes}, nil
	case core.SectionFrequency:
		return []TaskKind{KindFrequency}, nil
	case core.SectionDetailedSense:
		return []TaskKind{KindSenseCore, KindSenseExamples, KindSenseRelations, KindSenseUsageNotes}, nil
	case core.SectionMedia:
		return []TaskKind{KindMediaSearch}, nil
	}
	return nil, errors.WithFields(
		errors.New(errors.InvalidSection, "section has no task catalog entry"),
		errors.Fields{"section": section.String()})
}

// Budget returns the budget class a kind runs under.
func (c *Catalog) Budget(kind TaskKind) Budget {
	switch kind {
	case KindWordFamily, KindFrequency:
		return Budget{MaxTokens: c.budgets.Simple.MaxTokens, Timeout: c.budgets.Simple.Timeout}
	case KindEtymology, KindUsageContext, KindCulturalNotes, KindSenseUsageNotes:
		return Budget{MaxTokens: c.budgets.Medium.MaxTokens, Timeout: c.budgets.Medium.Timeout}
	case KindSenseCore, KindSenseExamples, KindSenseRelations:
		return Budget{MaxTokens: c.budgets.Complex.MaxTokens, Timeout: c.budgets.Complex.Timeout}
	case KindDiscovery:
		return Budget{MaxTokens: c.budgets.Discovery.MaxTokens, Timeout: c.budgets.Discovery.Timeout}
	case KindMediaSearch:
		// No token budget: the searcher call is bounded by time alone.
		return Budget{MaxTokens: 0, Timeout: c.mediaTimeout}
	}
	return Budget{MaxTokens: c.budgets.Medium.MaxTokens, Timeout: c.budgets.Medium.Timeout}
}

// MaxFanOut returns the worst-case parallel task count across all sections.
// The pool sizes its goroutine bound from this.
func (c *Catalog) MaxFanOut() int {
	max := 1
	for _, section := range core.Sections() {
		kinds, err := c.Kinds(section)
		if err != nil {
			continue
		}
		if len(kinds) > max {
			max = len(kinds)
		}
	}
	return max
}
