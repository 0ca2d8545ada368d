package tasks

import (
	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// Builder assembles the concrete task list for a request: kinds from the
// catalog, instructions from the renderers, budgets from the kind's class.
type Builder struct {
	catalog    *Catalog
	mediaLimit int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithMediaLimit caps the candidate list media_search tasks ask for.
func WithMediaLimit(limit int) BuilderOption {
	return func(b *Builder) {
		if limit > 0 {
			b.mediaLimit = limit
		}
	}
}

// NewBuilder creates a builder over the given catalog.
func NewBuilder(catalog *Catalog, opts ...BuilderOption) *Builder {
	b := &Builder{catalog: catalog, mediaLimit: 3}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the tasks a request fans out to. The entry set, when
// present, seeds sense tasks with what the provider already supplied; seed
// carries request-level context such as corpus frequency. An empty task list
// with a nil error means the section is served without fan-out.
func (b *Builder) Build(req *core.LookupRequest, set *core.EntrySet, seed *SeedContext) ([]AgentTask, error) {
	if req == nil {
		return nil, errors.New(errors.MissingParameter, "request is required")
	}
	kinds, err := b.catalog.Kinds(req.Section)
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return nil, nil
	}

	entryIdx, senseIdx := 0, 0
	if req.EntryIndex != nil {
		entryIdx = *req.EntryIndex
	}
	if req.SenseIndex != nil {
		senseIdx = *req.SenseIndex
	}

	if req.Section == core.SectionDetailedSense && set != nil {
		seed = enrichSeed(seed, set, entryIdx, senseIdx)
	}

	tasks := make([]AgentTask, 0, len(kinds))
	for _, kind := range kinds {
		task := AgentTask{
			ID:         IDForKind(kind),
			Kind:       kind,
			Word:       req.Word,
			EntryIndex: entryIdx,
			SenseIndex: senseIdx,
			Budget:     b.catalog.Budget(kind),
			Seed:       seed,
		}
		if kind == KindMediaSearch {
			task.MediaLimit = b.mediaLimit
		} else {
			instruction, err := RenderInstruction(kind, PromptContext{
				Word:       req.Word,
				EntryIndex: entryIdx,
				SenseIndex: senseIdx,
				Seed:       seed,
			})
			if err != nil {
				return nil, err
			}
			task.Instruction = instruction
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// BuildDiscovery returns the single synthesis task used when the
// authoritative source has nothing for the word.
func (b *Builder) BuildDiscovery(word string) (AgentTask, error) {
	if word == "" {
		return AgentTask{}, errors.New(errors.MissingParameter, "word is required")
	}
	instruction, err := RenderInstruction(KindDiscovery, PromptContext{Word: word})
	if err != nil {
		return AgentTask{}, err
	}
	return AgentTask{
		ID:          IDForKind(KindDiscovery),
		Kind:        KindDiscovery,
		Word:        word,
		Instruction: instruction,
		Budget:      b.catalog.Budget(KindDiscovery),
	}, nil
}

// enrichSeed overlays what the addressed sense already carries onto the
// request-level seed. The caller's seed is not mutated.
func enrichSeed(seed *SeedContext, set *core.EntrySet, entryIdx, senseIdx int) *SeedContext {
	sense, err := set.SenseAt(entryIdx, senseIdx)
	if err != nil {
		return seed
	}

	enriched := SeedContext{}
	if seed != nil {
		enriched = *seed
	}
	if enriched.Definition == "" {
		enriched.Definition = sense.Definition
	}
	if enriched.PartOfSpeech == "" {
		enriched.PartOfSpeech = sense.PartOfSpeech
	}
	if len(enriched.Synonyms) == 0 {
		enriched.Synonyms = sense.Synonyms
	}
	if len(enriched.Antonyms) == 0 {
		enriched.Antonyms = sense.Antonyms
	}
	if len(enriched.Examples) == 0 {
		enriched.Examples = sense.Examples
	}
	return &enriched
}
