// Package tasks implements the generative fallback controller: the fixed
// catalog mapping sections to bounded agent tasks, the pure prompt renderers
// those tasks carry, and the parsers that turn model output into typed
// fragments. Task shapes are a small compiled-in catalog, not user-defined
// pipelines.
package tasks

import (
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/core"
)

// TaskKind identifies one fragment-producing unit of work. Each kind maps to
// exactly one prompt renderer, one output schema, and one budget class.
type TaskKind string

const (
	// KindDiscovery synthesizes a whole entry set when the authoritative
	// source has nothing for the word.
	KindDiscovery TaskKind = "discovery"

	// Single-task sections.
	KindEtymology     TaskKind = "etymology"
	KindWordFamily    TaskKind = "word_family"
	KindUsageContext  TaskKind = "usage_context"
	KindCulturalNotes TaskKind = "cultural_notes"
	KindFrequency     TaskKind = "frequency"

	// The detailed_sense fan-out family, dispatched together.
	KindSenseCore       TaskKind = "sense_core"
	KindSenseExamples   TaskKind = "sense_examples"
	KindSenseRelations  TaskKind = "sense_relations"
	KindSenseUsageNotes TaskKind = "sense_usage_notes"

	// KindMediaSearch calls the auxiliary content searcher instead of the
	// generative backend.
	KindMediaSearch TaskKind = "media_search"
)

func (k TaskKind) String() string {
	return string(k)
}

// TaskID identifies one task within a request's fan-out. The catalog never
// dispatches the same kind twice for one request, so the kind doubles as
// the identity.
type TaskID string

// IDForKind returns the task ID a kind runs under.
func IDForKind(kind TaskKind) TaskID {
	return TaskID(kind)
}

// Budget bounds one task: output size and wall time. Tasks are never
// retried, so the budget is also the total spend ceiling for the fragment.
type Budget struct {
	MaxTokens int
	Timeout   time.Duration
}

// SeedContext carries authoritative fragments into a task so the model does
// not regenerate what the provider already supplied. Purely an optimization:
// tasks must produce valid fragments with a nil seed too.
type SeedContext struct {
	Definition   string
	PartOfSpeech string
	Synonyms     []string
	Antonyms     []string
	Examples     []string

	// Corpus frequency seed; zero rank means the corpus does not know
	// the word.
	CorpusRank int
	CorpusBand string
}

// AgentTask is one bounded unit of generative (or search) work scoped to a
// single fragment kind.
type AgentTask struct {
	ID          TaskID
	Kind        TaskKind
	Word        string
	EntryIndex  int
	SenseIndex  int
	Instruction string
	Budget      Budget
	Seed        *SeedContext

	// MediaLimit caps the candidate list for media_search tasks.
	MediaLimit int
}

// fragmentPrototypes maps each kind to a zero fragment, used to answer
// which response fields a failed task leaves missing.
var fragmentPrototypes = map[TaskKind]core.Fragment{
	KindDiscovery:       &core.EntrySet{},
	KindEtymology:       &core.EtymologyInfo{},
	KindWordFamily:      &core.WordFamilyInfo{},
	KindUsageContext:    &core.UsageContextInfo{},
	KindCulturalNotes:   &core.CulturalNotesInfo{},
	KindFrequency:       &core.FrequencyInfo{},
	KindSenseCore:       &core.SenseCoreMetadata{},
	KindSenseExamples:   &core.SenseExamples{},
	KindSenseRelations:  &core.SenseRelations{},
	KindSenseUsageNotes: &core.SenseUsageNotes{},
	KindMediaSearch:     core.MediaList(nil),
}

// FieldsForKind names the response fields the kind's fragment covers, in
// reporting order. Unknown kinds report nothing.
func FieldsForKind(kind TaskKind) []string {
	proto, ok := fragmentPrototypes[kind]
	if !ok {
		return nil
	}
	return proto.FragmentFields()
}
