// Package merge assembles a request's task results into a single response.
// Assembly follows catalog order, never completion order, so two runs whose
// tasks finish in different interleavings produce identical responses.
package merge

import (
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
	"github.com/XiaoConstantine/lexgo/pkg/pool"
	"github.com/XiaoConstantine/lexgo/pkg/tasks"
)

// Policy decides what a partially failed fan-out yields.
type Policy string

const (
	// PolicyMerge keeps completed fragments and reports the rest missing.
	PolicyMerge Policy = "merge"
	// PolicyDiscard drops the whole payload when any task failed.
	PolicyDiscard Policy = "discard"
)

// ParsePolicy validates a configured policy name. Empty means merge.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case PolicyMerge, "":
		return PolicyMerge, nil
	case PolicyDiscard:
		return PolicyDiscard, nil
	}
	return "", errors.WithFields(
		errors.New(errors.ConfigurationError, "unknown partial policy"),
		errors.Fields{"policy": raw})
}

// Stats summarizes one assembly for the decision log.
type Stats struct {
	TasksRun    int
	TasksFailed int
	MaxLatency  time.Duration
}

// Merger folds task results into section payloads.
type Merger struct {
	policy   Policy
	overhead time.Duration
}

// NewMerger creates a merger. The overhead is the fixed cost added on top of
// the slowest task when reporting execution time.
func NewMerger(policy Policy, overhead time.Duration) *Merger {
	if policy == "" {
		policy = PolicyMerge
	}
	return &Merger{policy: policy, overhead: overhead}
}

// Assemble builds the response for a fan-out section. kinds is the catalog's
// dispatch order for the section and fixes both payload precedence and
// missing-field ordering. baseline is the addressed sense for sense-scoped
// sections, nil otherwise.
func (m *Merger) Assemble(req *core.LookupRequest, kinds []tasks.TaskKind, results map[tasks.TaskID]pool.TaskResult, baseline *core.Sense) (*core.LookupResponse, Stats) {
	resp := &core.LookupResponse{
		Headword:   req.Word,
		Section:    req.Section,
		EntryIndex: req.EntryIndex,
		SenseIndex: req.SenseIndex,
	}

	stats := Stats{TasksRun: len(kinds)}
	fragments := make(map[tasks.TaskKind]core.Fragment, len(kinds))
	var firstErr error

	for _, kind := range kinds {
		res, ok := results[tasks.IDForKind(kind)]
		if !ok || res.Failed() {
			stats.TasksFailed++
			resp.MissingFields = append(resp.MissingFields, tasks.FieldsForKind(kind)...)
			if firstErr == nil {
				if res.Err != nil {
					firstErr = res.Err
				} else {
					firstErr = errors.WithFields(
						errors.New(errors.TaskFailed, "task produced no fragment"),
						errors.Fields{"task": kind.String()})
				}
			}
		} else {
			fragments[kind] = res.Fragment
		}
		if res.Latency > stats.MaxLatency {
			stats.MaxLatency = res.Latency
		}
	}

	resp.Success = stats.TasksFailed == 0
	resp.ExecutionTime = (stats.MaxLatency + m.overhead).Seconds()
	if firstErr != nil {
		resp.Error = firstErr.Error()
	}

	if stats.TasksFailed > 0 && m.policy == PolicyDiscard {
		resp.MissingFields = nil
		return resp, stats
	}
	if len(fragments) == 0 && baseline == nil {
		return resp, stats
	}

	m.populate(resp, req.Section, fragments, baseline)
	return resp, stats
}

func (m *Merger) populate(resp *core.LookupResponse, section core.Section, fragments map[tasks.TaskKind]core.Fragment, baseline *core.Sense) {
	switch section {
	case core.SectionEtymology:
		if frag, ok := fragments[tasks.KindEtymology]; ok {
			resp.Etymology = frag.(*core.EtymologyInfo)
		}
	case core.SectionWordFamily:
		if frag, ok := fragments[tasks.KindWordFamily]; ok {
			resp.WordFamily = frag.(*core.WordFamilyInfo)
		}
	case core.SectionUsageContext:
		if frag, ok := fragments[tasks.KindUsageContext]; ok {
			resp.UsageContext = frag.(*core.UsageContextInfo)
		}
	case core.SectionCulturalNotes:
		if frag, ok := fragments[tasks.KindCulturalNotes]; ok {
			resp.CulturalNotes = frag.(*core.CulturalNotesInfo)
		}
	case core.SectionFrequency:
		if frag, ok := fragments[tasks.KindFrequency]; ok {
			resp.Frequency = frag.(*core.FrequencyInfo)
		}
	case core.SectionMedia:
		if frag, ok := fragments[tasks.KindMediaSearch]; ok {
			resp.Media = []core.MediaCandidate(frag.(core.MediaList))
		}
	case core.SectionDetailedSense:
		resp.DetailedSense = assembleDetailedSense(fragments, baseline)
	}
}

// assembleDetailedSense folds the four sense fragments over the baseline
// sense. Authoritative values come first in every merged list.
func assembleDetailedSense(fragments map[tasks.TaskKind]core.Fragment, baseline *core.Sense) *core.DetailedSense {
	if len(fragments) == 0 && baseline == nil {
		return nil
	}

	detail := &core.DetailedSense{}
	if baseline != nil {
		detail.Definition = baseline.Definition
		detail.PartOfSpeech = baseline.PartOfSpeech
		detail.Examples = baseline.Examples
		detail.Synonyms = baseline.Synonyms
		detail.Antonyms = baseline.Antonyms
	}

	if frag, ok := fragments[tasks.KindSenseCore]; ok {
		meta := frag.(*core.SenseCoreMetadata)
		if meta.PartOfSpeech != "" {
			detail.PartOfSpeech = meta.PartOfSpeech
		}
		detail.UsageRegister = meta.UsageRegister
		detail.Domain = meta.Domain
		detail.Tone = meta.Tone
	}
	if frag, ok := fragments[tasks.KindSenseExamples]; ok {
		examples := frag.(*core.SenseExamples)
		detail.Examples = mergeLists(detail.Examples, examples.Examples)
		detail.Collocations = examples.Collocations
	}
	if frag, ok := fragments[tasks.KindSenseRelations]; ok {
		relations := frag.(*core.SenseRelations)
		detail.Synonyms = mergeLists(detail.Synonyms, relations.Synonyms)
		detail.Antonyms = mergeLists(detail.Antonyms, relations.Antonyms)
		detail.Phrases = relations.Phrases
	}
	if frag, ok := fragments[tasks.KindSenseUsageNotes]; ok {
		detail.UsageNotes = frag.(*core.SenseUsageNotes).UsageNotes
	}
	return detail
}

// mergeLists appends extras onto base, dropping duplicates and keeping first
// occurrence order.
func mergeLists(base, extras []string) []string {
	if len(extras) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base)+len(extras))
	merged := make([]string, 0, len(base)+len(extras))
	for _, lists := range [][]string{base, extras} {
		for _, item := range lists {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}
