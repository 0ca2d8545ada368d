package core

import (
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// Fragment is one typed partial payload produced by a single source or task.
// FragmentFields names the response fields the fragment covers, in the order
// they are reported when the fragment is missing.
type Fragment interface {
	FragmentFields() []string
}

// Tone classifies the register of a sense.
type Tone string

const (
	TonePositive   Tone = "positive"
	ToneNegative   Tone = "negative"
	ToneNeutral    Tone = "neutral"
	ToneHumorous   Tone = "humorous"
	ToneDerogatory Tone = "derogatory"
	TonePejorative Tone = "pejorative"
	ToneApproving  Tone = "approving"
)

// ParseTone validates a generated tone value. Schema-invalid values count as
// a task failure, never as a default.
func ParseTone(raw string) (Tone, error) {
	t := Tone(raw)
	switch t {
	case TonePositive, ToneNegative, ToneNeutral, ToneHumorous,
		ToneDerogatory, TonePejorative, ToneApproving:
		return t, nil
	}
	return "", errors.WithFields(
		errors.New(errors.InvalidResponse, "unknown tone"),
		errors.Fields{"tone": raw})
}

// FrequencyBand buckets how common a word is in contemporary usage.
type FrequencyBand string

const (
	FrequencyVeryCommon FrequencyBand = "very_common"
	FrequencyCommon     FrequencyBand = "common"
	FrequencyUncommon   FrequencyBand = "uncommon"
	FrequencyRare       FrequencyBand = "rare"
	FrequencyVeryRare   FrequencyBand = "very_rare"
)

// ParseFrequencyBand validates a generated frequency value.
func ParseFrequencyBand(raw string) (FrequencyBand, error) {
	f := FrequencyBand(raw)
	switch f {
	case FrequencyVeryCommon, FrequencyCommon, FrequencyUncommon,
		FrequencyRare, FrequencyVeryRare:
		return f, nil
	}
	return "", errors.WithFields(
		errors.New(errors.InvalidResponse, "unknown frequency band"),
		errors.Fields{"frequency": raw})
}

// EtymologyInfo traces the word's origin.
type EtymologyInfo struct {
	Etymology    string `json:"etymology"`
	RootAnalysis string `json:"root_analysis,omitempty"`
}

func (e *EtymologyInfo) FragmentFields() []string {
	return []string{"etymology", "root_analysis"}
}

// WordFamilyInfo lists derivationally related words.
type WordFamilyInfo struct {
	WordFamily []string `json:"word_family"`
}

func (w *WordFamilyInfo) FragmentFields() []string {
	return []string{"word_family"}
}

// UsageContextInfo situates the word in contemporary usage.
type UsageContextInfo struct {
	ModernRelevance    string   `json:"modern_relevance"`
	CommonConfusions   []string `json:"common_confusions,omitempty"`
	RegionalVariations []string `json:"regional_variations,omitempty"`
}

func (u *UsageContextInfo) FragmentFields() []string {
	return []string{"modern_relevance", "common_confusions", "regional_variations"}
}

// CulturalNotesInfo carries cultural background for language learners.
type CulturalNotesInfo struct {
	Notes string `json:"notes"`
}

func (c *CulturalNotesInfo) FragmentFields() []string {
	return []string{"notes"}
}

// FrequencyInfo reports the word's usage frequency band.
type FrequencyInfo struct {
	Frequency FrequencyBand `json:"frequency"`
}

func (f *FrequencyInfo) FragmentFields() []string {
	return []string{"frequency"}
}

// SenseCoreMetadata is the classification slice of one sense.
type SenseCoreMetadata struct {
	PartOfSpeech  string   `json:"part_of_speech"`
	UsageRegister []string `json:"usage_register,omitempty"`
	Domain        []string `json:"domain,omitempty"`
	Tone          Tone     `json:"tone,omitempty"`
}

func (s *SenseCoreMetadata) FragmentFields() []string {
	return []string{"part_of_speech", "usage_register", "domain", "tone"}
}

// SenseExamples carries generated example sentences and collocations for one
// sense. Counts shrink when the provider already supplies examples.
type SenseExamples struct {
	Examples     []string `json:"examples,omitempty"`
	Collocations []string `json:"collocations,omitempty"`
}

func (s *SenseExamples) FragmentFields() []string {
	return []string{"examples", "collocations"}
}

// SenseRelations carries the related-word slice of one sense.
type SenseRelations struct {
	Synonyms []string `json:"synonyms,omitempty"`
	Antonyms []string `json:"antonyms,omitempty"`
	Phrases  []string `json:"word_specific_phrases,omitempty"`
}

func (s *SenseRelations) FragmentFields() []string {
	return []string{"synonyms", "antonyms", "word_specific_phrases"}
}

// SenseUsageNotes carries learner-facing guidance for one sense.
type SenseUsageNotes struct {
	UsageNotes string `json:"usage_notes"`
}

func (s *SenseUsageNotes) FragmentFields() []string {
	return []string{"usage_notes"}
}

// DetailedSense is the merged per-sense view assembled from the four
// sense-scoped fragments plus the baseline definition.
type DetailedSense struct {
	Definition    string   `json:"definition"`
	PartOfSpeech  string   `json:"part_of_speech,omitempty"`
	UsageRegister []string `json:"usage_register,omitempty"`
	Domain        []string `json:"domain,omitempty"`
	Tone          Tone     `json:"tone,omitempty"`
	UsageNotes    string   `json:"usage_notes,omitempty"`
	Examples      []string `json:"examples,omitempty"`
	Collocations  []string `json:"collocations,omitempty"`
	Phrases       []string `json:"word_specific_phrases,omitempty"`
	Synonyms      []string `json:"synonyms,omitempty"`
	Antonyms      []string `json:"antonyms,omitempty"`
}

// MediaCandidate is one opaque result from the auxiliary content searcher.
// The engine relays candidates without inspecting or re-ranking them.
type MediaCandidate struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Author      string `json:"author,omitempty"`
	Duration    string `json:"duration,omitempty"`
	StartTime   int    `json:"start_time,omitempty"`
	Phrase      string `json:"phrase,omitempty"`
	URL         string `json:"url"`
	ViewCount   int64  `json:"view_count,omitempty"`
}

// MediaList is the fragment form of a candidate list.
type MediaList []MediaCandidate

func (m MediaList) FragmentFields() []string {
	return []string{"media"}
}
