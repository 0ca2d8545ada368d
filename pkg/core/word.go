// Package core defines the lexical data model shared by every component of
// the lookup engine: words, senses, sections, requests, responses, and the
// fragment payloads that partial results arrive in.
package core

import (
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// Sense is one meaning of a word within its entry. SenseIndex is the sense's
// position in provider order and stays stable for the lifetime of the entry
// set it belongs to.
type Sense struct {
	SenseIndex   int      `json:"sense_index"`
	Definition   string   `json:"definition"`
	PartOfSpeech string   `json:"part_of_speech,omitempty"`
	Synonyms     []string `json:"synonyms,omitempty"`
	Antonyms     []string `json:"antonyms,omitempty"`
	Examples     []string `json:"examples,omitempty"`
}

// WordEntry groups the senses that share one etymology, mirroring the
// reference provider's entry-per-etymology model. A word like "bank" carries
// one entry per unrelated origin.
type WordEntry struct {
	EntryIndex    int     `json:"entry_index"`
	Pronunciation string  `json:"pronunciation,omitempty"`
	AudioURL      string  `json:"audio_url,omitempty"`
	Senses        []Sense `json:"senses"`
}

// EntrySet is the complete addressable structure for one headword. Senses are
// addressed two-dimensionally as (entry_index, sense_index); there is no flat
// global sense numbering.
type EntrySet struct {
	Headword string      `json:"headword"`
	Entries  []WordEntry `json:"entries"`
}

// TotalEntries returns the number of entries in the set.
func (e *EntrySet) TotalEntries() int {
	return len(e.Entries)
}

// TotalSenses returns the number of senses across all entries.
func (e *EntrySet) TotalSenses() int {
	total := 0
	for _, entry := range e.Entries {
		total += len(entry.Senses)
	}
	return total
}

// ValidateIndex checks that (entryIndex, senseIndex) addresses an existing
// sense.
func (e *EntrySet) ValidateIndex(entryIndex, senseIndex int) error {
	if entryIndex < 0 || entryIndex >= len(e.Entries) {
		return errors.WithFields(
			errors.New(errors.IndexOutOfRange, "entry index out of range"),
			errors.Fields{
				"word":          e.Headword,
				"entry_index":   entryIndex,
				"total_entries": len(e.Entries),
			})
	}
	senses := e.Entries[entryIndex].Senses
	if senseIndex < 0 || senseIndex >= len(senses) {
		return errors.WithFields(
			errors.New(errors.IndexOutOfRange, "sense index out of range"),
			errors.Fields{
				"word":         e.Headword,
				"entry_index":  entryIndex,
				"sense_index":  senseIndex,
				"total_senses": len(senses),
			})
	}
	return nil
}

// SenseAt returns the sense at (entryIndex, senseIndex).
func (e *EntrySet) SenseAt(entryIndex, senseIndex int) (*Sense, error) {
	if err := e.ValidateIndex(entryIndex, senseIndex); err != nil {
		return nil, err
	}
	return &e.Entries[entryIndex].Senses[senseIndex], nil
}

// FragmentFields implements Fragment; a discovery task produces a whole
// entry set.
func (e *EntrySet) FragmentFields() []string {
	return []string{"entries"}
}
