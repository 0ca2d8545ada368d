package core

import (
	"strings"

	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// DataSource records which sources produced a response.
type DataSource string

const (
	// SourceAuthoritative means the reference provider supplied everything.
	SourceAuthoritative DataSource = "authoritative"
	// SourceHybrid means reference data was enriched by generative tasks.
	SourceHybrid DataSource = "hybrid"
	// SourceGenerative means the reference provider was unavailable and the
	// response was synthesized entirely by the generative path.
	SourceGenerative DataSource = "generative"
)

// LookupRequest addresses one section of lexical information for one word.
// EntryIndex and SenseIndex are required for sense-scoped sections and must
// be absent otherwise; pointers distinguish "not provided" from index zero.
type LookupRequest struct {
	Word       string  `json:"word"`
	Section    Section `json:"section"`
	EntryIndex *int    `json:"entry_index,omitempty"`
	SenseIndex *int    `json:"sense_index,omitempty"`
}

// Validate checks request shape. Index bounds are checked later against the
// word's entry set; negative indices never address anything, so they are
// rejected here, as are indices supplied for sections that take none. The
// latter would otherwise split identical responses across cache entries.
func (r *LookupRequest) Validate() error {
	if strings.TrimSpace(r.Word) == "" {
		return errors.New(errors.MissingParameter, "word is required")
	}
	if _, err := ParseSection(string(r.Section)); err != nil {
		return err
	}
	if !r.Section.RequiresSenseAddress() {
		if r.EntryIndex != nil || r.SenseIndex != nil {
			return errors.WithFields(
				errors.New(errors.MissingParameter, "entry_index and sense_index apply only to sense-scoped sections"),
				errors.Fields{"section": r.Section.String()})
		}
		return nil
	}
	if r.EntryIndex == nil {
		return errors.WithFields(
			errors.New(errors.MissingParameter, "entry_index is required"),
			errors.Fields{"section": r.Section.String()})
	}
	if r.SenseIndex == nil {
		return errors.WithFields(
			errors.New(errors.MissingParameter, "sense_index is required"),
			errors.Fields{"section": r.Section.String()})
	}
	if *r.EntryIndex < 0 || *r.SenseIndex < 0 {
		return errors.WithFields(
			errors.New(errors.IndexOutOfRange, "indices must be non-negative"),
			errors.Fields{
				"entry_index": *r.EntryIndex,
				"sense_index": *r.SenseIndex,
			})
	}
	return nil
}

// LookupResponse is the merged result of one lookup. Exactly one payload
// field is populated, matching the requested section. ExecutionTime is in
// seconds: the slowest parallel task plus the fixed merge overhead, not the
// sum of all task latencies.
type LookupResponse struct {
	Headword      string     `json:"headword"`
	Section       Section    `json:"section"`
	DataSource    DataSource `json:"data_source"`
	ExecutionTime float64    `json:"execution_time"`
	Success       bool       `json:"success"`
	MissingFields []string   `json:"missing_fields,omitempty"`
	Error         string     `json:"error,omitempty"`

	// Echoed sense address for sense-scoped sections.
	EntryIndex *int `json:"entry_index,omitempty"`
	SenseIndex *int `json:"sense_index,omitempty"`

	// Section payloads; exactly one is non-nil on a populated response.
	Basic         *EntrySet          `json:"basic,omitempty"`
	Etymology     *EtymologyInfo     `json:"etymology,omitempty"`
	WordFamily    *WordFamilyInfo    `json:"word_family,omitempty"`
	UsageContext  *UsageContextInfo  `json:"usage_context,omitempty"`
	CulturalNotes *CulturalNotesInfo `json:"cultural_notes,omitempty"`
	Frequency     *FrequencyInfo     `json:"frequency,omitempty"`
	DetailedSense *DetailedSense     `json:"detailed_sense,omitempty"`
	Media         []MediaCandidate   `json:"media,omitempty"`
}

// Payload returns the populated section payload, or nil when the response
// carries none (pure failures).
func (r *LookupResponse) Payload() interface{} {
	switch r.Section {
	case SectionBasic:
		if r.Basic != nil {
			return r.Basic
		}
	case SectionEtymology:
		if r.Etymology != nil {
			return r.Etymology
		}
	case SectionWordFamily:
		if r.WordFamily != nil {
			return r.WordFamily
		}
	case SectionUsageContext:
		if r.UsageContext != nil {
			return r.UsageContext
		}
	case SectionCulturalNotes:
		if r.CulturalNotes != nil {
			return r.CulturalNotes
		}
	case SectionFrequency:
		if r.Frequency != nil {
			return r.Frequency
		}
	case SectionDetailedSense:
		if r.DetailedSense != nil {
			return r.DetailedSense
		}
	case SectionMedia:
		if r.Media != nil {
			return r.Media
		}
	}
	return nil
}
