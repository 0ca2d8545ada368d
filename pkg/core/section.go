package core

import (
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// Section identifies one addressable slice of lexical information. Section
// names are the request vocabulary; dispatch over them is always an
// exhaustive switch so an unhandled section is a compile-time smell rather
// than a silent fallthrough.
type Section string

const (
	SectionBasic         Section = "basic"
	SectionEtymology     Section = "etymology"
	SectionWordFamily    Section = "word_family"
	SectionUsageContext  Section = "usage_context"
	SectionCulturalNotes Section = "cultural_notes"
	SectionFrequency     Section = "frequency"
	SectionDetailedSense Section = "detailed_sense"
	SectionMedia         Section = "media"
)

// Sections lists every known section in catalog order.
func Sections() []Section {
	return []Section{
		SectionBasic,
		SectionEtymology,
		SectionWordFamily,
		SectionUsageContext,
		SectionCulturalNotes,
		SectionFrequency,
		SectionDetailedSense,
		SectionMedia,
	}
}

// ParseSection validates a raw section name. Unknown names are rejected
// before any lookup work starts.
func ParseSection(raw string) (Section, error) {
	s := Section(raw)
	switch s {
	case SectionBasic, SectionEtymology, SectionWordFamily, SectionUsageContext,
		SectionCulturalNotes, SectionFrequency, SectionDetailedSense, SectionMedia:
		return s, nil
	}
	return "", errors.WithFields(
		errors.New(errors.InvalidSection, "unknown section"),
		errors.Fields{"section": raw})
}

// RequiresSenseAddress reports whether requests for this section must carry
// (entry_index, sense_index).
func (s Section) RequiresSenseAddress() bool {
	return s == SectionDetailedSense
}

func (s Section) String() string {
	return string(s)
}
