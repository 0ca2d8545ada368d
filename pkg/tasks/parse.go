package tasks

import (
	"encoding/json"
	"strings"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// ParseFragment converts a model's JSON payload into the typed fragment for
// a kind. Schema-invalid payloads are task failures: the fragment is dropped,
// never defaulted. media_search results do not pass through here.
func ParseFragment(kind TaskKind, payload map[string]interface{}) (core.Fragment, error) {
	if payload == nil {
		return nil, parseErr(kind, "empty payload")
	}

	switch kind {
	case KindDiscovery:
		return parseDiscovery(payload)
	case KindEtymology:
		var frag core.EtymologyInfo
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		if frag.Etymology == "" {
			return nil, parseErr(kind, "missing etymology")
		}
		return &frag, nil
	case KindWordFamily:
		var frag core.WordFamilyInfo
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		frag.WordFamily = cleanList(frag.WordFamily)
		if len(frag.WordFamily) == 0 {
			return nil, parseErr(kind, "empty word family")
		}
		return &frag, nil
	case KindUsageContext:
		var frag core.UsageContextInfo
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		if frag.ModernRelevance == "" {
			return nil, parseErr(kind, "missing modern_relevance")
		}
		frag.CommonConfusions = cleanList(frag.CommonConfusions)
		frag.RegionalVariations = cleanList(frag.RegionalVariations)
		return &frag, nil
	case KindCulturalNotes:
		var frag core.CulturalNotesInfo
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		if frag.Notes == "" {
			return nil, parseErr(kind, "missing notes")
		}
		return &frag, nil
	case KindFrequency:
		raw, _ := payload["frequency"].(string)
		band, err := core.ParseFrequencyBand(raw)
		if err != nil {
			return nil, err
		}
		return &core.FrequencyInfo{Frequency: band}, nil
	case KindSenseCore:
		var frag core.SenseCoreMetadata
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		if frag.Tone != "" {
			if _, err := core.ParseTone(string(frag.Tone)); err != nil {
				return nil, err
			}
		}
		if frag.PartOfSpeech == "" {
			return nil, parseErr(kind, "missing part_of_speech")
		}
		frag.UsageRegister = cleanList(frag.UsageRegister)
		frag.Domain = cleanList(frag.Domain)
		return &frag, nil
	case KindSenseExamples:
		var frag core.SenseExamples
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		frag.Examples = cleanList(frag.Examples)
		frag.Collocations = cleanList(frag.Collocations)
		return &frag, nil
	case KindSenseRelations:
		var frag core.SenseRelations
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		frag.Synonyms = cleanList(frag.Synonyms)
		frag.Antonyms = cleanList(frag.Antonyms)
		frag.Phrases = cleanList(frag.Phrases)
		return &frag, nil
	case KindSenseUsageNotes:
		var frag core.SenseUsageNotes
		if err := decodeInto(kind, payload, &frag); err != nil {
			return nil, err
		}
		if frag.UsageNotes == "" {
			return nil, parseErr(kind, "missing usage_notes")
		}
		return &frag, nil
	}
	return nil, parseErr(kind, "kind has no fragment parser")
}

// discoveryPayload is the wire shape of a synthesized entry set.
type discoveryPayload struct {
	Headword      string `json:"headword"`
	Pronunciation string `json:"pronunciation"`
	Senses        []struct {
		Definition   string `json:"definition"`
		PartOfSpeech string `json:"part_of_speech"`
	} `json:"senses"`
}

// parseDiscovery builds the synthesized entry set. The model has no notion of
// etymological entry grouping, so all discovered senses land in a single
// entry at index 0, indexed in the order the model listed them.
func parseDiscovery(payload map[string]interface{}) (core.Fragment, error) {
	var wire discoveryPayload
	if err := decodeInto(KindDiscovery, payload, &wire); err != nil {
		return nil, err
	}

	senses := make([]core.Sense, 0, len(wire.Senses))
	for _, s := range wire.Senses {
		def := strings.TrimSpace(s.Definition)
		if def == "" {
			continue
		}
		senses = append(senses, core.Sense{
			SenseIndex:   len(senses),
			Definition:   def,
			PartOfSpeech: strings.TrimSpace(s.PartOfSpeech),
		})
	}
	if len(senses) == 0 {
		return nil, parseErr(KindDiscovery, "no usable senses")
	}

	return &core.EntrySet{
		Headword: wire.Headword,
		Entries: []core.WordEntry{{
			EntryIndex:    0,
			Pronunciation: strings.TrimSpace(wire.Pronunciation),
			Senses:        senses,
		}},
	}, nil
}

// decodeInto remarshals the loosely-typed payload into the fragment struct.
// Type mismatches (a string where an array belongs) surface here.
func decodeInto(kind TaskKind, payload map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.InvalidResponse, "payload is not serializable")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidResponse, "payload does not match schema"),
			errors.Fields{"kind": kind.String()})
	}
	return nil
}

func parseErr(kind TaskKind, msg string) error {
	return errors.WithFields(
		errors.New(errors.InvalidResponse, msg),
		errors.Fields{"kind": kind.String()})
}

// cleanList trims entries and drops empties, preserving order.
func cleanList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := items[:0]
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
