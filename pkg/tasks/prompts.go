package tasks

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// PromptContext is everything a renderer may use. Rendering is a pure
// function of this context: no I/O, no clock, no randomness, so instruction
// text is unit-testable without a backend.
type PromptContext struct {
	Word       string
	EntryIndex int
	SenseIndex int
	Seed       *SeedContext
}

// RenderInstruction produces the instruction text for a task kind.
// media_search tasks carry no instruction; asking for one is a bug.
func RenderInstruction(kind TaskKind, pctx PromptContext) (string, error) {
	switch kind {
	case KindDiscovery:
		return renderDiscovery(pctx), nil
	case KindEtymology:
		return renderEtymology(pctx), nil
	case KindWordFamily:
		return renderWordFamily(pctx), nil
	case KindUsageContext:
		return renderUsageContext(pctx), nil
	case KindCulturalNotes:
		return renderCulturalNotes(pctx), nil
	case KindFrequency:
		return renderFrequency(pctx), nil
	case KindSenseCore:
		return renderSenseCore(pctx), nil
	case KindSenseExamples:
		return renderSenseExamples(pctx), nil
	case KindSenseRelations:
		return renderSenseRelations(pctx), nil
	case KindSenseUsageNotes:
		return renderSenseUsageNotes(pctx), nil
	}
	return "", errors.WithFields(
		errors.New(errors.TaskFailed, "task kind has no instruction renderer"),
		errors.Fields{"kind": kind.String()})
}

func renderDiscovery(pctx PromptContext) string {
	return fmt.Sprintf(`You are a linguistic analysis assistant discovering ALL senses of a word.

Analyze the word %q and list ALL its distinct meanings, ordered by frequency (most common first). Include rare, archaic, and specialized meanings.

For each sense provide:
1. "definition": a clear, concise definition
2. "part_of_speech": noun, verb, adjective, adverb, phrasal verb, idiom, etc.

Also provide:
- "pronunciation": IPA or a simple phonetic guide
- "headword": the word itself

Respond with a single JSON object:
{"headword": string, "pronunciation": string, "senses": [{"definition": string, "part_of_speech": string}]}`, pctx.Word)
}

func renderEtymology(pctx PromptContext) string {
	return fmt.Sprintf(`You are a linguistic historian specializing in word origins.

Provide detailed etymology and root analysis for the word %q:

1. "etymology": narrative of the word's origin, historical development, and meaning evolution.
2. "root_analysis": breakdown of roots, prefixes, and suffixes with their meanings and origins.

Be comprehensive but focused on linguistic history.

Respond with a single JSON object: {"etymology": string, "root_analysis": string}`, pctx.Word)
}

func renderWordFamily(pctx PromptContext) string {
	return fmt.Sprintf(`You are a linguistic analyst specializing in word relationships.

Provide the word family for %q:

List all key words derived from the same root or sharing the same base. Include direct derivatives, related terms from the same linguistic root, and words in the same semantic field. Focus on practical relationships that help language learners.

Respond with a single JSON object: {"word_family": [string]}`, pctx.Word)
}

func renderUsageContext(pctx PromptContext) string {
	return fmt.Sprintf(`You are a sociolinguist analyzing word usage patterns.

Provide modern usage context for the word %q:

1. "modern_relevance": current usage trends, popularity changes, domain shifts (e.g., "rising in tech contexts", "considered outdated").
2. "common_confusions": words/phrases often confused with this one, each with a brief discriminator.
3. "regional_variations": notable differences in meaning, spelling, or usage between English variants.

Focus on practical guidance for language learners.

Respond with a single JSON object: {"modern_relevance": string, "common_confusions": [string], "regional_variations": [string]}`, pctx.Word)
}

func renderCulturalNotes(pctx PromptContext) string {
	return fmt.Sprintf(`You are a cultural linguist providing contextual insights.

Provide cultural and linguistic notes for the word %q:

Include cultural associations or sensitivities, historical or literary significance, and sociolinguistic observations. Be insightful but concise.

Respond with a single JSON object: {"notes": string}`, pctx.Word)
}

func renderFrequency(pctx PromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a corpus linguist estimating word frequency.

Estimate how common the word %q is in contemporary English usage.
`, pctx.Word)

	if pctx.Seed != nil && pctx.Seed.CorpusRank > 0 {
		fmt.Fprintf(&b, "\nCorpus data: this word ranks #%d in a contemporary frequency list", pctx.Seed.CorpusRank)
		if pctx.Seed.CorpusBand != "" {
			fmt.Fprintf(&b, " (indicative band: %s)", pctx.Seed.CorpusBand)
		}
		b.WriteString(". Weigh this evidence heavily.\n")
	}

	b.WriteString(`
The "frequency" value MUST be exactly one of: very_common, common, uncommon, rare, very_rare.

Respond with a single JSON object: {"frequency": string}`)
	return b.String()
}

func renderSenseCore(pctx PromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a linguistic expert classifying a specific word meaning.

Classify sense #%d of the word %q.
`, pctx.SenseIndex+1, pctx.Word)
	writeSeedDefinition(&b, pctx.Seed)

	b.WriteString(`
Provide:
1. "part_of_speech": e.g., noun, verb, phrasal verb, adjective, idiom.
2. "usage_register": appropriate contexts, from: formal, informal, colloquial, slang, archaic, literary, professional, academic, neutral.
3. "domain": specific fields of use, e.g., ["biology", "law", "gaming"]. May be empty.
4. "tone": MUST be exactly one of: positive, negative, neutral, humorous, derogatory, pejorative, approving.

Respond with a single JSON object: {"part_of_speech": string, "usage_register": [string], "domain": [string], "tone": string}`)
	return b.String()
}

func renderSenseExamples(pctx PromptContext) string {
	exampleTarget := 2
	collocationTarget := 3
	if pctx.Seed != nil {
		// The provider's own examples count against the target, shrinking
		// what the model is asked to produce.
		exampleTarget -= len(pctx.Seed.Examples)
		if exampleTarget < 0 {
			exampleTarget = 0
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a linguistic expert writing usage examples.

Produce examples for sense #%d of the word %q.
`, pctx.SenseIndex+1, pctx.Word)
	writeSeedDefinition(&b, pctx.Seed)
	if pctx.Seed != nil && len(pctx.Seed.Examples) > 0 {
		fmt.Fprintf(&b, "\nAlready available examples (do not repeat): %s\n", joinQuoted(pctx.Seed.Examples))
	}

	fmt.Fprintf(&b, `
Provide:
1. "examples": exactly %d new example sentences for this sense.
2. "collocations": up to %d frequent word partners, e.g. "strong evidence".

Respond with a single JSON object: {"examples": [string], "collocations": [string]}`, exampleTarget, collocationTarget)
	return b.String()
}

func renderSenseRelations(pctx PromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a linguistic expert mapping word relationships.

Provide related words for sense #%d of the word %q.
`, pctx.SenseIndex+1, pctx.Word)
	writeSeedDefinition(&b, pctx.Seed)
	if pctx.Seed != nil && len(pctx.Seed.Synonyms) > 0 {
		fmt.Fprintf(&b, "\nKnown synonyms (extend, do not repeat): %s\n", joinQuoted(pctx.Seed.Synonyms))
	}
	if pctx.Seed != nil && len(pctx.Seed.Antonyms) > 0 {
		fmt.Fprintf(&b, "Known antonyms (extend, do not repeat): %s\n", joinQuoted(pctx.Seed.Antonyms))
	}

	b.WriteString(`
Provide:
1. "synonyms": close synonyms for this specific sense.
2. "antonyms": close antonyms for this specific sense.
3. "word_specific_phrases": fixed expressions, phrasal verbs, or idioms built around this sense, e.g. "in the long run".

Respond with a single JSON object: {"synonyms": [string], "antonyms": [string], "word_specific_phrases": [string]}`)
	return b.String()
}

func renderSenseUsageNotes(pctx PromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a language teacher writing learner guidance.

Write usage notes for sense #%d of the word %q.
`, pctx.SenseIndex+1, pctx.Word)
	writeSeedDefinition(&b, pctx.Seed)

	b.WriteString(`
Cover when and how to use this sense, and common pitfalls for learners. Be practical and concise.

Respond with a single JSON object: {"usage_notes": string}`)
	return b.String()
}

func writeSeedDefinition(b *strings.Builder, seed *SeedContext) {
	if seed == nil {
		return
	}
	if seed.Definition != "" {
		fmt.Fprintf(b, "\nDefinition of this sense: %q\n", seed.Definition)
	}
	if seed.PartOfSpeech != "" {
		fmt.Fprintf(b, "Part of speech: %s\n", seed.PartOfSpeech)
	}
}

func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
