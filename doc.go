// Package lexgo is an on-demand lexical lookup engine. It combines an
// authoritative dictionary API with generative enrichment: the reference
// provider supplies the baseline entry set, and bounded parallel tasks fill
// in the sections the provider does not cover.
//
// Lookups are section-addressable. A request names a word and one section:
//
//   - basic: the full entry set (pronunciations, senses, definitions)
//   - etymology, word_family, usage_context, cultural_notes, frequency:
//     word-level enrichment sections
//   - detailed_sense: a deep dive on one sense, addressed as
//     (entry_index, sense_index)
//   - media: usage clips from an auxiliary content searcher
//
// The engine fetches the authoritative entry set at most once per request.
// When the provider has nothing for the word, a discovery task synthesizes
// an entry set so every section stays reachable. Enrichment fans out as
// independent tasks under per-task token and time budgets plus one aggregate
// deadline; a failed task removes only its own fields from the response,
// with the gaps reported in missing_fields.
//
// Key packages:
//
//   - pkg/engine: request orchestration (cache, fetch, fan-out, merge)
//   - pkg/reference: client for the dictionary API and its normalization
//   - pkg/tasks: the task catalog, prompt renderers, and fragment parsers
//   - pkg/pool: the bounded parallel task executor
//   - pkg/merge: deterministic assembly of task results into a response
//   - pkg/llms: generative backends (DeepSeek, OpenAI-compatible, Anthropic)
//   - pkg/cache: TTL response cache over memory or SQLite stores
//   - pkg/corpus: word-frequency ranks imported from parquet into SQLite
//   - pkg/media: HTTP and MCP-backed content searchers
//
// Minimal usage:
//
//	llm, err := llms.New(cfg.LLM)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng, err := engine.New(llm,
//	    engine.WithFetcher(reference.NewClientFromConfig(cfg.Reference)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := eng.Resolve(ctx, &core.LookupRequest{
//	    Word:    "serendipity",
//	    Section: core.SectionEtymology,
//	})
//
// The cmd/lexgo command wraps the same wiring behind flags.
package lexgo
