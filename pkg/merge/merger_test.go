package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
	"github.com/XiaoConstantine/lexgo/pkg/pool"
	"github.com/XiaoConstantine/lexgo/pkg/tasks"
)

var senseKinds = []tasks.TaskKind{
	tasks.KindSenseCore, tasks.KindSenseExamples, tasks.KindSenseRelations, tasks.KindSenseUsageNotes,
}

func okResult(kind tasks.TaskKind, frag core.Fragment, latency time.Duration) pool.TaskResult {
	return pool.TaskResult{Kind: kind, Fragment: frag, Latency: latency}
}

func failedResult(kind tasks.TaskKind, latency time.Duration) pool.TaskResult {
	return pool.TaskResult{
		Kind:    kind,
		Err:     errors.New(errors.Timeout, "task timed out"),
		Latency: latency,
	}
}

func fullSenseResults() map[tasks.TaskID]pool.TaskResult {
	return map[tasks.TaskID]pool.TaskResult{
		tasks.IDForKind(tasks.KindSenseCore): okResult(tasks.KindSenseCore, &core.SenseCoreMetadata{
			PartOfSpeech:  "noun",
			UsageRegister: []string{"formal"},
			Domain:        []string{"finance"},
			Tone:          core.ToneNeutral,
		}, 40*time.Millisecond),
		tasks.IDForKind(tasks.KindSenseExamples): okResult(tasks.KindSenseExamples, &core.SenseExamples{
			Examples:     []string{"The bank approved the loan."},
			Collocations: []string{"bank account"},
		}, 90*time.Millisecond),
		tasks.IDForKind(tasks.KindSenseRelations): okResult(tasks.KindSenseRelations, &core.SenseRelations{
			Synonyms: []string{"lender", "institution"},
			Antonyms: []string{"borrower"},
			Phrases:  []string{"break the bank"},
		}, 60*time.Millisecond),
		tasks.IDForKind(tasks.KindSenseUsageNotes): okResult(tasks.KindSenseUsageNotes, &core.SenseUsageNotes{
			UsageNotes: "Prefer this sense in financial contexts.",
		}, 30*time.Millisecond),
	}
}

func senseRequest() *core.LookupRequest {
	entry, sense := 0, 0
	return &core.LookupRequest{
		Word:       "bank",
		Section:    core.SectionDetailedSense,
		EntryIndex: &entry,
		SenseIndex: &sense,
	}
}

func TestAssembleSingleTaskSection(t *testing.T) {
	merger := NewMerger(PolicyMerge, 50*time.Millisecond)
	req := &core.LookupRequest{Word: "bank", Section: core.SectionEtymology}
	results := map[tasks.TaskID]pool.TaskResult{
		tasks.IDForKind(tasks.KindEtymology): okResult(tasks.KindEtymology,
			&core.EtymologyInfo{Etymology: "From Old Norse banki."}, 100*time.Millisecond),
	}

	resp, stats := merger.Assemble(req, []tasks.TaskKind{tasks.KindEtymology}, results, nil)

	assert.True(t, resp.Success)
	assert.Equal(t, "bank", resp.Headword)
	assert.Empty(t, resp.MissingFields)
	require.NotNil(t, resp.Etymology)
	assert.Equal(t, "From Old Norse banki.", resp.Etymology.Etymology)

	// Slowest task plus fixed overhead, not a latency sum.
	assert.InDelta(t, 0.150, resp.ExecutionTime, 0.0001)
	assert.Equal(t, 1, stats.TasksRun)
	assert.Zero(t, stats.TasksFailed)
}

func TestAssembleDetailedSenseMergesBaseline(t *testing.T) {
	merger := NewMerger(PolicyMerge, 0)
	baseline := &core.Sense{
		Definition:   "a financial institution",
		PartOfSpeech: "noun",
		Synonyms:     []string{"lender"},
		Examples:     []string{"She works at a bank."},
	}

	resp, stats := merger.Assemble(senseRequest(), senseKinds, fullSenseResults(), baseline)

	require.True(t, resp.Success)
	assert.Zero(t, stats.TasksFailed)
	detail := resp.DetailedSense
	require.NotNil(t, detail)

	assert.Equal(t, "a financial institution", detail.Definition)
	assert.Equal(t, "noun", detail.PartOfSpeech)
	assert.Equal(t, []string{"formal"}, detail.UsageRegister)
	assert.Equal(t, core.ToneNeutral, detail.Tone)

	// Authoritative values lead, generated values follow, duplicates drop.
	assert.Equal(t, []string{"She works at a bank.", "The bank approved the loan."}, detail.Examples)
	assert.Equal(t, []string{"lender", "institution"}, detail.Synonyms)
	assert.Equal(t, []string{"borrower"}, detail.Antonyms)
	assert.Equal(t, []string{"break the bank"}, detail.Phrases)
	assert.Equal(t, "Prefer this sense in financial contexts.", detail.UsageNotes)
}

func TestAssembleOrderIndependent(t *testing.T) {
	merger := NewMerger(PolicyMerge, 0)
	baseline := &core.Sense{Definition: "a financial institution"}

	// Same results with permuted latencies standing in for completion order.
	a := fullSenseResults()
	b := fullSenseResults()
	for id, res := range b {
		res.Latency = 200*time.Millisecond - res.Latency
		b[id] = res
	}

	respA, _ := merger.Assemble(senseRequest(), senseKinds, a, baseline)
	respB, _ := merger.Assemble(senseRequest(), senseKinds, b, baseline)

	assert.Equal(t, respA.DetailedSense, respB.DetailedSense)
	assert.Equal(t, respA.MissingFields, respB.MissingFields)
}

func TestAssemblePartialFailureMergePolicy(t *testing.T) {
	merger := NewMerger(PolicyMerge, 0)
	results := fullSenseResults()
	results[tasks.IDForKind(tasks.KindSenseRelations)] = failedResult(tasks.KindSenseRelations, 10*time.Millisecond)

	baseline := &core.Sense{Definition: "a financial institution", Synonyms: []string{"lender"}}
	resp, stats := merger.Assemble(senseRequest(), senseKinds, results, baseline)

	assert.False(t, resp.Success)
	assert.Equal(t, 1, stats.TasksFailed)
	assert.Equal(t, []string{"synonyms", "antonyms", "word_specific_phrases"}, resp.MissingFields)
	assert.Contains(t, resp.Error, "timed out")

	// The completed fragments still land; the failed slice keeps only the
	// authoritative part.
	require.NotNil(t, resp.DetailedSense)
	assert.Equal(t, "Prefer this sense in financial contexts.", resp.DetailedSense.UsageNotes)
	assert.Equal(t, []string{"lender"}, resp.DetailedSense.Synonyms)
	assert.Empty(t, resp.DetailedSense.Phrases)
}

func TestAssemblePartialFailureDiscardPolicy(t *testing.T) {
	merger := NewMerger(PolicyDiscard, 0)
	results := fullSenseResults()
	results[tasks.IDForKind(tasks.KindSenseCore)] = failedResult(tasks.KindSenseCore, 10*time.Millisecond)

	resp, stats := merger.Assemble(senseRequest(), senseKinds, results, &core.Sense{Definition: "x"})

	assert.False(t, resp.Success)
	assert.Equal(t, 1, stats.TasksFailed)
	assert.Nil(t, resp.DetailedSense)
	assert.Nil(t, resp.MissingFields)
	assert.NotEmpty(t, resp.Error)
}

func TestAssembleAllTasksFailed(t *testing.T) {
	merger := NewMerger(PolicyMerge, 0)
	req := &core.LookupRequest{Word: "bank", Section: core.SectionEtymology}
	results := map[tasks.TaskID]pool.TaskResult{
		tasks.IDForKind(tasks.KindEtymology): failedResult(tasks.KindEtymology, 5*time.Millisecond),
	}

	resp, stats := merger.Assemble(req, []tasks.TaskKind{tasks.KindEtymology}, results, nil)

	assert.False(t, resp.Success)
	assert.Equal(t, 1, stats.TasksFailed)
	assert.Nil(t, resp.Payload())
	assert.Equal(t, []string{"etymology", "root_analysis"}, resp.MissingFields)
}

func TestAssembleMissingResultCountsAsFailure(t *testing.T) {
	merger := NewMerger(PolicyMerge, 0)
	req := &core.LookupRequest{Word: "run", Section: core.SectionMedia}

	resp, stats := merger.Assemble(req, []tasks.TaskKind{tasks.KindMediaSearch}, nil, nil)

	assert.False(t, resp.Success)
	assert.Equal(t, 1, stats.TasksFailed)
	assert.Equal(t, []string{"media"}, resp.MissingFields)
}

func TestAssembleMediaSection(t *testing.T) {
	merger := NewMerger(PolicyMerge, 0)
	req := &core.LookupRequest{Word: "run", Section: core.SectionMedia}
	results := map[tasks.TaskID]pool.TaskResult{
		tasks.IDForKind(tasks.KindMediaSearch): okResult(tasks.KindMediaSearch,
			core.MediaList{{ID: "BV1", Title: "Run explained", URL: "u"}}, 20*time.Millisecond),
	}

	resp, _ := merger.Assemble(req, []tasks.TaskKind{tasks.KindMediaSearch}, results, nil)

	assert.True(t, resp.Success)
	require.Len(t, resp.Media, 1)
	assert.Equal(t, "Run explained", resp.Media[0].Title)
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyMerge, policy)

	policy, err = ParsePolicy("discard")
	require.NoError(t, err)
	assert.Equal(t, PolicyDiscard, policy)

	_, err = ParsePolicy("keep-some")
	require.Error(t, err)
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(err))
}
