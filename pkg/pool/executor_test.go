package pool

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
	"github.com/XiaoConstantine/lexgo/pkg/tasks"
)

// scriptedLLM routes GenerateWithJSON by instruction substring so one fake
// can serve a whole fan-out.
type scriptedLLM struct {
	mu        sync.Mutex
	responses map[string]map[string]interface{}
	errors    map[string]error
	delay     time.Duration
	calls     int
	inFlight  int
	peak      int
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...core.GenerateOption) (*core.LLMResponse, error) {
	return nil, errors.New(errors.Unknown, "not used")
}

func (s *scriptedLLM) GenerateWithJSON(ctx context.Context, prompt string, opts ...core.GenerateOption) (map[string]interface{}, error) {
	s.mu.Lock()
	s.calls++
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	for marker, err := range s.errors {
		if strings.Contains(prompt, marker) {
			return nil, err
		}
	}
	for marker, payload := range s.responses {
		if strings.Contains(prompt, marker) {
			return payload, nil
		}
	}
	return nil, errors.New(errors.Unknown, "no scripted response")
}

func (s *scriptedLLM) ProviderName() string { return "scripted" }
func (s *scriptedLLM) ModelID() string      { return "scripted-1" }

type fakeSearcher struct {
	candidates []core.MediaCandidate
	err        error
	gotWord    string
	gotLimit   int
}

func (f *fakeSearcher) Search(ctx context.Context, word string, limit int) ([]core.MediaCandidate, error) {
	f.gotWord = word
	f.gotLimit = limit
	return f.candidates, f.err
}

func etymologyTask(timeout time.Duration) tasks.AgentTask {
	return tasks.AgentTask{
		ID:          tasks.IDForKind(tasks.KindEtymology),
		Kind:        tasks.KindEtymology,
		Word:        "bank",
		Instruction: "etymology of bank",
		Budget:      tasks.Budget{MaxTokens: 512, Timeout: timeout},
	}
}

func frequencyTask(timeout time.Duration) tasks.AgentTask {
	return tasks.AgentTask{
		ID:          tasks.IDForKind(tasks.KindFrequency),
		Kind:        tasks.KindFrequency,
		Word:        "bank",
		Instruction: "frequency of bank",
		Budget:      tasks.Budget{MaxTokens: 256, Timeout: timeout},
	}
}

func TestExecutorRunGenerativeTask(t *testing.T) {
	llm := &scriptedLLM{
		responses: map[string]map[string]interface{}{
			"etymology": {"etymology": "From Old Norse banki."},
		},
	}
	exec := NewExecutor(llm)

	results := exec.Run(context.Background(), []tasks.AgentTask{etymologyTask(time.Second)})
	require.Len(t, results, 1)

	res := results[tasks.IDForKind(tasks.KindEtymology)]
	require.NoError(t, res.Err)
	assert.False(t, res.Failed())
	assert.Equal(t, "From Old Norse banki.", res.Fragment.(*core.EtymologyInfo).Etymology)
	assert.Greater(t, res.Latency, time.Duration(0))
}

func TestExecutorSiblingIsolation(t *testing.T) {
	llm := &scriptedLLM{
		responses: map[string]map[string]interface{}{
			"frequency": {"frequency": "very_common"},
		},
		errors: map[string]error{
			"etymology": errors.New(errors.LLMGenerationFailed, "backend down"),
		},
	}
	exec := NewExecutor(llm)

	results := exec.Run(context.Background(), []tasks.AgentTask{
		etymologyTask(time.Second),
		frequencyTask(time.Second),
	})
	require.Len(t, results, 2)

	failed := results[tasks.IDForKind(tasks.KindEtymology)]
	require.Error(t, failed.Err)
	assert.Equal(t, errors.TaskFailed, errors.CodeOf(failed.Err))

	// The failure did not take the sibling down with it.
	ok := results[tasks.IDForKind(tasks.KindFrequency)]
	require.NoError(t, ok.Err)
	assert.Equal(t, core.FrequencyVeryCommon, ok.Fragment.(*core.FrequencyInfo).Frequency)
}

func TestExecutorBudgetTimeout(t *testing.T) {
	llm := &scriptedLLM{
		delay: 200 * time.Millisecond,
		responses: map[string]map[string]interface{}{
			"etymology": {"etymology": "slow"},
		},
	}
	exec := NewExecutor(llm)

	results := exec.Run(context.Background(), []tasks.AgentTask{etymologyTask(20 * time.Millisecond)})
	res := results[tasks.IDForKind(tasks.KindEtymology)]
	require.Error(t, res.Err)
	assert.Equal(t, errors.Timeout, errors.CodeOf(res.Err))
}

func TestExecutorCanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{}
	exec := NewExecutor(llm)

	results := exec.Run(ctx, []tasks.AgentTask{etymologyTask(time.Second)})
	res := results[tasks.IDForKind(tasks.KindEtymology)]
	require.Error(t, res.Err)
	assert.Equal(t, errors.Canceled, errors.CodeOf(res.Err))
	assert.Zero(t, llm.calls)
}

func TestExecutorInvalidFragmentIsTaskError(t *testing.T) {
	llm := &scriptedLLM{
		responses: map[string]map[string]interface{}{
			"frequency": {"frequency": "sometimes"},
		},
	}
	exec := NewExecutor(llm)

	results := exec.Run(context.Background(), []tasks.AgentTask{frequencyTask(time.Second)})
	res := results[tasks.IDForKind(tasks.KindFrequency)]
	require.Error(t, res.Err)
	assert.Equal(t, errors.InvalidResponse, errors.CodeOf(res.Err))
	assert.Nil(t, res.Fragment)
}

func TestExecutorMediaSearch(t *testing.T) {
	searcher := &fakeSearcher{
		candidates: []core.MediaCandidate{{ID: "BV1", Title: "Run explained", URL: "u"}},
	}
	exec := NewExecutor(nil, WithSearcher(searcher))

	task := tasks.AgentTask{
		ID:         tasks.IDForKind(tasks.KindMediaSearch),
		Kind:       tasks.KindMediaSearch,
		Word:       "run",
		MediaLimit: 3,
		Budget:     tasks.Budget{Timeout: time.Second},
	}
	results := exec.Run(context.Background(), []tasks.AgentTask{task})

	res := results[tasks.IDForKind(tasks.KindMediaSearch)]
	require.NoError(t, res.Err)
	list := res.Fragment.(core.MediaList)
	require.Len(t, list, 1)
	assert.Equal(t, "Run explained", list[0].Title)
	assert.Equal(t, "run", searcher.gotWord)
	assert.Equal(t, 3, searcher.gotLimit)
}

func TestExecutorMediaSearchWithoutSearcher(t *testing.T) {
	exec := NewExecutor(&scriptedLLM{})
	task := tasks.AgentTask{
		ID:     tasks.IDForKind(tasks.KindMediaSearch),
		Kind:   tasks.KindMediaSearch,
		Word:   "run",
		Budget: tasks.Budget{Timeout: time.Second},
	}
	results := exec.Run(context.Background(), []tasks.AgentTask{task})
	res := results[tasks.IDForKind(tasks.KindMediaSearch)]
	require.Error(t, res.Err)
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(res.Err))
}

func TestExecutorRespectsMaxParallel(t *testing.T) {
	llm := &scriptedLLM{
		delay: 30 * time.Millisecond,
		responses: map[string]map[string]interface{}{
			"etymology": {"etymology": "x"},
			"frequency": {"frequency": "common"},
			"family":    {"word_family": []interface{}{"banking"}},
		},
	}
	exec := NewExecutor(llm, WithMaxParallel(1))

	familyTask := tasks.AgentTask{
		ID:          tasks.IDForKind(tasks.KindWordFamily),
		Kind:        tasks.KindWordFamily,
		Word:        "bank",
		Instruction: "family of bank",
		Budget:      tasks.Budget{MaxTokens: 256, Timeout: time.Second},
	}
	results := exec.Run(context.Background(), []tasks.AgentTask{
		etymologyTask(time.Second),
		frequencyTask(time.Second),
		familyTask,
	})
	require.Len(t, results, 3)
	assert.Equal(t, 1, llm.peak)
	assert.Equal(t, 3, llm.calls)
}

func TestExecutorEmptyTaskList(t *testing.T) {
	exec := NewExecutor(&scriptedLLM{})
	results := exec.Run(context.Background(), nil)
	assert.Empty(t, results)
}
