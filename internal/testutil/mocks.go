package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// ScriptedLLM is a core.LLM fake that routes GenerateWithJSON calls by
// instruction substring, so one instance can serve a whole fan-out with
// per-task payloads and injected failures.
type ScriptedLLM struct {
	mu        sync.Mutex
	responses map[string]map[string]interface{}
	failures  map[string]error
	delay     time.Duration
	calls     []string
}

// NewScriptedLLM creates an empty scripted backend.
func NewScriptedLLM() *ScriptedLLM {
	return &ScriptedLLM{
		responses: make(map[string]map[string]interface{}),
		failures:  make(map[string]error),
	}
}

// Script registers the payload returned for any prompt containing marker.
func (s *ScriptedLLM) Script(marker string, payload map[string]interface{}) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[marker] = payload
	return s
}

// Fail registers an error returned for any prompt containing marker.
func (s *ScriptedLLM) Fail(marker string, err error) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[marker] = err
	return s
}

// SetDelay makes every call block for d before answering.
func (s *ScriptedLLM) SetDelay(d time.Duration) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
	return s
}

// Calls returns the prompts received so far.
func (s *ScriptedLLM) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount returns how many generation calls were made.
func (s *ScriptedLLM) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *ScriptedLLM) Generate(ctx context.Context, prompt string, opts ...core.GenerateOption) (*core.LLMResponse, error) {
	return nil, errors.New(errors.Unknown, "scripted backend answers JSON calls only")
}

func (s *ScriptedLLM) GenerateWithJSON(ctx context.Context, prompt string, opts ...core.GenerateOption) (map[string]interface{}, error) {
	s.mu.Lock()
	s.calls = append(s.calls, prompt)
	delay := s.delay
	var failure error
	var payload map[string]interface{}
	for marker, err := range s.failures {
		if strings.Contains(prompt, marker) {
			failure = err
			break
		}
	}
	if failure == nil {
		for marker, p := range s.responses {
			if strings.Contains(prompt, marker) {
				payload = p
				break
			}
		}
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	if payload != nil {
		return payload, nil
	}
	return nil, errors.New(errors.Unknown, "no scripted response for prompt")
}

func (s *ScriptedLLM) ProviderName() string { return "scripted" }
func (s *ScriptedLLM) ModelID() string      { return "scripted-1" }

// ScriptedFetcher is a reference-source fake with a fixed answer.
type ScriptedFetcher struct {
	mu    sync.Mutex
	Set   *core.EntrySet
	Err   error
	calls int
}

func (f *ScriptedFetcher) Fetch(ctx context.Context, word string) (*core.EntrySet, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Set, nil
}

// CallCount returns how many fetches were made.
func (f *ScriptedFetcher) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ScriptedSearcher is a media searcher fake.
type ScriptedSearcher struct {
	mu         sync.Mutex
	Candidates []core.MediaCandidate
	Err        error
	calls      int
	lastWord   string
	lastLimit  int
}

func (s *ScriptedSearcher) Search(ctx context.Context, word string, limit int) ([]core.MediaCandidate, error) {
	s.mu.Lock()
	s.calls++
	s.lastWord = word
	s.lastLimit = limit
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Candidates, nil
}

// CallCount returns how many searches were made.
func (s *ScriptedSearcher) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastQuery returns the word and limit of the most recent search.
func (s *ScriptedSearcher) LastQuery() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWord, s.lastLimit
}
