// Package pool runs a request's task fan-out under a bounded worker pool.
// Tasks are isolated: one task's failure or timeout never cancels its
// siblings, only the aggregate deadline does.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
	"github.com/XiaoConstantine/lexgo/pkg/logging"
	"github.com/XiaoConstantine/lexgo/pkg/media"
	"github.com/XiaoConstantine/lexgo/pkg/tasks"
)

// TaskResult is the terminal outcome of one task: either a fragment or an
// error, plus the task's wall time.
type TaskResult struct {
	Kind     tasks.TaskKind
	Fragment core.Fragment
	Err      error
	Latency  time.Duration
}

// Failed reports whether the task produced no usable fragment.
func (r TaskResult) Failed() bool {
	return r.Err != nil || r.Fragment == nil
}

// Executor dispatches tasks to their backends under a goroutine bound.
type Executor struct {
	llm         core.LLM
	searcher    media.Searcher
	maxParallel int
}

// Option configures an Executor.
type Option func(*Executor)

// WithSearcher wires the auxiliary content searcher for media tasks.
func WithSearcher(s media.Searcher) Option {
	return func(e *Executor) {
		e.searcher = s
	}
}

// WithMaxParallel bounds concurrently running tasks.
func WithMaxParallel(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxParallel = n
		}
	}
}

// NewExecutor creates an executor over the generative backend.
func NewExecutor(llm core.LLM, opts ...Option) *Executor {
	e := &Executor{llm: llm, maxParallel: 4}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes every task and returns a result per task ID. Run itself never
// fails: per-task errors land in the result map, and an expired parent
// context marks the unfinished tasks Canceled (or Timeout) rather than
// aborting the batch.
func (e *Executor) Run(ctx context.Context, list []tasks.AgentTask) map[tasks.TaskID]TaskResult {
	results := make(map[tasks.TaskID]TaskResult, len(list))
	if len(list) == 0 {
		return results
	}

	logger := logging.GetLogger()

	var mu sync.Mutex
	record := func(id tasks.TaskID, res TaskResult) {
		mu.Lock()
		results[id] = res
		mu.Unlock()
	}

	// Plain pool, not WithCancelOnError: sibling isolation is the contract.
	p := pool.New().WithMaxGoroutines(e.maxParallel)
	for _, task := range list {
		t := task
		p.Go(func() {
			start := time.Now()

			// A parent expired before this task got a worker slot.
			if err := errors.CheckContext(ctx, "task dispatch"); err != nil {
				record(t.ID, TaskResult{Kind: t.Kind, Err: err, Latency: time.Since(start)})
				return
			}

			taskCtx := ctx
			if t.Budget.Timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, t.Budget.Timeout)
				defer cancel()
			}

			endRegion := logging.TraceRegion(taskCtx, "task."+string(t.ID))
			fragment, err := e.runOne(taskCtx, t)
			endRegion()
			latency := time.Since(start)
			if err != nil {
				logger.Debug(ctx, "task %s failed after %v: %v", t.ID, latency, err)
			} else {
				logger.Debug(ctx, "task %s completed in %v", t.ID, latency)
			}
			record(t.ID, TaskResult{Kind: t.Kind, Fragment: fragment, Err: err, Latency: latency})
		})
	}
	p.Wait()

	return results
}

func (e *Executor) runOne(ctx context.Context, t tasks.AgentTask) (core.Fragment, error) {
	if t.Kind == tasks.KindMediaSearch {
		return e.runMediaSearch(ctx, t)
	}
	return e.runGenerative(ctx, t)
}

func (e *Executor) runGenerative(ctx context.Context, t tasks.AgentTask) (core.Fragment, error) {
	if e.llm == nil {
		return nil, errors.New(errors.ConfigurationError, "no generative backend configured")
	}

	payload, err := e.llm.GenerateWithJSON(ctx, t.Instruction, core.WithMaxTokens(t.Budget.MaxTokens))
	if err != nil {
		// Deadline expiry wins over whatever the transport reported.
		if ctxErr := errors.CheckContext(ctx, string(t.ID)); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.WithFields(
			errors.Wrap(err, errors.TaskFailed, "generation failed"),
			errors.Fields{"task": string(t.ID)})
	}

	fragment, err := tasks.ParseFragment(t.Kind, payload)
	if err != nil {
		return nil, err
	}
	return fragment, nil
}

func (e *Executor) runMediaSearch(ctx context.Context, t tasks.AgentTask) (core.Fragment, error) {
	if e.searcher == nil {
		return nil, errors.New(errors.ConfigurationError, "no media searcher configured")
	}

	candidates, err := e.searcher.Search(ctx, t.Word, t.MediaLimit)
	if err != nil {
		if ctxErr := errors.CheckContext(ctx, string(t.ID)); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return core.MediaList(candidates), nil
}
