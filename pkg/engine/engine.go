// Package engine orchestrates lookups: cache consultation, the single
// authoritative fetch, generative fan-out, and merge into one response.
package engine

import (
	"context"
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/cache"
	"github.com/XiaoConstantine/lexgo/pkg/config"
	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/corpus"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
	"github.com/XiaoConstantine/lexgo/pkg/logging"
	"github.com/XiaoConstantine/lexgo/pkg/media"
	"github.com/XiaoConstantine/lexgo/pkg/merge"
	"github.com/XiaoConstantine/lexgo/pkg/pool"
	"github.com/XiaoConstantine/lexgo/pkg/tasks"
)

// Fetcher retrieves the authoritative entry set for a word.
type Fetcher interface {
	Fetch(ctx context.Context, word string) (*core.EntrySet, error)
}

// RankSource answers corpus frequency lookups. A miss is not an error.
type RankSource interface {
	Rank(word string) (corpus.Rank, bool, error)
}

// Engine resolves lookup requests. Safe for concurrent use.
type Engine struct {
	fetcher  Fetcher
	catalog  *tasks.Catalog
	builder  *tasks.Builder
	executor *pool.Executor
	merger   *merge.Merger
	cache    *cache.ResponseCache
	ranks    RankSource
	clock    core.Clock

	aggregateTimeout     time.Duration
	requireAuthoritative bool
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	fetcher   Fetcher
	searcher  media.Searcher
	cache     *cache.ResponseCache
	ranks     RankSource
	clock     core.Clock
	tasksCfg  config.TasksConfig
	engineCfg config.EngineConfig
	mediaCfg  config.MediaConfig
}

// WithFetcher wires the authoritative reference client. Without one, every
// lookup takes the generative path.
func WithFetcher(f Fetcher) Option {
	return func(c *engineConfig) { c.fetcher = f }
}

// WithSearcher wires the auxiliary content searcher for the media section.
func WithSearcher(s media.Searcher) Option {
	return func(c *engineConfig) { c.searcher = s }
}

// WithResponseCache wires the response cache.
func WithResponseCache(rc *cache.ResponseCache) Option {
	return func(c *engineConfig) { c.cache = rc }
}

// WithRankSource wires the corpus frequency store used to seed frequency
// estimation.
func WithRankSource(r RankSource) Option {
	return func(c *engineConfig) { c.ranks = r }
}

// WithClock overrides the time source.
func WithClock(clock core.Clock) Option {
	return func(c *engineConfig) { c.clock = clock }
}

// WithTasksConfig sets task budgets, the aggregate timeout, and the
// parallelism bound.
func WithTasksConfig(cfg config.TasksConfig) Option {
	return func(c *engineConfig) { c.tasksCfg = cfg }
}

// WithEngineConfig sets the partial-failure policy and related switches.
func WithEngineConfig(cfg config.EngineConfig) Option {
	return func(c *engineConfig) { c.engineCfg = cfg }
}

// WithMediaConfig sets the media search timeout and candidate limit.
func WithMediaConfig(cfg config.MediaConfig) Option {
	return func(c *engineConfig) { c.mediaCfg = cfg }
}

// New creates an engine over the generative backend.
func New(llm core.LLM, opts ...Option) (*Engine, error) {
	if llm == nil {
		return nil, errors.New(errors.ConfigurationError, "a generative backend is required")
	}

	defaults := config.GetDefaultConfig()
	cfg := &engineConfig{
		clock:     core.SystemClock,
		tasksCfg:  defaults.Tasks,
		engineCfg: defaults.Engine,
		mediaCfg:  defaults.Media,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	policy, err := merge.ParsePolicy(cfg.engineCfg.PartialPolicy)
	if err != nil {
		return nil, err
	}

	catalog := tasks.NewCatalog(cfg.tasksCfg, cfg.mediaCfg.Timeout)
	builderOpts := []tasks.BuilderOption{}
	if cfg.mediaCfg.Limit > 0 {
		builderOpts = append(builderOpts, tasks.WithMediaLimit(cfg.mediaCfg.Limit))
	}

	maxParallel := cfg.tasksCfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = catalog.MaxFanOut()
	}
	aggregate := cfg.tasksCfg.AggregateTimeout
	if aggregate <= 0 {
		aggregate = defaults.Tasks.AggregateTimeout
	}

	return &Engine{
		fetcher:  cfg.fetcher,
		catalog:  catalog,
		builder:  tasks.NewBuilder(catalog, builderOpts...),
		executor: pool.NewExecutor(llm, pool.WithSearcher(cfg.searcher), pool.WithMaxParallel(maxParallel)),
		merger:   merge.NewMerger(policy, cfg.engineCfg.MergeOverhead),
		cache:    cfg.cache,
		ranks:    cfg.ranks,
		clock:    cfg.clock,

		aggregateTimeout:     aggregate,
		requireAuthoritative: cfg.engineCfg.RequireAuthoritative,
	}, nil
}

// Resolve serves one lookup request. Request-shape and addressing errors
// return (nil, err); operational failures return a response with Success
// false so partial results still reach the caller.
func (e *Engine) Resolve(ctx context.Context, req *core.LookupRequest) (resp *core.LookupResponse, err error) {
	if req == nil {
		return nil, errors.New(errors.MissingParameter, "request is required")
	}

	start := e.clock.Now()
	logger := logging.GetLogger()

	ctx, endTask := logging.TraceTask(ctx, "lookup")
	defer endTask()

	// The decision record is deferred so rejected requests log too: exactly
	// one event leaves per call, whatever the exit path.
	var cacheHit bool
	var stats merge.Stats
	defer func() {
		ev := logging.DecisionEvent{
			Word:        req.Word,
			Section:     req.Section.String(),
			Latency:     e.clock.Now().Sub(start),
			CacheHit:    cacheHit,
			TasksRun:    stats.TasksRun,
			TasksFailed: stats.TasksFailed,
		}
		switch {
		case err != nil:
			ev.Outcome = errors.CodeOf(err).String()
		case resp.Success:
			ev.DataSource = string(resp.DataSource)
			ev.Outcome = logging.OutcomeSuccess
		default:
			ev.DataSource = string(resp.DataSource)
			allFailed := stats.TasksRun == 0 || stats.TasksFailed == stats.TasksRun
			if resp.Payload() == nil && allFailed {
				ev.Outcome = errors.AllSourcesFailed.String()
			} else {
				ev.Outcome = logging.OutcomePartial
			}
		}
		logger.Decision(ctx, ev)
	}()

	if err = req.Validate(); err != nil {
		return nil, err
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, req); ok {
			cacheHit = true
			return cached, nil
		}
	}

	// Sense addresses can be bounds-checked against an already cached entry
	// set, failing fast with no upstream traffic at all.
	if req.Section.RequiresSenseAddress() {
		if set, ok := e.cachedEntrySet(ctx, req.Word); ok {
			if err = set.ValidateIndex(*req.EntryIndex, *req.SenseIndex); err != nil {
				return nil, err
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.aggregateTimeout)
	defer cancel()

	set, fetched, acquireErr := e.acquireEntrySet(ctx, req)
	if acquireErr != nil {
		return e.failureResponse(req, acquireErr, start), nil
	}

	if req.Section.RequiresSenseAddress() {
		if err = set.ValidateIndex(*req.EntryIndex, *req.SenseIndex); err != nil {
			return nil, err
		}
	}

	if req.Section == core.SectionBasic {
		resp = e.basicResponse(req, set, fetched, start)
	} else {
		resp, stats = e.fanOut(ctx, req, set, fetched)
	}

	if e.requireAuthoritative && !fetched {
		resp.Success = false
		if resp.Error == "" {
			resp.Error = "authoritative source unavailable"
		}
	}

	if e.cache != nil {
		if putErr := e.cache.Put(ctx, req, resp); putErr != nil {
			logger.Warn(ctx, "cache store failed for %s: %v", req.Word, putErr)
		}
	}

	return resp, nil
}

// acquireEntrySet performs the single authoritative fetch, falling back to
// generative discovery. fetched reports whether the authoritative source
// answered.
func (e *Engine) acquireEntrySet(ctx context.Context, req *core.LookupRequest) (set *core.EntrySet, fetched bool, err error) {
	logger := logging.GetLogger()

	var fetchErr error
	if e.fetcher != nil {
		set, fetchErr = e.fetcher.Fetch(ctx, req.Word)
		if fetchErr == nil {
			return set, true, nil
		}
		logger.Debug(ctx, "authoritative fetch for %q failed, falling back to discovery: %v", req.Word, fetchErr)
	}

	set, discoverErr := e.discover(ctx, req.Word)
	if discoverErr == nil {
		return set, false, nil
	}

	err = errors.WithFields(
		errors.Wrap(discoverErr, errors.AllSourcesFailed, "no source could resolve the word"),
		errors.Fields{"word": req.Word})
	if fetchErr != nil {
		err = errors.WithFields(err, errors.Fields{"fetch_error": fetchErr.Error()})
	}
	return nil, false, err
}

// discover synthesizes an entry set through the generative backend.
func (e *Engine) discover(ctx context.Context, word string) (*core.EntrySet, error) {
	task, err := e.builder.BuildDiscovery(word)
	if err != nil {
		return nil, err
	}

	results := e.executor.Run(ctx, []tasks.AgentTask{task})
	res := results[task.ID]
	if res.Failed() {
		if res.Err != nil {
			return nil, res.Err
		}
		return nil, errors.New(errors.LLMGenerationFailed, "discovery produced no entry set")
	}

	set := res.Fragment.(*core.EntrySet)
	if set.Headword == "" {
		set.Headword = word
	}
	return set, nil
}

func (e *Engine) fanOut(ctx context.Context, req *core.LookupRequest, set *core.EntrySet, fetched bool) (*core.LookupResponse, merge.Stats) {
	kinds, err := e.catalog.Kinds(req.Section)
	if err != nil {
		return e.failureResponse(req, err, e.clock.Now()), merge.Stats{}
	}

	taskList, err := e.builder.Build(req, set, e.seedFor(req))
	if err != nil {
		return e.failureResponse(req, err, e.clock.Now()), merge.Stats{}
	}

	results := e.executor.Run(ctx, taskList)

	var baseline *core.Sense
	if req.Section.RequiresSenseAddress() {
		// Bounds were validated before dispatch.
		baseline, _ = set.SenseAt(*req.EntryIndex, *req.SenseIndex)
	}

	resp, stats := e.merger.Assemble(req, kinds, results, baseline)
	resp.DataSource = dataSource(req.Section, fetched)
	return resp, stats
}

// seedFor builds the request-level seed. Corpus evidence only informs
// frequency estimation.
func (e *Engine) seedFor(req *core.LookupRequest) *tasks.SeedContext {
	if e.ranks == nil || req.Section != core.SectionFrequency {
		return nil
	}
	rank, ok, err := e.ranks.Rank(req.Word)
	if err != nil || !ok {
		return nil
	}
	return &tasks.SeedContext{
		CorpusRank: rank.Rank,
		CorpusBand: string(corpus.Band(rank.Rank)),
	}
}

func (e *Engine) basicResponse(req *core.LookupRequest, set *core.EntrySet, fetched bool, start time.Time) *core.LookupResponse {
	return &core.LookupResponse{
		Headword:      set.Headword,
		Section:       core.SectionBasic,
		DataSource:    dataSource(core.SectionBasic, fetched),
		ExecutionTime: e.clock.Now().Sub(start).Seconds(),
		Success:       true,
		Basic:         set,
	}
}

func (e *Engine) failureResponse(req *core.LookupRequest, err error, start time.Time) *core.LookupResponse {
	return &core.LookupResponse{
		Headword:      req.Word,
		Section:       req.Section,
		DataSource:    core.SourceGenerative,
		ExecutionTime: e.clock.Now().Sub(start).Seconds(),
		Success:       false,
		Error:         err.Error(),
		EntryIndex:    req.EntryIndex,
		SenseIndex:    req.SenseIndex,
	}
}

// cachedEntrySet looks up the word's basic section in the response cache.
func (e *Engine) cachedEntrySet(ctx context.Context, word string) (*core.EntrySet, bool) {
	if e.cache == nil {
		return nil, false
	}
	basicReq := &core.LookupRequest{Word: word, Section: core.SectionBasic}
	resp, ok := e.cache.Get(ctx, basicReq)
	if !ok || resp.Basic == nil {
		return nil, false
	}
	return resp.Basic, true
}

// dataSource classifies who produced the response payload.
func dataSource(section core.Section, fetched bool) core.DataSource {
	if !fetched {
		return core.SourceGenerative
	}
	if section == core.SectionBasic {
		return core.SourceAuthoritative
	}
	return core.SourceHybrid
}
