// Command lexgo looks up one section of lexical information for a word and
// prints the merged response as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/XiaoConstantine/lexgo/pkg/cache"
	"github.com/XiaoConstantine/lexgo/pkg/config"
	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/corpus"
	"github.com/XiaoConstantine/lexgo/pkg/engine"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
	"github.com/XiaoConstantine/lexgo/pkg/llms"
	"github.com/XiaoConstantine/lexgo/pkg/logging"
	"github.com/XiaoConstantine/lexgo/pkg/media"
	"github.com/XiaoConstantine/lexgo/pkg/reference"
)

func main() {
	var (
		word        = flag.String("word", "", "word to look up")
		section     = flag.String("section", "basic", "section to resolve (basic, etymology, word_family, usage_context, cultural_notes, frequency, detailed_sense, media)")
		entryIndex  = flag.Int("entry", -1, "entry index for sense-scoped sections")
		senseIndex  = flag.Int("sense", -1, "sense index for sense-scoped sections")
		configPath  = flag.String("config", "", "path to a lexgo config file")
		importRanks = flag.String("import-ranks", "", "import word frequency ranks from a parquet file and exit")
		tracePath   = flag.String("trace", "", "record a runtime trace and write a snapshot to this file when the lookup fails")
	)
	flag.Parse()

	if err := run(*word, *section, *entryIndex, *senseIndex, *configPath, *importRanks, *tracePath); err != nil {
		fmt.Fprintf(os.Stderr, "lexgo: %v\n", err)
		if errors.CodeOf(err).IsClientError() {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(word, section string, entryIndex, senseIndex int, configPath, importRanks, tracePath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	outputs := []logging.Output{logging.NewConsoleOutput(true)}
	if cfg.Logging.DecisionLog != "" {
		f, err := os.OpenFile(cfg.Logging.DecisionLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, errors.ConfigurationError, "opening decision log failed")
		}
		defer f.Close()
		outputs = append(outputs, logging.NewJSONOutput(f))
	}
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity:      logging.ParseSeverity(cfg.Logging.Level),
		Outputs:       outputs,
		SampleRate:    cfg.Logging.SampleRate,
		DefaultFields: cfg.Logging.DefaultFields,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRequestID(ctx)

	var recorder *logging.FlightRecorder
	if tracePath != "" {
		recorder = logging.NewFlightRecorder()
		if err := recorder.Start(); err != nil {
			return errors.Wrap(err, errors.ConfigurationError, "starting flight recorder failed")
		}
		defer recorder.Stop()
	}

	if importRanks != "" {
		return runImport(ctx, cfg, importRanks)
	}
	if word == "" {
		return errors.New(errors.MissingParameter, "-word is required")
	}

	req := &core.LookupRequest{Word: word, Section: core.Section(section)}
	if entryIndex >= 0 {
		req.EntryIndex = &entryIndex
	}
	if senseIndex >= 0 {
		req.SenseIndex = &senseIndex
	}

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := eng.Resolve(ctx, req)
	if err != nil {
		if recorder != nil {
			return recorder.SnapshotOnError(err, tracePath)
		}
		return err
	}
	if recorder != nil && !resp.Success {
		if snapErr := recorder.Snapshot(tracePath); snapErr != nil {
			logging.GetLogger().Warn(ctx, "trace snapshot failed: %v", snapErr)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(resp)
}

func loadConfig(path string) (*config.Config, error) {
	opts := []config.ManagerOption{}
	if path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	manager, err := config.NewManager(opts...)
	if err != nil {
		return nil, err
	}
	if err := manager.Load(); err != nil {
		return nil, err
	}
	return manager.Get(), nil
}

func runImport(ctx context.Context, cfg *config.Config, parquetPath string) error {
	if cfg.Corpus.Path == "" {
		return errors.New(errors.ConfigurationError, "corpus.path must be set to import ranks")
	}
	store, err := corpus.Open(cfg.Corpus.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.ImportParquet(ctx, parquetPath)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d word ranks into %s\n", count, cfg.Corpus.Path)
	return nil
}

func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	llm, err := llms.New(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}

	opts := []engine.Option{
		engine.WithFetcher(reference.NewClientFromConfig(cfg.Reference)),
		engine.WithTasksConfig(cfg.Tasks),
		engine.WithEngineConfig(cfg.Engine),
		engine.WithMediaConfig(cfg.Media),
	}

	if cache.IsEnabled(&cfg.Cache) {
		store, err := cache.NewCache(cache.LoadConfig(&cfg.Cache))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = store.Close() })
		opts = append(opts, engine.WithResponseCache(
			cache.NewResponseCache(store, cache.WithTTL(cfg.Cache.TTL))))
	}

	if cfg.Corpus.Path != "" {
		store, err := corpus.Open(cfg.Corpus.Path)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = store.Close() })
		opts = append(opts, engine.WithRankSource(store))
	}

	searcher, closer, err := buildSearcher(cfg.Media)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	if searcher != nil {
		opts = append(opts, engine.WithSearcher(searcher))
	}

	eng, err := engine.New(llm, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}

// buildSearcher wires the media searcher. An MCP server takes precedence
// over the plain HTTP endpoint; neither configured means the media section
// reports its searcher missing at resolve time.
func buildSearcher(cfg config.MediaConfig) (media.Searcher, func(), error) {
	if cfg.MCP.Command != "" {
		cmd := exec.Command(cfg.MCP.Command, cfg.MCP.Args...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, nil, err
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, nil, err
		}
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return nil, nil, errors.Wrap(err, errors.ConfigurationError, "starting media search server failed")
		}
		closer := func() {
			_ = stdin.Close()
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}

		client, err := media.NewMCPClientFromStdio(stdout, stdin)
		if err != nil {
			closer()
			return nil, nil, err
		}
		searcher, err := media.NewMCPSearcher(client, cfg.MCP.Tool)
		if err != nil {
			closer()
			return nil, nil, err
		}
		return searcher, closer, nil
	}

	if cfg.BaseURL != "" {
		searcher, err := media.NewHTTPSearcher(cfg.BaseURL, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return searcher, nil, nil
	}
	return nil, nil, nil
}
