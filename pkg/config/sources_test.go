package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceMethods(t *testing.T) {
	source := NewFileSource()
	assert.Equal(t, "file", source.Name())
	assert.Equal(t, 100, source.Priority())

	sourceWithPriority := NewFileSourceWithPriority(200)
	assert.Equal(t, 200, sourceWithPriority.Priority())
}

func TestFileSourceLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexgo.yaml")

	content := []byte(`
llm:
  provider: openai
  model_id: gpt-4o-mini
reference:
  timeout: 500ms
cache:
  ttl: 30m
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	source := NewFileSource()
	config := GetDefaultConfig()

	err := source.Load(config, []string{path})
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", config.LLM.ModelID)
	assert.Equal(t, 500*time.Millisecond, config.Reference.Timeout)
	assert.Equal(t, 30*time.Minute, config.Cache.TTL)

	// Fields absent from the file keep their defaults
	assert.Equal(t, 4, config.Tasks.MaxParallel)
}

func TestFileSourceLoadNonexistentFile(t *testing.T) {
	source := NewFileSource()
	config := GetDefaultConfig()

	// Should not fail for non-existent files, just skip them
	err := source.Load(config, []string{"/nonexistent/file.yaml"})
	assert.NoError(t, err)
}

func TestFileSourceLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexgo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not: closed"), 0644))

	source := NewFileSource()
	config := GetDefaultConfig()

	err := source.Load(config, []string{path})
	assert.Error(t, err)
}

func TestEnvironmentSourceMethods(t *testing.T) {
	source := NewEnvironmentSource()
	assert.Equal(t, "environment", source.Name())
	assert.Equal(t, 200, source.Priority())

	sourceWithPrefix := NewEnvironmentSourceWithPrefix("CUSTOM_")
	assert.Equal(t, "CUSTOM_", sourceWithPrefix.prefix)

	sourceWithOptions := NewEnvironmentSourceWithOptions(300, "CUSTOM_")
	assert.Equal(t, 300, sourceWithOptions.Priority())
	assert.Equal(t, "CUSTOM_", sourceWithOptions.prefix)
}

func TestEnvironmentSourceSetLLMValue(t *testing.T) {
	source := NewEnvironmentSource()
	llm := &LLMConfig{}

	tests := []struct {
		key   string
		value string
	}{
		{"provider", "anthropic"},
		{"model.id", "deepseek-chat"},
		{"modelid", "deepseek-chat"},
		{"api.key", "test-key"},
		{"apikey", "test-key"},
		{"base.url", "https://api.example.com"},
		{"timeout", "30s"},
		{"generation.temperature", "0.7"},
		{"generation.top.p", "0.9"},
		{"rate.limit.rps", "2.5"},
		{"rate.limit.burst", "8"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := source.setLLMValue(llm, tt.key, tt.value)
			require.NoError(t, err)
		})
	}

	assert.Equal(t, "anthropic", llm.Provider)
	assert.Equal(t, "deepseek-chat", llm.ModelID)
	assert.Equal(t, "test-key", llm.APIKey)
	assert.Equal(t, "https://api.example.com", llm.BaseURL)
	assert.Equal(t, 30*time.Second, llm.Timeout)
	assert.Equal(t, 0.7, llm.Generation.Temperature)
	assert.Equal(t, 0.9, llm.Generation.TopP)
	assert.Equal(t, 2.5, llm.RateLimit.RequestsPerSecond)
	assert.Equal(t, 8, llm.RateLimit.Burst)

	// Test invalid values
	err := source.setLLMValue(llm, "timeout", "invalid")
	assert.Error(t, err)

	err = source.setLLMValue(llm, "generation.temperature", "invalid")
	assert.Error(t, err)

	err = source.setLLMValue(llm, "rate.limit.burst", "invalid")
	assert.Error(t, err)

	err = source.setLLMValue(llm, "unsupported.key", "value")
	assert.NoError(t, err) // Unknown keys are silently ignored
}

func TestEnvironmentSourceSetReferenceValue(t *testing.T) {
	source := NewEnvironmentSource()
	ref := &ReferenceConfig{}

	err := source.setReferenceValue(ref, "base.url", "https://api.dictionaryapi.dev")
	require.NoError(t, err)
	assert.Equal(t, "https://api.dictionaryapi.dev", ref.BaseURL)

	err = source.setReferenceValue(ref, "timeout", "800ms")
	require.NoError(t, err)
	assert.Equal(t, 800*time.Millisecond, ref.Timeout)

	err = source.setReferenceValue(ref, "timeout", "invalid")
	assert.Error(t, err)
}

func TestEnvironmentSourceSetTasksValue(t *testing.T) {
	source := NewEnvironmentSource()
	tasks := &TasksConfig{}

	err := source.setTasksValue(tasks, "max.parallel", "8")
	require.NoError(t, err)
	assert.Equal(t, 8, tasks.MaxParallel)

	err = source.setTasksValue(tasks, "aggregate.timeout", "90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, tasks.AggregateTimeout)

	err = source.setTasksValue(tasks, "budgets.simple.max.tokens", "128")
	require.NoError(t, err)
	assert.Equal(t, 128, tasks.Budgets.Simple.MaxTokens)

	err = source.setTasksValue(tasks, "budgets.discovery.timeout", "50s")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Second, tasks.Budgets.Discovery.Timeout)

	// Test invalid values
	err = source.setTasksValue(tasks, "max.parallel", "invalid")
	assert.Error(t, err)

	err = source.setTasksValue(tasks, "budgets.medium.max.tokens", "invalid")
	assert.Error(t, err)
}

func TestEnvironmentSourceSetEngineValue(t *testing.T) {
	source := NewEnvironmentSource()
	engine := &EngineConfig{}

	err := source.setEngineValue(engine, "partial.policy", "discard")
	require.NoError(t, err)
	assert.Equal(t, "discard", engine.PartialPolicy)

	err = source.setEngineValue(engine, "require.authoritative", "true")
	require.NoError(t, err)
	assert.True(t, engine.RequireAuthoritative)

	err = source.setEngineValue(engine, "merge.overhead", "25ms")
	require.NoError(t, err)
	assert.Equal(t, 25*time.Millisecond, engine.MergeOverhead)

	err = source.setEngineValue(engine, "require.authoritative", "invalid")
	assert.Error(t, err)
}

func TestEnvironmentSourceSetCacheValue(t *testing.T) {
	source := NewEnvironmentSource()
	cache := &CacheConfig{}

	err := source.setCacheValue(cache, "enabled", "true")
	require.NoError(t, err)
	assert.True(t, cache.Enabled)

	err = source.setCacheValue(cache, "ttl", "2h")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cache.TTL)

	err = source.setCacheValue(cache, "max.entries", "1000")
	require.NoError(t, err)
	assert.Equal(t, 1000, cache.MaxEntries)

	err = source.setCacheValue(cache, "ttl", "invalid")
	assert.Error(t, err)
}

func TestEnvironmentSourceSetLoggingValue(t *testing.T) {
	source := NewEnvironmentSource()
	logging := &LoggingConfig{}

	err := source.setLoggingValue(logging, "level", "DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", logging.Level)

	err = source.setLoggingValue(logging, "sample.rate", "5")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), logging.SampleRate)

	err = source.setLoggingValue(logging, "decision.log", "/var/log/lexgo/decisions.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/lexgo/decisions.jsonl", logging.DecisionLog)

	// Test invalid values
	err = source.setLoggingValue(logging, "sample.rate", "invalid")
	assert.Error(t, err)

	err = source.setLoggingValue(logging, "unsupported.key", "value")
	assert.NoError(t, err) // Unknown keys are silently ignored
}

func TestEnvironmentSourceParseDuration(t *testing.T) {
	source := NewEnvironmentSource()

	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"30s", 30 * time.Second},
		{"800ms", 800 * time.Millisecond},
		{"45", 45 * time.Second},
		{"1.5", 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			d, err := source.parseDuration(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}

	_, err := source.parseDuration("not-a-duration")
	assert.Error(t, err)
}

func TestEnvironmentSourceLoad(t *testing.T) {
	t.Setenv("LEXGO_LLM_PROVIDER", "openai")
	t.Setenv("LEXGO_CACHE_TTL", "30m")

	source := NewEnvironmentSource()
	config := GetDefaultConfig()

	err := source.Load(config, nil)
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, 30*time.Minute, config.Cache.TTL)
}

func TestEnvironmentSourceUnhandledPath(t *testing.T) {
	source := NewEnvironmentSource()
	config := GetDefaultConfig()

	// Test unhandled configuration path (should not fail)
	err := source.setConfigValue(config, "unhandled.path", "value")
	assert.NoError(t, err) // Should not fail, just ignore unknown paths
}

func TestCommandLineSource(t *testing.T) {
	args := []string{
		"--config.llm.provider=openai",
		"--config-logging-level", "DEBUG",
		"-c", "cache.enabled=false",
	}

	source := NewCommandLineSource(args)
	assert.Equal(t, "command_line", source.Name())
	assert.Equal(t, 300, source.Priority())

	sourceWithPriority := NewCommandLineSourceWithPriority(400, args)
	assert.Equal(t, 400, sourceWithPriority.Priority())

	// Test parsing config args
	configArgs := source.parseConfigArgs()
	assert.Equal(t, "openai", configArgs["llm.provider"])
	assert.Equal(t, "DEBUG", configArgs["logging.level"])
	assert.Equal(t, "false", configArgs["cache.enabled"])
}

func TestCommandLineSourceLoad(t *testing.T) {
	args := []string{
		"--config.llm.provider=anthropic",
		"--config.logging.level=ERROR",
	}

	source := NewCommandLineSource(args)
	config := GetDefaultConfig()

	err := source.Load(config, nil)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", config.LLM.Provider)
	assert.Equal(t, "ERROR", config.Logging.Level)
}

func TestMultiSourceMethods(t *testing.T) {
	fileSource := NewFileSource()
	envSource := NewEnvironmentSource()

	multiSource := NewMultiSource(fileSource, envSource)
	assert.Equal(t, "multi_source", multiSource.Name())
	assert.Equal(t, 200, multiSource.Priority()) // Highest priority among sources

	sources := multiSource.GetSources()
	assert.Len(t, sources, 2)

	// Test adding source
	cmdSource := NewCommandLineSource([]string{})
	multiSource.AddSource(cmdSource)
	assert.Len(t, multiSource.GetSources(), 3)

	// Test removing source
	multiSource.RemoveSource("command_line")
	assert.Len(t, multiSource.GetSources(), 2)
}

func TestMultiSourceLoad(t *testing.T) {
	t.Setenv("LEXGO_LLM_PROVIDER", "openai")

	fileSource := NewFileSource()
	envSource := NewEnvironmentSource()

	multiSource := NewMultiSource(fileSource, envSource)
	config := GetDefaultConfig()

	err := multiSource.Load(config, nil)
	require.NoError(t, err)

	// Environment should override default
	assert.Equal(t, "openai", config.LLM.Provider)
}

func TestSortSourcesByPriority(t *testing.T) {
	fileSource := NewFileSourceWithPriority(100)
	envSource := NewEnvironmentSourceWithOptions(200, "LEXGO_")
	cmdSource := NewCommandLineSourceWithPriority(300, []string{})

	multiSource := NewMultiSource(cmdSource, fileSource, envSource)
	sorted := multiSource.sortSourcesByPriority()

	// Should be sorted by ascending priority
	assert.Equal(t, 100, sorted[0].Priority())
	assert.Equal(t, 200, sorted[1].Priority())
	assert.Equal(t, 300, sorted[2].Priority())
}

func TestCreateDefaultSources(t *testing.T) {
	sources := CreateDefaultSources()
	assert.Len(t, sources, 2)

	names := make([]string, len(sources))
	for i, source := range sources {
		names[i] = source.Name()
	}

	assert.Contains(t, names, "file")
	assert.Contains(t, names, "environment")
}

func TestCreateAllSources(t *testing.T) {
	args := []string{"--config.test=value"}
	sources := CreateAllSources(args)
	assert.Len(t, sources, 3)

	names := make([]string, len(sources))
	for i, source := range sources {
		names[i] = source.Name()
	}

	assert.Contains(t, names, "file")
	assert.Contains(t, names, "environment")
	assert.Contains(t, names, "command_line")
}

func TestLoadFromSources(t *testing.T) {
	t.Setenv("LEXGO_LOGGING_LEVEL", "WARN")

	sources := []Source{
		NewFileSource(),
		NewEnvironmentSource(),
	}

	config := GetDefaultConfig()
	err := LoadFromSources(config, sources, nil)
	require.NoError(t, err)

	assert.Equal(t, "WARN", config.Logging.Level)
}
