package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source represents a configuration source.
type Source interface {
	// Load loads configuration from the source into the provided config
	Load(config *Config, paths []string) error

	// Name returns the name of the source
	Name() string

	// Priority returns the priority of the source (higher priority overrides lower)
	Priority() int
}

// FileSource loads configuration from YAML files.
type FileSource struct {
	priority int
}

// NewFileSource creates a new file source.
func NewFileSource() *FileSource {
	return &FileSource{priority: 100}
}

// NewFileSourceWithPriority creates a new file source with custom priority.
func NewFileSourceWithPriority(priority int) *FileSource {
	return &FileSource{priority: priority}
}

// Name returns the name of the file source.
func (fs *FileSource) Name() string {
	return "file"
}

// Priority returns the priority of the file source.
func (fs *FileSource) Priority() int {
	return fs.priority
}

// Load loads configuration from YAML files.
func (fs *FileSource) Load(config *Config, paths []string) error {
	for _, path := range paths {
		if !fileExists(path) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Parse once to reject files that do not map onto the config shape
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return fmt.Errorf("failed to parse YAML from %s: %w", path, err)
		}

		// Unmarshal the raw document into the target so only keys present in
		// the file override existing values
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to merge config from %s: %w", path, err)
		}
	}

	return nil
}

// EnvironmentSource loads configuration from environment variables.
type EnvironmentSource struct {
	priority int
	prefix   string
}

// NewEnvironmentSource creates a new environment source.
func NewEnvironmentSource() *EnvironmentSource {
	return &EnvironmentSource{
		priority: 200, // Higher priority than file source
		prefix:   "LEXGO_",
	}
}

// NewEnvironmentSourceWithPrefix creates a new environment source with custom prefix.
func NewEnvironmentSourceWithPrefix(prefix string) *EnvironmentSource {
	return &EnvironmentSource{
		priority: 200,
		prefix:   prefix,
	}
}

// NewEnvironmentSourceWithOptions creates a new environment source with custom options.
func NewEnvironmentSourceWithOptions(priority int, prefix string) *EnvironmentSource {
	return &EnvironmentSource{
		priority: priority,
		prefix:   prefix,
	}
}

// Name returns the name of the environment source.
func (es *EnvironmentSource) Name() string {
	return "environment"
}

// Priority returns the priority of the environment source.
func (es *EnvironmentSource) Priority() int {
	return es.priority
}

// Load loads configuration from environment variables.
func (es *EnvironmentSource) Load(config *Config, paths []string) error {
	envVars := es.getEnvironmentVariables()

	// Sort keys to ensure consistent processing order
	// Process longer keys first, then shorter ones (so shorter/abbreviated forms take precedence)
	keys := make([]string, 0, len(envVars))
	for key := range envVars {
		keys = append(keys, key)
	}

	// Sort by length (descending) then alphabetically for consistent ordering
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	// Apply environment variable overrides in sorted order
	for _, key := range keys {
		value := envVars[key]
		if err := es.setConfigValue(config, key, value); err != nil {
			return fmt.Errorf("failed to set config value %s=%s: %w", key, value, err)
		}
	}

	return nil
}

// getEnvironmentVariables gets all environment variables with the configured prefix.
func (es *EnvironmentSource) getEnvironmentVariables() map[string]string {
	envVars := make(map[string]string)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key, value := parts[0], parts[1]

		// Only process environment variables with our specific prefix
		if strings.HasPrefix(key, es.prefix) {
			// Convert environment variable to config key
			configKey := strings.ToLower(strings.TrimPrefix(key, es.prefix))
			configKey = strings.ReplaceAll(configKey, "_", ".")
			envVars[configKey] = value
		}
	}

	return envVars
}

// setConfigValue sets a configuration value using dot notation.
func (es *EnvironmentSource) setConfigValue(config *Config, key, value string) error {
	switch {
	case strings.HasPrefix(key, "llm."):
		return es.setLLMValue(&config.LLM, strings.TrimPrefix(key, "llm."), value)
	case strings.HasPrefix(key, "reference."):
		return es.setReferenceValue(&config.Reference, strings.TrimPrefix(key, "reference."), value)
	case strings.HasPrefix(key, "tasks."):
		return es.setTasksValue(&config.Tasks, strings.TrimPrefix(key, "tasks."), value)
	case strings.HasPrefix(key, "engine."):
		return es.setEngineValue(&config.Engine, strings.TrimPrefix(key, "engine."), value)
	case strings.HasPrefix(key, "cache."):
		return es.setCacheValue(&config.Cache, strings.TrimPrefix(key, "cache."), value)
	case strings.HasPrefix(key, "media."):
		return es.setMediaValue(&config.Media, strings.TrimPrefix(key, "media."), value)
	case strings.HasPrefix(key, "corpus."):
		return es.setCorpusValue(&config.Corpus, strings.TrimPrefix(key, "corpus."), value)
	case strings.HasPrefix(key, "logging."):
		return es.setLoggingValue(&config.Logging, strings.TrimPrefix(key, "logging."), value)
	default:
		// For unhandled paths, simply ignore them rather than failing
		// This allows for more flexible environment variable usage
		return nil
	}
}

// setLLMValue sets generative backend configuration values.
func (es *EnvironmentSource) setLLMValue(llm *LLMConfig, key, value string) error {
	switch key {
	case "provider":
		llm.Provider = value
	case "model.id", "modelid":
		llm.ModelID = value
	case "api.key", "apikey":
		llm.APIKey = value
	case "base.url", "baseurl":
		llm.BaseURL = value
	case "path":
		llm.Path = value
	case "timeout":
		timeout, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout duration: %s", value)
		}
		llm.Timeout = timeout
	case "generation.temperature":
		if temperature, err := strconv.ParseFloat(value, 64); err == nil {
			llm.Generation.Temperature = temperature
		} else {
			return fmt.Errorf("invalid temperature: %s", value)
		}
	case "generation.top.p", "generation.topp":
		if topP, err := strconv.ParseFloat(value, 64); err == nil {
			llm.Generation.TopP = topP
		} else {
			return fmt.Errorf("invalid top-p: %s", value)
		}
	case "rate.limit.requests.per.second", "rate.limit.rps":
		if rps, err := strconv.ParseFloat(value, 64); err == nil {
			llm.RateLimit.RequestsPerSecond = rps
		} else {
			return fmt.Errorf("invalid requests per second: %s", value)
		}
	case "rate.limit.burst":
		if burst, err := strconv.Atoi(value); err == nil {
			llm.RateLimit.Burst = burst
		} else {
			return fmt.Errorf("invalid burst: %s", value)
		}
	default:
		return nil
	}
	return nil
}

// setReferenceValue sets reference provider configuration values.
func (es *EnvironmentSource) setReferenceValue(ref *ReferenceConfig, key, value string) error {
	switch key {
	case "base.url", "baseurl":
		ref.BaseURL = value
	case "timeout":
		timeout, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout duration: %s", value)
		}
		ref.Timeout = timeout
	case "rate.limit.requests.per.second", "rate.limit.rps":
		if rps, err := strconv.ParseFloat(value, 64); err == nil {
			ref.RateLimit.RequestsPerSecond = rps
		} else {
			return fmt.Errorf("invalid requests per second: %s", value)
		}
	case "rate.limit.burst":
		if burst, err := strconv.Atoi(value); err == nil {
			ref.RateLimit.Burst = burst
		} else {
			return fmt.Errorf("invalid burst: %s", value)
		}
	default:
		return nil
	}
	return nil
}

// setTasksValue sets task layer configuration values.
func (es *EnvironmentSource) setTasksValue(tasks *TasksConfig, key, value string) error {
	switch {
	case key == "max.parallel" || key == "maxparallel":
		if maxParallel, err := strconv.Atoi(value); err == nil {
			tasks.MaxParallel = maxParallel
		} else {
			return fmt.Errorf("invalid max parallel: %s", value)
		}
	case key == "aggregate.timeout" || key == "aggregatetimeout":
		timeout, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid aggregate timeout: %s", value)
		}
		tasks.AggregateTimeout = timeout
	case strings.HasPrefix(key, "budgets.simple."):
		return es.setBudgetValue(&tasks.Budgets.Simple, strings.TrimPrefix(key, "budgets.simple."), value)
	case strings.HasPrefix(key, "budgets.medium."):
		return es.setBudgetValue(&tasks.Budgets.Medium, strings.TrimPrefix(key, "budgets.medium."), value)
	case strings.HasPrefix(key, "budgets.complex."):
		return es.setBudgetValue(&tasks.Budgets.Complex, strings.TrimPrefix(key, "budgets.complex."), value)
	case strings.HasPrefix(key, "budgets.discovery."):
		return es.setBudgetValue(&tasks.Budgets.Discovery, strings.TrimPrefix(key, "budgets.discovery."), value)
	default:
		return nil
	}
	return nil
}

// setBudgetValue sets one task budget's values.
func (es *EnvironmentSource) setBudgetValue(budget *BudgetConfig, key, value string) error {
	switch key {
	case "max.tokens", "maxtokens":
		if maxTokens, err := strconv.Atoi(value); err == nil {
			budget.MaxTokens = maxTokens
		} else {
			return fmt.Errorf("invalid max tokens: %s", value)
		}
	case "timeout":
		timeout, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid budget timeout: %s", value)
		}
		budget.Timeout = timeout
	default:
		return nil
	}
	return nil
}

// setEngineValue sets engine switch values.
func (es *EnvironmentSource) setEngineValue(engine *EngineConfig, key, value string) error {
	switch key {
	case "partial.policy", "partialpolicy":
		engine.PartialPolicy = value
	case "require.authoritative", "requireauthoritative":
		if required, err := strconv.ParseBool(value); err == nil {
			engine.RequireAuthoritative = required
		} else {
			return fmt.Errorf("invalid require authoritative flag: %s", value)
		}
	case "merge.overhead", "mergeoverhead":
		overhead, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid merge overhead: %s", value)
		}
		engine.MergeOverhead = overhead
	default:
		return nil
	}
	return nil
}

// setCacheValue sets cache configuration values.
func (es *EnvironmentSource) setCacheValue(cache *CacheConfig, key, value string) error {
	switch key {
	case "enabled":
		if enabled, err := strconv.ParseBool(value); err == nil {
			cache.Enabled = enabled
		} else {
			return fmt.Errorf("invalid enabled flag: %s", value)
		}
	case "type":
		cache.Type = value
	case "path":
		cache.Path = value
	case "ttl":
		ttl, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid TTL: %s", value)
		}
		cache.TTL = ttl
	case "max.entries", "maxentries":
		if maxEntries, err := strconv.Atoi(value); err == nil {
			cache.MaxEntries = maxEntries
		} else {
			return fmt.Errorf("invalid max entries: %s", value)
		}
	default:
		return nil
	}
	return nil
}

// setMediaValue sets media search configuration values.
func (es *EnvironmentSource) setMediaValue(media *MediaConfig, key, value string) error {
	switch key {
	case "base.url", "baseurl":
		media.BaseURL = value
	case "timeout":
		timeout, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid media timeout: %s", value)
		}
		media.Timeout = timeout
	case "limit":
		if limit, err := strconv.Atoi(value); err == nil {
			media.Limit = limit
		} else {
			return fmt.Errorf("invalid media limit: %s", value)
		}
	case "mcp.command":
		media.MCP.Command = value
	case "mcp.tool":
		media.MCP.Tool = value
	default:
		return nil
	}
	return nil
}

// setCorpusValue sets corpus configuration values.
func (es *EnvironmentSource) setCorpusValue(corpus *CorpusConfig, key, value string) error {
	switch key {
	case "path":
		corpus.Path = value
	default:
		return nil
	}
	return nil
}

// setLoggingValue sets logging configuration values.
func (es *EnvironmentSource) setLoggingValue(logging *LoggingConfig, key, value string) error {
	switch key {
	case "level":
		logging.Level = value
	case "sample.rate", "samplerate":
		if sampleRate, err := strconv.ParseUint(value, 10, 32); err == nil {
			logging.SampleRate = uint32(sampleRate)
		} else {
			return fmt.Errorf("invalid sample rate: %s", value)
		}
	case "decision.log", "decisionlog":
		logging.DecisionLog = value
	default:
		return nil
	}
	return nil
}

// CommandLineSource loads configuration from command line arguments.
type CommandLineSource struct {
	priority int
	args     []string
}

// NewCommandLineSource creates a new command line source.
func NewCommandLineSource(args []string) *CommandLineSource {
	return &CommandLineSource{
		priority: 300, // Highest priority
		args:     args,
	}
}

// NewCommandLineSourceWithPriority creates a new command line source with custom priority.
func NewCommandLineSourceWithPriority(priority int, args []string) *CommandLineSource {
	return &CommandLineSource{
		priority: priority,
		args:     args,
	}
}

// Name returns the name of the command line source.
func (cls *CommandLineSource) Name() string {
	return "command_line"
}

// Priority returns the priority of the command line source.
func (cls *CommandLineSource) Priority() int {
	return cls.priority
}

// Load loads configuration from command line arguments.
func (cls *CommandLineSource) Load(config *Config, paths []string) error {
	// Parse command line arguments
	configArgs := cls.parseConfigArgs()

	// Apply command line overrides
	for key, value := range configArgs {
		es := &EnvironmentSource{} // Reuse environment source logic
		if err := es.setConfigValue(config, key, value); err != nil {
			return fmt.Errorf("failed to set config value from command line %s=%s: %w", key, value, err)
		}
	}

	return nil
}

// parseConfigArgs parses configuration arguments from command line.
func (cls *CommandLineSource) parseConfigArgs() map[string]string {
	configArgs := make(map[string]string)

	for i, arg := range cls.args {
		// Handle --config-key=value format
		if strings.HasPrefix(arg, "--config.") || strings.HasPrefix(arg, "--config-") {
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimPrefix(parts[0], "--config.")
				key = strings.TrimPrefix(key, "--config-")
				key = strings.ReplaceAll(key, "-", ".")
				configArgs[key] = parts[1]
			} else if i+1 < len(cls.args) && !strings.HasPrefix(cls.args[i+1], "--") {
				// Handle --config-key value format
				key := strings.TrimPrefix(arg, "--config.")
				key = strings.TrimPrefix(key, "--config-")
				key = strings.ReplaceAll(key, "-", ".")
				configArgs[key] = cls.args[i+1]
			}
		}

		// Handle -c key=value format
		if arg == "-c" && i+1 < len(cls.args) {
			parts := strings.SplitN(cls.args[i+1], "=", 2)
			if len(parts) == 2 {
				configArgs[parts[0]] = parts[1]
			}
		}
	}

	return configArgs
}

// MultiSource combines multiple configuration sources.
type MultiSource struct {
	sources []Source
}

// NewMultiSource creates a new multi-source configuration loader.
func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

// Name returns the name of the multi-source.
func (ms *MultiSource) Name() string {
	return "multi_source"
}

// Priority returns the highest priority among all sources.
func (ms *MultiSource) Priority() int {
	maxPriority := 0
	for _, source := range ms.sources {
		if priority := source.Priority(); priority > maxPriority {
			maxPriority = priority
		}
	}
	return maxPriority
}

// Load loads configuration from all sources in priority order.
func (ms *MultiSource) Load(config *Config, paths []string) error {
	// Sort sources by priority (lowest first, so higher priority overrides)
	sources := ms.sortSourcesByPriority()

	// Load from each source
	for _, source := range sources {
		if err := source.Load(config, paths); err != nil {
			return fmt.Errorf("failed to load from source %s: %w", source.Name(), err)
		}
	}

	return nil
}

// sortSourcesByPriority sorts sources by priority (ascending).
func (ms *MultiSource) sortSourcesByPriority() []Source {
	sources := make([]Source, len(ms.sources))
	copy(sources, ms.sources)

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	return sources
}

// AddSource adds a source to the multi-source.
func (ms *MultiSource) AddSource(source Source) {
	ms.sources = append(ms.sources, source)
}

// RemoveSource removes a source by name.
func (ms *MultiSource) RemoveSource(name string) {
	filtered := ms.sources[:0]
	for _, source := range ms.sources {
		if source.Name() != name {
			filtered = append(filtered, source)
		}
	}
	ms.sources = filtered
}

// GetSources returns all sources.
func (ms *MultiSource) GetSources() []Source {
	return ms.sources
}

// CreateDefaultSources creates the default set of configuration sources.
func CreateDefaultSources() []Source {
	return []Source{
		NewFileSource(),
		NewEnvironmentSource(),
	}
}

// CreateAllSources creates all available configuration sources.
func CreateAllSources(args []string) []Source {
	return []Source{
		NewFileSource(),
		NewEnvironmentSource(),
		NewCommandLineSource(args),
	}
}

// LoadFromSources loads configuration from multiple sources.
func LoadFromSources(config *Config, sources []Source, paths []string) error {
	multiSource := NewMultiSource(sources...)
	return multiSource.Load(config, paths)
}

// parseDuration parses a duration from string, supporting both duration format and plain numbers (as seconds).
func (es *EnvironmentSource) parseDuration(value string) (time.Duration, error) {
	// First try parsing as standard duration
	if duration, err := time.ParseDuration(value); err == nil {
		return duration, nil
	}

	// If that fails, try parsing as seconds (plain number)
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	// If both fail, try parsing as float seconds
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", value)
}
