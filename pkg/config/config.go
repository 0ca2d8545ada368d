package config

import (
	"time"
)

// Config represents the complete configuration for the lexgo engine.
type Config struct {
	// Generative backend configuration
	LLM LLMConfig `yaml:"llm" validate:"required"`

	// Authoritative reference provider configuration
	Reference ReferenceConfig `yaml:"reference,omitempty" validate:"omitempty"`

	// Section task configuration (budgets, fan-out, aggregate ceiling)
	Tasks TasksConfig `yaml:"tasks,omitempty" validate:"omitempty"`

	// Engine behavior switches
	Engine EngineConfig `yaml:"engine,omitempty" validate:"omitempty"`

	// Response cache configuration
	Cache CacheConfig `yaml:"cache,omitempty" validate:"omitempty"`

	// Auxiliary media search configuration
	Media MediaConfig `yaml:"media,omitempty" validate:"omitempty"`

	// Frequency corpus configuration
	Corpus CorpusConfig `yaml:"corpus,omitempty" validate:"omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`
}

// LLMConfig holds configuration for the generative backend.
type LLMConfig struct {
	// Provider name (deepseek, openai, anthropic)
	Provider string `yaml:"provider" validate:"required,oneof=deepseek openai anthropic"`

	// Model ID (e.g., deepseek-chat)
	ModelID string `yaml:"model_id" validate:"required"`

	// API key for the provider
	APIKey string `yaml:"api_key,omitempty"`

	// Base URL override; empty uses the provider default
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`

	// API path override (if different from default)
	Path string `yaml:"path,omitempty"`

	// Request timeout for a single generative call
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"min=0"`

	// Generation parameters
	Generation GenerationConfig `yaml:"generation,omitempty"`

	// Outbound rate limit
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// GenerationConfig holds text generation parameters.
type GenerationConfig struct {
	// Sampling temperature
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`

	// Top-p sampling
	TopP float64 `yaml:"top_p" validate:"min=0,max=1"`
}

// RateLimitConfig bounds outbound request rates to one upstream.
type RateLimitConfig struct {
	// Sustained requests per second; 0 disables limiting
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`

	// Burst allowance
	Burst int `yaml:"burst" validate:"min=0"`
}

// ReferenceConfig holds configuration for the authoritative provider client.
type ReferenceConfig struct {
	// Base URL of the dictionary API
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// Per-fetch timeout; the provider is tried once per request, so this
	// stays in the sub-second class
	Timeout time.Duration `yaml:"timeout" validate:"min=0,max_duration=1s"`

	// Outbound rate limit
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// TasksConfig holds configuration for the parallel task layer.
type TasksConfig struct {
	// Token and time budgets per complexity class
	Budgets BudgetsConfig `yaml:"budgets,omitempty"`

	// Ceiling on the whole fan-out; breach cancels unfinished tasks
	AggregateTimeout time.Duration `yaml:"aggregate_timeout" validate:"min=0"`

	// Maximum concurrently running tasks
	MaxParallel int `yaml:"max_parallel" validate:"min=1"`
}

// BudgetsConfig groups the per-class task budgets.
type BudgetsConfig struct {
	Simple    BudgetConfig `yaml:"simple"`
	Medium    BudgetConfig `yaml:"medium"`
	Complex   BudgetConfig `yaml:"complex"`
	Discovery BudgetConfig `yaml:"discovery"`
}

// BudgetConfig is one task budget: generation size and wall time. Tasks are
// never retried, so the budget is also the total spend ceiling.
type BudgetConfig struct {
	MaxTokens int           `yaml:"max_tokens" validate:"min=1"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=0"`
}

// EngineConfig holds engine behavior switches.
type EngineConfig struct {
	// What to do when some tasks fail: "merge" keeps completed fragments
	// with missing-field accounting, "discard" drops the partial payload
	PartialPolicy string `yaml:"partial_policy" validate:"omitempty,oneof=merge discard"`

	// When true, responses served without any authoritative data are
	// marked unsuccessful
	RequireAuthoritative bool `yaml:"require_authoritative"`

	// Fixed overhead added to the slowest task latency when reporting
	// execution time
	MergeOverhead time.Duration `yaml:"merge_overhead" validate:"min=0"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	// Whether responses are cached at all
	Enabled bool `yaml:"enabled"`

	// Backing store: "memory" or "sqlite"
	Type string `yaml:"type" validate:"omitempty,oneof=memory sqlite"`

	// Database file for the sqlite store; ignored by the memory store
	Path string `yaml:"path,omitempty"`

	// Entry lifetime; 0 keeps entries until eviction
	TTL time.Duration `yaml:"ttl" validate:"min=0"`

	// Maximum resident entries; oldest are evicted past this
	MaxEntries int `yaml:"max_entries" validate:"min=0"`
}

// MediaConfig holds auxiliary content search configuration.
type MediaConfig struct {
	// Search endpoint base URL; empty disables the HTTP searcher
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Per-search timeout
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`

	// Maximum candidates per response
	Limit int `yaml:"limit" validate:"min=0"`

	// MCP-backed searcher; takes precedence over the HTTP searcher when set
	MCP MCPConfig `yaml:"mcp,omitempty"`
}

// MCPConfig describes an MCP server exposing a media search tool.
type MCPConfig struct {
	// Command starting the server over stdio
	Command string `yaml:"command,omitempty"`

	// Arguments for the command
	Args []string `yaml:"args,omitempty"`

	// Name of the search tool to call
	Tool string `yaml:"tool,omitempty"`
}

// CorpusConfig holds frequency corpus configuration.
type CorpusConfig struct {
	// SQLite database path; empty disables corpus seeding
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Log level (DEBUG, INFO, WARN, ERROR, FATAL)
	Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Sampling rate for high-frequency events
	SampleRate uint32 `yaml:"sample_rate"`

	// Decision log file path (JSON lines); empty logs to console only
	DecisionLog string `yaml:"decision_log,omitempty"`

	// Default fields to include in all logs
	DefaultFields map[string]interface{} `yaml:"default_fields,omitempty"`
}

// Validate validates this configuration using the package validator.
func (c *Config) Validate() error {
	validator, err := NewValidator()
	if err != nil {
		return err
	}
	return validator.ValidateConfig(c)
}
