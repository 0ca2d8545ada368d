package config

import (
	"time"
)

// GetDefaultConfig returns the default configuration for lexgo.
func GetDefaultConfig() *Config {
	return &Config{
		LLM:       getDefaultLLMConfig(),
		Reference: getDefaultReferenceConfig(),
		Tasks:     getDefaultTasksConfig(),
		Engine:    getDefaultEngineConfig(),
		Cache:     getDefaultCacheConfig(),
		Media:     getDefaultMediaConfig(),
		Corpus:    CorpusConfig{},
		Logging:   getDefaultLoggingConfig(),
	}
}

// getDefaultLLMConfig returns default generative backend configuration.
func getDefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "deepseek",
		ModelID:  "deepseek-chat",
		APIKey:   "", // Should be provided via environment or config file
		BaseURL:  "https://api.deepseek.com",
		Timeout:  45 * time.Second,
		Generation: GenerationConfig{
			Temperature: 0.3,
			TopP:        0.9,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 4,
			Burst:             8,
		},
	}
}

// getDefaultReferenceConfig returns default reference provider configuration.
// The fetch is tried once per request with no retry, so the timeout stays in
// the sub-second class.
func getDefaultReferenceConfig() ReferenceConfig {
	return ReferenceConfig{
		BaseURL: "https://api.dictionaryapi.dev",
		Timeout: 800 * time.Millisecond,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
		},
	}
}

// getDefaultTasksConfig returns default task budgets and fan-out bounds.
func getDefaultTasksConfig() TasksConfig {
	return TasksConfig{
		Budgets: BudgetsConfig{
			Simple:    BudgetConfig{MaxTokens: 256, Timeout: 15 * time.Second},
			Medium:    BudgetConfig{MaxTokens: 512, Timeout: 30 * time.Second},
			Complex:   BudgetConfig{MaxTokens: 600, Timeout: 30 * time.Second},
			Discovery: BudgetConfig{MaxTokens: 1024, Timeout: 45 * time.Second},
		},
		AggregateTimeout: 60 * time.Second,
		MaxParallel:      4,
	}
}

// getDefaultEngineConfig returns default engine switches.
func getDefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PartialPolicy:        "merge",
		RequireAuthoritative: false,
		MergeOverhead:        50 * time.Millisecond,
	}
}

// getDefaultCacheConfig returns default cache configuration.
func getDefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:    true,
		Type:       "memory",
		TTL:        time.Hour,
		MaxEntries: 4096,
	}
}

// getDefaultMediaConfig returns default media search configuration.
func getDefaultMediaConfig() MediaConfig {
	return MediaConfig{
		BaseURL: "",
		Timeout: 10 * time.Second,
		Limit:   3,
	}
}

// getDefaultLoggingConfig returns default logging configuration.
func getDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "INFO",
		SampleRate: 0,
	}
}
