package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field: "TestField",
		Tag:   "required",
		Value: nil,
	}

	assert.Contains(t, err.Error(), "TestField")
	assert.Contains(t, err.Error(), "required")

	// Test with custom message
	err.Message = "Custom validation message"
	assert.Equal(t, "Custom validation message", err.Error())
}

func TestValidationErrors(t *testing.T) {
	errors := ValidationErrors{
		{Field: "Field1", Tag: "required", Value: nil},
		{Field: "Field2", Tag: "min", Value: 0},
	}

	errStr := errors.Error()
	assert.Contains(t, errStr, "validation failed")
	assert.Contains(t, errStr, "Field1")
	assert.Contains(t, errStr, "Field2")
}

func TestNewValidator(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)
	require.NotNil(t, validator)

	// Test that custom validators are registered
	config := GetDefaultConfig()
	err = validator.ValidateConfig(config)
	assert.NoError(t, err)
}

func TestValidateConfigNil(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	err = validator.ValidateConfig(nil)
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, "config", verrs[0].Field)
}

func TestValidateReferenceTimeoutCeiling(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	config := GetDefaultConfig()
	config.Reference.Timeout = 1500 * time.Millisecond

	err = validator.ValidateConfig(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 1s")
}

func TestValidateBudgetAgainstAggregate(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	config := GetDefaultConfig()
	config.Tasks.AggregateTimeout = 20 * time.Second
	// Discovery default (45s) now exceeds the aggregate

	err = validator.ValidateConfig(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds aggregate timeout")
}

func TestValidateRateLimitBurst(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name: "llm limiter without burst",
			mutate: func(c *Config) {
				c.LLM.RateLimit = RateLimitConfig{RequestsPerSecond: 2, Burst: 0}
			},
			expectError: true,
		},
		{
			name: "reference limiter without burst",
			mutate: func(c *Config) {
				c.Reference.RateLimit = RateLimitConfig{RequestsPerSecond: 1, Burst: 0}
			},
			expectError: true,
		},
		{
			name: "limiter disabled entirely",
			mutate: func(c *Config) {
				c.LLM.RateLimit = RateLimitConfig{}
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)

			err := validator.ValidateConfig(config)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAnthropicPathOverride(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	config := GetDefaultConfig()
	config.LLM.Provider = "anthropic"
	config.LLM.ModelID = "claude-3-5-sonnet-latest"
	config.LLM.BaseURL = ""
	config.LLM.Path = "/v1/chat/completions"

	err = validator.ValidateConfig(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path override")
}

func TestValidateCacheTTLWhenEnabled(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	config := GetDefaultConfig()
	config.Cache.Enabled = true
	config.Cache.TTL = 0

	err = validator.ValidateConfig(config)
	require.Error(t, err)

	// Disabled cache does not care about TTL
	config.Cache.Enabled = false
	err = validator.ValidateConfig(config)
	assert.NoError(t, err)
}

func TestGlobalValidator(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	assert.Same(t, v1, v2)

	config := GetDefaultConfig()
	assert.NoError(t, ValidateConfiguration(config))
}
