package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLoadDefaultsOnly(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lexgo.yaml")

	manager, err := NewManager(
		WithConfigPath(configPath),
		WithSources(NewFileSource()),
	)
	require.NoError(t, err)

	// Missing file falls back to defaults
	err = manager.Load()
	require.NoError(t, err)

	config := manager.Get()
	require.NotNil(t, config)
	assert.Equal(t, "deepseek", config.LLM.Provider)
	assert.Equal(t, 800*time.Millisecond, config.Reference.Timeout)
}

func TestManagerConfigSectionGetters(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lexgo.yaml")

	manager, err := NewManager(
		WithConfigPath(configPath),
		WithSources(NewFileSource()),
	)
	require.NoError(t, err)

	err = manager.Load()
	require.NoError(t, err)

	llmConfig := manager.GetLLMConfig()
	require.NotNil(t, llmConfig)
	assert.Equal(t, "deepseek-chat", llmConfig.ModelID)

	referenceConfig := manager.GetReferenceConfig()
	require.NotNil(t, referenceConfig)
	assert.Equal(t, "https://api.dictionaryapi.dev", referenceConfig.BaseURL)

	tasksConfig := manager.GetTasksConfig()
	require.NotNil(t, tasksConfig)
	assert.Equal(t, 4, tasksConfig.MaxParallel)

	engineConfig := manager.GetEngineConfig()
	require.NotNil(t, engineConfig)
	assert.Equal(t, "merge", engineConfig.PartialPolicy)

	cacheConfig := manager.GetCacheConfig()
	require.NotNil(t, cacheConfig)
	assert.Equal(t, time.Hour, cacheConfig.TTL)

	loggingConfig := manager.GetLoggingConfig()
	require.NotNil(t, loggingConfig)
	assert.Equal(t, "INFO", loggingConfig.Level)
}

func TestManagerConfigSectionGettersWithNilConfig(t *testing.T) {
	manager := &Manager{}

	assert.Nil(t, manager.GetLLMConfig())
	assert.Nil(t, manager.GetReferenceConfig())
	assert.Nil(t, manager.GetTasksConfig())
	assert.Nil(t, manager.GetEngineConfig())
	assert.Nil(t, manager.GetCacheConfig())
	assert.Nil(t, manager.GetLoggingConfig())
}

func TestManagerLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lexgo.yaml")

	content := `
llm:
  provider: "openai"
  model_id: "gpt-4o-mini"
  generation:
    temperature: 0.5
engine:
  partial_policy: "discard"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	manager, err := NewManager(
		WithConfigPath(configPath),
		WithSources(NewFileSource()),
	)
	require.NoError(t, err)

	err = manager.Load()
	require.NoError(t, err)

	config := manager.Get()
	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, 0.5, config.LLM.Generation.Temperature)
	assert.Equal(t, "discard", config.Engine.PartialPolicy)

	// Untouched sections keep defaults
	assert.Equal(t, 60*time.Second, config.Tasks.AggregateTimeout)
}

func TestManagerLoadRejectsInvalidConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lexgo.yaml")

	content := `
reference:
  timeout: 5s
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	manager, err := NewManager(
		WithConfigPath(configPath),
		WithSources(NewFileSource()),
	)
	require.NoError(t, err)

	err = manager.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestManagerReload(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lexgo.yaml")

	initialConfig := `
llm:
  provider: "deepseek"
  model_id: "deepseek-chat"
  generation:
    temperature: 0.5
`
	require.NoError(t, os.WriteFile(configPath, []byte(initialConfig), 0644))

	manager, err := NewManager(
		WithConfigPath(configPath),
		WithSources(NewFileSource()),
	)
	require.NoError(t, err)

	err = manager.Load()
	require.NoError(t, err)
	assert.Equal(t, 0.5, manager.Get().LLM.Generation.Temperature)

	updatedConfig := `
llm:
  provider: "deepseek"
  model_id: "deepseek-chat"
  generation:
    temperature: 0.8
`
	require.NoError(t, os.WriteFile(configPath, []byte(updatedConfig), 0644))

	err = manager.Reload()
	require.NoError(t, err)
	assert.Equal(t, 0.8, manager.Get().LLM.Generation.Temperature)
}

func TestManagerReloadWithWatcherFailure(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lexgo.yaml")

	manager, err := NewManager(
		WithConfigPath(configPath),
		WithSources(NewFileSource()),
		WithWatcher(func(config *Config) error {
			return assert.AnError // Simulate watcher failure
		}),
	)
	require.NoError(t, err)

	err = manager.Load()
	require.NoError(t, err)

	originalConfig := manager.Get()

	updatedConfig := `
llm:
  provider: "openai"
  model_id: "gpt-4o-mini"
`
	require.NoError(t, os.WriteFile(configPath, []byte(updatedConfig), 0644))

	// Reload should fail and rollback
	err = manager.Reload()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to notify watchers")

	// Config should be rolled back
	currentConfig := manager.Get()
	assert.Equal(t, originalConfig.LLM.Provider, currentConfig.LLM.Provider)
}

func TestManagerSave(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lexgo.yaml")

	manager, err := NewManager(
		WithConfigPath(configPath),
		WithSources(NewFileSource()),
	)
	require.NoError(t, err)

	err = manager.Load()
	require.NoError(t, err)

	err = manager.Save()
	require.NoError(t, err)
	assert.FileExists(t, configPath)
}

func TestManagerSaveWithoutConfig(t *testing.T) {
	manager := &Manager{}
	assert.Error(t, manager.Save())
}

func TestManagerUpdate(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, manager.Reset())

	err = manager.Update(func(c *Config) error {
		c.Tasks.MaxParallel = 8
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 8, manager.Get().Tasks.MaxParallel)

	// An update producing an invalid config is rejected
	err = manager.Update(func(c *Config) error {
		c.Tasks.MaxParallel = 0
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 8, manager.Get().Tasks.MaxParallel)
}

func TestManagerReset(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	require.NoError(t, manager.Reset())

	config := manager.Get()
	require.NotNil(t, config)
	assert.Equal(t, "deepseek", config.LLM.Provider)
	assert.True(t, manager.IsLoaded())
}

func TestManagerClone(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, manager.Reset())

	clone, err := manager.Clone()
	require.NoError(t, err)

	clone.LLM.Provider = "openai"
	assert.Equal(t, "deepseek", manager.Get().LLM.Provider)
}

func TestManagerCloneWithoutConfig(t *testing.T) {
	manager := &Manager{}
	_, err := manager.Clone()
	assert.Error(t, err)
}

func TestGlobalManager(t *testing.T) {
	m1 := GetGlobalManager()
	m2 := GetGlobalManager()
	assert.Same(t, m1, m2)

	custom, err := NewManager()
	require.NoError(t, err)
	SetGlobalManager(custom)
	assert.Same(t, custom, GetGlobalManager())
}
