package llms

import (
	"github.com/XiaoConstantine/lexgo/pkg/config"
	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// New builds the generative backend described by the configuration and wraps
// it with the configured outbound rate limit.
func New(cfg config.LLMConfig) (core.LLM, error) {
	var (
		llm core.LLM
		err error
	)

	switch cfg.Provider {
	case "deepseek":
		opts := []OpenAIOption{}
		if cfg.APIKey != "" {
			opts = append(opts, WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Path != "" {
			opts = append(opts, WithPath(cfg.Path))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		llm, err = NewDeepSeekLLM(cfg.ModelID, opts...)

	case "openai":
		opts := []OpenAIOption{}
		if cfg.APIKey != "" {
			opts = append(opts, WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Path != "" {
			opts = append(opts, WithPath(cfg.Path))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		llm, err = NewOpenAILLM(cfg.ModelID, opts...)

	case "anthropic":
		llm, err = NewAnthropicLLM(cfg.ModelID, cfg.APIKey, cfg.BaseURL)

	default:
		return nil, errors.WithFields(
			errors.New(errors.ProviderNotFound, "unsupported LLM provider"),
			errors.Fields{"provider": cfg.Provider})
	}
	if err != nil {
		return nil, err
	}

	return NewRateLimited(llm, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst), nil
}
