package llms

import (
	"context"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// AnthropicLLM implements core.LLM for Anthropic's models via the official
// SDK's Messages API.
type AnthropicLLM struct {
	client  *anthropic.Client
	modelID string
}

// NewAnthropicLLM creates a new AnthropicLLM instance. An empty apiKey falls
// back to ANTHROPIC_API_KEY; an empty baseURL uses the SDK default.
func NewAnthropicLLM(modelID, apiKey, baseURL string) (*AnthropicLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.WithFields(
			errors.New(errors.ConfigurationError, "Anthropic API key is required"),
			errors.Fields{"env_var": "ANTHROPIC_API_KEY"})
	}
	if modelID == "" {
		return nil, errors.New(errors.ConfigurationError, "model ID is required")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AnthropicLLM{
		client:  &client,
		modelID: modelID,
	}, nil
}

// ProviderName implements core.LLM.
func (a *AnthropicLLM) ProviderName() string {
	return "anthropic"
}

// ModelID implements core.LLM.
func (a *AnthropicLLM) ModelID() string {
	return a.modelID
}

// Generate implements core.LLM.
func (a *AnthropicLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: anthropic.Model(a.modelID),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
	})
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to generate response"),
			errors.Fields{
				"model":      a.modelID,
				"max_tokens": opts.MaxTokens,
			})
	}

	if message == nil || len(message.Content) == 0 {
		return nil, errors.New(errors.InvalidResponse, "received empty content from Anthropic API")
	}

	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	usage := &core.TokenInfo{
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
		TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}

	logUsage(ctx, prompt, responseText, usage)
	return &core.LLMResponse{Content: responseText, Usage: usage}, nil
}

// GenerateWithJSON implements core.LLM. The Messages API has no JSON mode, so
// the completion is parsed after stripping any code fencing.
func (a *AnthropicLLM) GenerateWithJSON(ctx context.Context, prompt string, options ...core.GenerateOption) (map[string]interface{}, error) {
	response, err := a.Generate(ctx, prompt, options...)
	if err != nil {
		return nil, err
	}
	return parseJSONResponse(response.Content)
}
