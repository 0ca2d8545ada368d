package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
	"github.com/XiaoConstantine/lexgo/pkg/llms/openai"
)

// OpenAILLM implements core.LLM against any OpenAI-compatible chat
// completions endpoint. DeepSeek, the default generative backend, speaks the
// same protocol; only the base URL and provider name differ.
type OpenAILLM struct {
	provider string
	modelID  string
	baseURL  string
	path     string
	headers  map[string]string
	client   *http.Client
}

// OpenAIOption is a functional option for configuring the client.
type OpenAIOption func(*OpenAILLM)

// WithAPIKey sets the bearer token.
func WithAPIKey(apiKey string) OpenAIOption {
	return func(o *OpenAILLM) {
		if apiKey != "" {
			o.headers["Authorization"] = "Bearer " + apiKey
		}
	}
}

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(o *OpenAILLM) { o.baseURL = baseURL }
}

// WithPath sets the endpoint path.
func WithPath(path string) OpenAIOption {
	return func(o *OpenAILLM) { o.path = path }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) OpenAIOption {
	return func(o *OpenAILLM) { o.client.Timeout = timeout }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAILLM) { o.client = client }
}

// WithHeader sets a custom header.
func WithHeader(key, value string) OpenAIOption {
	return func(o *OpenAILLM) { o.headers[key] = value }
}

// WithProviderName overrides the provider name reported by the client. Used
// by compatible providers sharing this implementation.
func WithProviderName(name string) OpenAIOption {
	return func(o *OpenAILLM) { o.provider = name }
}

// NewOpenAILLM creates a client for the official OpenAI API or any
// compatible endpoint selected via WithBaseURL.
func NewOpenAILLM(modelID string, opts ...OpenAIOption) (*OpenAILLM, error) {
	o := &OpenAILLM{
		provider: "openai",
		modelID:  modelID,
		baseURL:  "https://api.openai.com",
		path:     "/v1/chat/completions",
		headers:  map[string]string{"Content-Type": "application/json"},
		client:   &http.Client{Timeout: 45 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.headers["Authorization"] == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			o.headers["Authorization"] = "Bearer " + key
		}
	}
	// The official endpoint rejects unauthenticated requests outright;
	// compatible local endpoints may not need a key.
	if o.headers["Authorization"] == "" && o.baseURL == "https://api.openai.com" {
		return nil, errors.WithFields(
			errors.New(errors.ConfigurationError, "OpenAI API key is required for api.openai.com"),
			errors.Fields{"env_var": "OPENAI_API_KEY"})
	}

	if o.modelID == "" {
		return nil, errors.New(errors.ConfigurationError, "model ID is required")
	}
	return o, nil
}

// NewDeepSeekLLM creates a client for DeepSeek's OpenAI-compatible API.
func NewDeepSeekLLM(modelID string, opts ...OpenAIOption) (*OpenAILLM, error) {
	base := []OpenAIOption{
		WithBaseURL("https://api.deepseek.com"),
		WithProviderName("deepseek"),
	}
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		base = append(base, WithAPIKey(key))
	}
	return NewOpenAILLM(modelID, append(base, opts...)...)
}

// ProviderName implements core.LLM.
func (o *OpenAILLM) ProviderName() string {
	return o.provider
}

// ModelID implements core.LLM.
func (o *OpenAILLM) ModelID() string {
	return o.modelID
}

// Generate implements core.LLM.
func (o *OpenAILLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	response, err := o.makeRequest(ctx, o.buildRequest(prompt, nil, options))
	if err != nil {
		return nil, err
	}

	if len(response.Choices) == 0 {
		return nil, errors.New(errors.InvalidResponse, "no choices returned from API")
	}

	result := &core.LLMResponse{
		Content: response.Choices[0].Message.Content,
		Usage: &core.TokenInfo{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		},
		Metadata: map[string]interface{}{
			"finish_reason": response.Choices[0].FinishReason,
			"id":            response.ID,
			"model":         response.Model,
		},
	}
	logUsage(ctx, prompt, result.Content, result.Usage)
	return result, nil
}

// GenerateWithJSON implements core.LLM. The request asks for JSON mode so the
// completion arrives as a single object.
func (o *OpenAILLM) GenerateWithJSON(ctx context.Context, prompt string, options ...core.GenerateOption) (map[string]interface{}, error) {
	format := &openai.ResponseFormat{Type: "json_object"}
	response, err := o.makeRequest(ctx, o.buildRequest(prompt, format, options))
	if err != nil {
		return nil, err
	}

	if len(response.Choices) == 0 {
		return nil, errors.New(errors.InvalidResponse, "no choices returned from API")
	}

	content := response.Choices[0].Message.Content
	logUsage(ctx, prompt, content, &core.TokenInfo{
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
		TotalTokens:      response.Usage.TotalTokens,
	})
	return parseJSONResponse(content)
}

func (o *OpenAILLM) buildRequest(prompt string, format *openai.ResponseFormat, options []core.GenerateOption) *openai.ChatCompletionRequest {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	request := &openai.ChatCompletionRequest{
		Model: o.modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:      &opts.MaxTokens,
		Temperature:    &opts.Temperature,
		ResponseFormat: format,
	}
	if opts.TopP > 0 {
		request.TopP = &opts.TopP
	}
	if len(opts.Stop) > 0 {
		request.Stop = opts.Stop
	}
	return request
}

func (o *OpenAILLM) makeRequest(ctx context.Context, request *openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+o.path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to create request")
	}
	for key, value := range o.headers {
		req.Header.Set(key, value)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		if ctxErr := errors.CheckContext(ctx, "generate"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(err, errors.LLMGenerationFailed, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.LLMGenerationFailed, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp openai.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error.Message == "" {
			return nil, errors.WithFields(
				errors.New(errors.LLMGenerationFailed, "API request failed"),
				errors.Fields{"status": resp.StatusCode, "body": string(body)})
		}
		return nil, errors.WithFields(
			errors.New(errors.LLMGenerationFailed, errorResp.Error.Message),
			errors.Fields{"type": errorResp.Error.Type, "code": errorResp.Error.Code})
	}

	var response openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to parse response")
	}
	return &response, nil
}
