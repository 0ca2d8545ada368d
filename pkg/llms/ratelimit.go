package llms

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// rateLimitedLLM wraps a core.LLM with a shared token-bucket limiter so
// parallel section tasks cannot exceed the provider's request budget. All
// tasks of one engine share the same limiter.
type rateLimitedLLM struct {
	inner   core.LLM
	limiter *rate.Limiter
}

// NewRateLimited bounds outbound calls to rps requests per second with the
// given burst. A non-positive rps returns the LLM unwrapped.
func NewRateLimited(inner core.LLM, rps float64, burst int) core.LLM {
	if rps <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedLLM{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *rateLimitedLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, errors.RateLimitExceeded, "rate limiter wait failed")
	}
	return r.inner.Generate(ctx, prompt, options...)
}

func (r *rateLimitedLLM) GenerateWithJSON(ctx context.Context, prompt string, options ...core.GenerateOption) (map[string]interface{}, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, errors.RateLimitExceeded, "rate limiter wait failed")
	}
	return r.inner.GenerateWithJSON(ctx, prompt, options...)
}

func (r *rateLimitedLLM) ProviderName() string {
	return r.inner.ProviderName()
}

func (r *rateLimitedLLM) ModelID() string {
	return r.inner.ModelID()
}
