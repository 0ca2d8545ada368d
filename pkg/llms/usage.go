package llms

import (
	"context"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/logging"
)

// logUsage records the exchange and its token consumption at DEBUG severity
// so per-task budget spend shows up next to the prompt that incurred it.
func logUsage(ctx context.Context, prompt, completion string, usage *core.TokenInfo) {
	var info *logging.TokenInfo
	if usage != nil {
		info = &logging.TokenInfo{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
	}
	logging.GetLogger().PromptCompletion(ctx, prompt, completion, info)
}
