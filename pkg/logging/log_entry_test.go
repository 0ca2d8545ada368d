package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	// Test RequestID
	ctxWithID := WithRequestID(ctx)
	requestID, ok := GetRequestID(ctxWithID)
	assert.True(t, ok)
	assert.NotEmpty(t, requestID)

	// Test TokenInfo
	tokenInfo := &TokenInfo{
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
	}
	ctxWithToken := WithTokenInfo(ctx, tokenInfo)
	retrievedTokenInfo, ok := GetTokenInfo(ctxWithToken)
	assert.True(t, ok)
	assert.Equal(t, tokenInfo, retrievedTokenInfo)

	// Test invalid context values
	_, ok = GetRequestID(ctx)
	assert.False(t, ok)
	_, ok = GetTokenInfo(ctx)
	assert.False(t, ok)
}
