package logging

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKeyType struct{}
type tokenInfoKeyType struct{}

var (
	requestIDKey = requestIDKeyType{}
	tokenInfoKey = tokenInfoKeyType{}
)

// WithRequestID attaches a request identifier to the context, generating a
// fresh one when the context does not carry one yet. Every log record written
// under the returned context includes the identifier.
func WithRequestID(ctx context.Context) context.Context {
	if _, ok := GetRequestID(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, uuid.NewString())
}

// GetRequestID retrieves the request identifier from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// WithTokenInfo attaches generative token usage to the context so records
// written during a backend call carry the usage alongside the message.
func WithTokenInfo(ctx context.Context, info *TokenInfo) context.Context {
	return context.WithValue(ctx, tokenInfoKey, info)
}

// GetTokenInfo retrieves token usage from the context.
func GetTokenInfo(ctx context.Context) (*TokenInfo, bool) {
	info, ok := ctx.Value(tokenInfoKey).(*TokenInfo)
	return info, ok
}
