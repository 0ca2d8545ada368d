package logging

// LogEntry represents a structured log record with fields particularly relevant to lookup orchestration
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Lookup-specific fields
	RequestID string     // Correlates every record produced by one resolve call
	TokenInfo *TokenInfo // Token usage of a generative call, when known
	Latency   int64      // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}

// TokenInfo tracks token usage for budget and cost monitoring
type TokenInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
