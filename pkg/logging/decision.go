package logging

import (
	"context"
	"path/filepath"
	"runtime"
	"time"
)

// DecisionEvent is the per-request record of how a lookup was served: which
// source produced the response, how long the request took end to end, and
// how it concluded. Exactly one event is emitted per resolve call.
type DecisionEvent struct {
	Word        string
	Section     string
	DataSource  string
	Latency     time.Duration
	Outcome     string
	CacheHit    bool
	TasksRun    int
	TasksFailed int
}

// Outcome values beyond error code names.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
)

// Decision emits a structured decision record. Failures log at WARN so they
// surface under default severity; the event never alters control flow.
func (l *Logger) Decision(ctx context.Context, ev DecisionEvent) {
	severity := INFO
	if ev.Outcome != OutcomeSuccess {
		severity = WARN
	}
	if severity < l.severity {
		return
	}

	pc, file, line, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()

	entry := LogEntry{
		Time:     time.Now().UnixNano(),
		Severity: severity,
		Message:  "lookup decision",
		File:     filepath.Base(file),
		Line:     line,
		Function: filepath.Base(fn),
		Latency:  ev.Latency.Milliseconds(),
		Fields: map[string]interface{}{
			"word":         ev.Word,
			"section":      ev.Section,
			"data_source":  ev.DataSource,
			"latency_ms":   ev.Latency.Milliseconds(),
			"outcome":      ev.Outcome,
			"cache_hit":    ev.CacheHit,
			"tasks_run":    ev.TasksRun,
			"tasks_failed": ev.TasksFailed,
		},
	}

	if ctx != nil {
		if requestID, ok := GetRequestID(ctx); ok {
			entry.RequestID = requestID
		}
	}

	for k, v := range l.fields {
		if _, exists := entry.Fields[k]; !exists {
			entry.Fields[k] = v
		}
	}

	l.write(entry)
}
