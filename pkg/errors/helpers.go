package errors

import (
	"context"
	stderrors "errors"
)

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return Wrap(err, Timeout, operation+" timed out")
		}
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}

// CodeOf extracts the error code from any error in the chain. Errors that
// never passed through this package report Unknown; context errors map to
// Timeout and Canceled so callers can classify deadline breaches uniformly.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Unknown
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code()
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	if stderrors.Is(err, context.Canceled) {
		return Canceled
	}
	return Unknown
}
