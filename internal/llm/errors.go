package llm

import (
	"errors"
)

var (
	// ErrNotConfigured means no model credential is available.
	ErrNotConfigured = errors.New("llm not configured")
	// ErrRequestFailed covers transport errors, non-2xx responses and timeouts.
	ErrRequestFailed = errors.New("llm request failed")
	// ErrMalformedOutput means no JSON payload could be recovered from the response.
	ErrMalformedOutput = errors.New("llm returned malformed output")
	// ErrSchemaMismatch means the payload parsed but failed schema validation.
	ErrSchemaMismatch = errors.New("llm output does not match schema")
)

// ErrorKind returns the log label for err.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	default:
		return "unknown"
	}
}
