package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrDeterministic = errors.New("deterministic failure")
)

// Wrap builds an error message that includes phase context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsDeterministic reports whether err is a failure that repeats identically on
// every attempt (feature disabled, malformed input, missing credentials).
func IsDeterministic(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDeterministic) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether another attempt could succeed. Context
// cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !IsDeterministic(err)
}

// Hint returns a short operator-facing remediation hint for err.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "check config.toml and the sources file"
	case errors.Is(err, ErrValidation):
		return "inspect the input artifact named in the error"
	case errors.Is(err, ErrNotFound):
		return "an earlier phase artifact is missing; delete its checkpoint to redo it"
	case errors.Is(err, ErrTimeout):
		return "the integration timed out; rerun to resume"
	case errors.Is(err, ErrExternalTool):
		return "check the external service or browser installation"
	default:
		return "rerun to resume from the first incomplete phase"
	}
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
