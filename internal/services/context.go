package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	phaseKey   contextKey = "phase"
	itemURLKey contextKey = "item_url"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPhase annotates context with the pipeline phase name.
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the phase name if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(phaseKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithItemURL annotates context with the source URL being processed.
func WithItemURL(ctx context.Context, url string) context.Context {
	if url == "" {
		return ctx
	}
	return context.WithValue(ctx, itemURLKey, url)
}

// ItemURLFromContext returns the source URL if present.
func ItemURLFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemURLKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
