// Package services defines shared utilities consumed by the digest phases and
// their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, phase names, and the URL
//     currently being processed for logging.
//   - Structured error markers plus the Wrap helper. Callers classify failures
//     with errors.Is: ErrDeterministic never benefits from a retry while
//     ErrTransient may succeed on a later attempt.
//
// Use these helpers when wiring new phase logic so error classification and
// log context stay uniform across the pipeline.
package services
