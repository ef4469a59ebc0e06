// Package logging assembles the structured slog loggers used across the
// digest pipeline.
//
// It owns the console and JSON handlers, picks a format from the terminal when
// none is configured, and exposes context-aware helpers so phase code tags log
// lines with the run id, phase, and source URL automatically. Runs tee their
// records into a JSON log file inside the workspace through RunLogger. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
