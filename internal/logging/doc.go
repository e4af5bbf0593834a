// Package logging provides slog construction with console and JSON handlers,
// standardized attribute keys, context-derived fields, and log retention.
package logging
