// Package logging assembles the structured slog loggers used across Platter.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes standardized field keys so catalog code tags log
// lines with item, zone, and rebin-run identifiers the same way everywhere.
// A no-op logger is available for tests and wiring code that cannot fail.
package logging
