// Package logging builds the slog loggers used across tabibot.
//
// Console output uses a compact single-line format
// (`ts LEVEL component: msg k=v`), JSON output uses `ts`, `level` and `msg`
// keys. When a log directory is configured every record is also appended to
// tabibot.log as JSON. Components tag their lines with
// logger.With("component", "...").
package logging
