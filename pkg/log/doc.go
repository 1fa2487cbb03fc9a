// Package log provides structured event logging for preset operations.
//
// This package defines the Logger interface and Event type for capturing
// what captures, applies and transfers did to each attribute. It is separate
// from operational logging (slog): the event trace is a complete
// machine-readable record for debugging why a preset did not reproduce a
// value.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	opts = append(opts, preset.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For tooling: write to a binary trace file
//	trace, _ := log.NewFileLogger("presets.plog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), trace)
//
// # Event Types
//
// Each Event names an Operation (transfer, capture, apply, update, release,
// load, save) and its Outcome. Attribute-level events carry the attribute
// name; a skipped attribute always carries the error that caused the skip.
//
// # File Format
//
// Trace files use CBOR encoding with the .plog extension. The presetctl
// events command prints and filters them.
package log
