package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes preset events to an slog.Logger.
// Successful events are logged at Debug, skipped attributes at Warn and
// failed operations at Error.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
// A nil logger selects slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("op", event.Operation.String()),
		slog.String("outcome", event.Outcome.String()),
	}

	if event.Type != "" {
		attrs = append(attrs, slog.String("type", event.Type))
	}
	if event.Attribute != "" {
		attrs = append(attrs, slog.String("attribute", event.Attribute))
	}
	if event.ScopeID != "" {
		attrs = append(attrs, slog.String("scope", event.ScopeID))
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}

	level := slog.LevelDebug
	switch event.Outcome {
	case OutcomeSkipped:
		level = slog.LevelWarn
	case OutcomeFailed:
		level = slog.LevelError
	}

	a.logger.LogAttrs(context.Background(), level, "preset", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
