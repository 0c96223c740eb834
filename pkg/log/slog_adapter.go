package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger.
// Useful for development when you want to see decoder activity in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
// Scans and discards are logged at Info level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	level := slog.LevelDebug

	// Add type-specific attributes
	switch {
	case event.Key != nil:
		attrs = append(attrs,
			slog.String("key", event.Key.Key),
			slog.String("code", event.Key.Code),
			slog.String("action", event.Key.Action.String()),
			slog.Int("buffer_len", event.Key.BufferLen),
		)
	case event.Scan != nil:
		level = slog.LevelInfo
		attrs = append(attrs,
			slog.String("value", event.Scan.Value),
			slog.Int("length", event.Scan.Length),
			slog.Bool("delivered", event.Scan.Delivered),
		)
	case event.Discard != nil:
		level = slog.LevelInfo
		attrs = append(attrs,
			slog.String("value", event.Discard.Value),
			slog.String("reason", event.Discard.Reason.String()),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "capture", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
