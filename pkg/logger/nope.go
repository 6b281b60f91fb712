package logger

import "log/slog"

// NewNope returns a logger that discards everything.
// Packages use it when no logger is supplied.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component scopes l to a subsystem by adding the "component" attribute.
// A nil l yields a no-op logger.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = NewNope()
	}
	return l.With(slog.String("component", name))
}
