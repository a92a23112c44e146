package logging

import (
	"io"
	"log/slog"
)

// Logger is the shared logger. It discards everything until Initialize
// enables debug output.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Initialize sets up the logger. With debug off all records are dropped;
// with debug on they go to w as text at debug level.
func Initialize(debug bool, w io.Writer) {
	if !debug || w == nil {
		Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	Logger = slog.New(slog.NewTextHandler(w, opts)).With("app", "vigil")
	Logger.Debug("debug logging initialized")
}
