package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text handler. debug enables per-request
// logging from the resty middleware, which is very noisy against a
// production origin.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
