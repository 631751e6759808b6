package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text logger. Verbose mode enables debug
// level, which also turns on full request/response dumps in restyutil.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
