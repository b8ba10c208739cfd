package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// NewConsole returns a text logger for operator-facing messages. Callers pass
// stderr so stdout stays free for the nature summary.
func NewConsole(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RunLogLevel is the run log level for a given console level. It never goes
// above Info, so per-line parse decisions always reach the file.
func RunLogLevel(console slog.Level) slog.Level {
	return min(console, slog.LevelInfo)
}

// RunLog is the diagnostic sink for a single parse run. The file is truncated
// when opened, so it only ever holds the decisions of the current run.
type RunLog struct {
	*slog.Logger
	f *os.File
}

// OpenRunLog truncates (or creates) path and returns a logger writing one
// timestamped line per record.
func OpenRunLog(path string, level slog.Level) (*RunLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return &RunLog{Logger: slog.New(handler), f: f}, nil
}

// Path returns the file backing the run log.
func (r *RunLog) Path() string {
	return r.f.Name()
}

func (r *RunLog) Close() error {
	if err := r.f.Sync(); err != nil {
		_ = r.f.Close()
		return err
	}
	return r.f.Close()
}
