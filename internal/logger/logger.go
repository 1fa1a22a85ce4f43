// Package logger provides the process-wide structured logger for kioskd.
//
// It wraps log/slog behind a small package-level API so call sites stay
// terse: Info("stack restarted", "services", names). Output format (text
// or json), level, and destination are configured once at startup from
// the loaded configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	mu       sync.RWMutex
	slogger  *slog.Logger
	levelVar = new(slog.LevelVar)
	out      io.Writer = os.Stdout
	useColor bool
)

func init() {
	levelVar.Set(slog.LevelInfo)
	if f, ok := out.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	rebuild("text")
}

// rebuild swaps the underlying slog handler. Callers must hold mu, except
// during package init before any goroutine can log.
func rebuild(format string) {
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: levelVar})
	} else {
		h = newTextHandler(out, levelVar, useColor)
	}
	slogger = slog.New(h)
}

// Init configures the logger from the given config. Output can be
// "stdout", "stderr", or a file path (opened append-only).
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		out = os.Stdout
		useColor = isTerminal(os.Stdout.Fd())
	case "stderr":
		out = os.Stderr
		useColor = isTerminal(os.Stderr.Fd())
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		out = f
		useColor = false
	}

	levelVar.Set(parseLevel(cfg.Level))
	rebuild(strings.ToLower(cfg.Format))
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily for tests.
func InitWithWriter(w io.Writer, level, format string) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	useColor = false
	levelVar.Set(parseLevel(level))
	rebuild(strings.ToLower(format))
}

// SetLevel changes the minimum log level. Unknown levels fall back to INFO.
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	return l
}

// Debug logs at debug level with structured fields.
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level with structured fields.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level with structured fields.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level with structured fields.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a slog.Logger with pre-bound attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}

// Duration returns milliseconds elapsed since start, for log fields.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
