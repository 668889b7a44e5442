// Package log provides structured logging for the seed daemon and CLI.
//
// Secret material (entropy, mnemonics, passphrases, seeds) must never be
// passed to a logger. Wallets are identified by name and fingerprint.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers.
var (
	Keystore zerolog.Logger
	RPC      zerolog.Logger
	Storage  zerolog.Logger
	CLI      zerolog.Logger
)

const consoleTimeFormat = "15:04:05"

func init() {
	Logger = NewConsoleLogger(os.Stderr, "info")
	initComponentLoggers()
}

// Init configures the global logger. Console output goes to stderr, colored
// unless jsonOutput is set. When file is non-empty every record is also
// appended to it as JSON. The returned closer releases the file and is
// never nil.
func Init(level string, jsonOutput bool, file string) (io.Closer, error) {
	var console io.Writer = os.Stderr
	if !jsonOutput {
		console = newConsoleWriter(os.Stderr)
	}

	var closer io.Closer = nopCloser{}
	out := console
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, err
		}
		out = zerolog.MultiLevelWriter(console, f)
		closer = f
	}

	Logger = newLogger(out, level)
	initComponentLoggers()
	return closer, nil
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(newConsoleWriter(w), level)
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(w, level)
}

// Discard silences all logging. Used by tests and the quiet CLI mode.
func Discard() {
	Logger = zerolog.Nop()
	initComponentLoggers()
}

func newConsoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: consoleTimeFormat,
	}
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog level. Unknown names map to
// info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func initComponentLoggers() {
	Keystore = WithComponent("keystore")
	RPC = WithComponent("rpc")
	Storage = WithComponent("storage")
	CLI = WithComponent("cli")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// WithWallet returns a keystore logger tagged with a wallet name.
func WithWallet(name string) zerolog.Logger {
	return Keystore.With().Str("wallet", name).Logger()
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info logs an info message.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error logs an error message.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal logs a fatal message and exits.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Benchmark times an operation and logs its duration at debug level when
// the returned func is called.
func Benchmark(name string) func() {
	start := time.Now()
	return func() {
		Logger.Debug().
			Str("operation", name).
			Dur("duration", time.Since(start)).
			Msg("benchmark")
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
