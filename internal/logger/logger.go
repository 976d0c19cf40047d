package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"github.com/rs/zerolog"
)

// Level names accepted in configuration.
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

var root = &zlogger{log: zerolog.New(os.Stderr).With().Timestamp().Logger()}

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

type zlogger struct {
	log zerolog.Logger
}

// Init configures the process-wide logger. Reports are written to stdout,
// so log output always goes to stderr.
func Init(level string, isService bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	root = &zlogger{log: zerolog.New(output).With().Timestamp().Logger()}
	zerolog.SetGlobalLevel(lvl)

	return nil
}

// New returns a Logger writing JSON lines to w at the given level. It does
// not touch the global level and is meant for tests and embedding.
func New(w io.Writer, level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	return &zlogger{log: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}, nil
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zlogger{log: zerolog.Nop()}
}

// Default returns the process-wide logger configured by Init.
func Default() Logger {
	return root
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelDebug:
		return zerolog.DebugLevel, nil
	case LevelInfo, "":
		return zerolog.InfoLevel, nil
	case LevelWarning, "warn":
		return zerolog.WarnLevel, nil
	case LevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, level)
	}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

func (l *zlogger) Debug() *LogEvent { return &LogEvent{l.log.Debug()} }
func (l *zlogger) Info() *LogEvent  { return &LogEvent{l.log.Info()} }
func (l *zlogger) Warn() *LogEvent  { return &LogEvent{l.log.Warn()} }
func (l *zlogger) Error() *LogEvent { return &LogEvent{l.log.Error()} }

func (l *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

func (l *zlogger) With(component string) Logger {
	return &zlogger{log: l.log.With().Str("component", component).Logger()}
}

// Debug logs a debug message
func Debug() *LogEvent {
	return root.Debug()
}

// Info logs an info message
func Info() *LogEvent {
	return root.Info()
}

// Warn logs a warning message
func Warn() *LogEvent {
	return root.Warn()
}

// Error logs an error message
func Error() *LogEvent {
	return root.Error()
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return root.ErrorWithCode(err)
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{root.log.Fatal()}
}
