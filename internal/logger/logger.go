package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

var log = zerolog.Nop()

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Options controls where and how verbosely the global logger writes.
type Options struct {
	Level     string
	File      string
	IsService bool
}

// Init initializes the global logger. An empty level means info.
func Init(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if opts.IsService {
		// journald stamps lines itself
		console.TimeFormat = ""
		console.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	var output io.Writer = console
	if opts.File != "" {
		output = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		})
	}

	log = zerolog.New(output).Level(level).With().Timestamp().Logger()

	return nil
}

// ParseLevel converts a configured level name into a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, name)
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

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(log.Error(), err)
}

// WarnWithCode logs a warning with a specific error code
func WarnWithCode(err errors.Error) *LogEvent {
	return withCode(log.Warn(), err)
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

func withCode(e *zerolog.Event, err errors.Error) *LogEvent {
	return &LogEvent{e.
		Str("error_code", string(err.Code())).
		Err(err)}
}

type global struct{}

// Default returns a Logger backed by the global logger, so components
// constructed before Init still follow its configuration.
func Default() Logger {
	return global{}
}

func (global) Debug() *LogEvent                         { return Debug() }
func (global) Info() *LogEvent                          { return Info() }
func (global) Warn() *LogEvent                          { return Warn() }
func (global) Error() *LogEvent                         { return Error() }
func (global) ErrorWithCode(err errors.Error) *LogEvent { return ErrorWithCode(err) }
func (global) WarnWithCode(err errors.Error) *LogEvent  { return WarnWithCode(err) }

type writerLogger struct {
	l zerolog.Logger
}

// New returns a Logger writing JSON lines to w at debug level.
func New(w io.Writer) Logger {
	return &writerLogger{l: zerolog.New(w).Level(zerolog.DebugLevel)}
}

func (w *writerLogger) Debug() *LogEvent { return &LogEvent{w.l.Debug()} }
func (w *writerLogger) Info() *LogEvent  { return &LogEvent{w.l.Info()} }
func (w *writerLogger) Warn() *LogEvent  { return &LogEvent{w.l.Warn()} }
func (w *writerLogger) Error() *LogEvent { return &LogEvent{w.l.Error()} }

func (w *writerLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(w.l.Error(), err)
}

func (w *writerLogger) WarnWithCode(err errors.Error) *LogEvent {
	return withCode(w.l.Warn(), err)
}
