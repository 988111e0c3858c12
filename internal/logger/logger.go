package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"

	"github.com/jalbritt/backdate/internal/common"
)

// Logger extends the shared common.Logger with lifecycle management for the
// log file handle.
type Logger interface {
	common.Logger

	// Close flushes buffered data and closes any open log file handle.
	// It should be called before the application exits.
	Close() error
}

// Colors used for user-facing output. fatih/color degrades to plain text
// automatically when stdout is not a terminal or NO_COLOR is set.
var (
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// DefaultLogger writes structured records to an optional log file via slog
// and plain colored lines to the user's terminal. It implements Logger.
type DefaultLogger struct {
	mu      sync.Mutex
	slogger *slog.Logger
	enabled bool
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
}

// New creates a Logger. When enabled is true, debug records are appended to
// logFile; verbose controls whether Warning output reaches the terminal.
func New(enabled bool, logFile string, verbose bool) Logger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers.
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var slogger *slog.Logger
	var file *os.File

	if enabled {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				_, _ = fmt.Fprintf(stderr, "failed to create log directory: %v\n", err)
			}
		}

		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			file = f
			slogger = slog.New(slog.NewTextHandler(f, opts))
			_, _ = fmt.Fprintf(stdout, "Debug logging enabled, writing to %s\n", logFile)
			slogger.Info("backdate debug logging started")
		} else {
			slogger = slog.New(slog.NewTextHandler(stderr, opts))
			_, _ = fmt.Fprintf(stderr, "failed to open log file (%v), using stderr\n", err)
		}
	} else {
		slogger = slog.New(slog.NewTextHandler(stderr, opts))
	}

	return &DefaultLogger{
		slogger: slogger,
		enabled: enabled,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
		file:    file,
	}
}

// Info logs an informational message (file only).
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.slogger.Info(fmt.Sprintf(format, args...))
}

// Warning logs a warning message; shown on the terminal only in verbose mode.
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Warn(msg)
	}
	if l.verbose {
		_, _ = warningColor.Fprintf(l.stdout, "! %s\n", msg)
	}
}

// Error logs an error message; always shown on stderr.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Error(msg)
	}
	_, _ = errorColor.Fprintf(l.stderr, "error: %s\n", msg)
}

// InfoToUser logs an informational message to both file and stdout.
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Info(msg)
	}
	_, _ = infoColor.Fprintf(l.stdout, "%s\n", msg)
}

// WarningToUser logs a warning message to both file and stdout.
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Warn(msg)
	}
	_, _ = warningColor.Fprintf(l.stdout, "! %s\n", msg)
}

// Success logs a success message to both file and stdout.
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Info(msg)
	}
	_, _ = successColor.Fprintf(l.stdout, "✓ %s\n", msg)
}

// StatusMessage prints a status line to stdout only, without logging.
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintf(l.stdout, format+"\n", args...)
}

// Close flushes and closes the log file handle, if one is open.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SetStdout redirects user-facing stdout messages; intended for tests.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr redirects user-facing stderr messages; intended for tests.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
