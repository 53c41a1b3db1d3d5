// Package log provides leveled file logging for tapcount.
// Output goes through tea.LogToFile so it never interferes with the TUI, and it is
// only enabled with --debug or TAPCOUNT_DEBUG.
package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatEngine Category = "engine" // counter, goals, minigames
	CatStore  Category = "store"  // SQLite and export
	CatConfig Category = "config" // config loading
	CatUI     Category = "ui"     // TUI events
)

// Logger writes structured lines to a writer.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	minLevel Level
	now      func() time.Time
}

var (
	mu            sync.Mutex
	defaultLogger *Logger
)

// Init opens path through tea.LogToFile and installs it as the default logger.
// The returned function closes the file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	SetOutput(f)
	mu.Lock()
	defaultLogger.closer = f
	mu.Unlock()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if defaultLogger != nil && defaultLogger.closer != nil {
			_ = defaultLogger.closer.Close()
			defaultLogger = nil
		}
	}, nil
}

// SetOutput installs a logger writing to w. A nil writer disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		defaultLogger = nil
		return
	}
	defaultLogger = &Logger{writer: w, minLevel: LevelDebug, now: time.Now}
}

// Enabled reports whether a default logger is installed.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger != nil
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return
	}
	l.write(level, cat, msg, fields...)
}

func (l *Logger) write(level Level, cat Category, msg string, fields ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}

	// 2026-01-02T15:04:05 [WARN] [store] message key=value
	entry := fmt.Sprintf("%s [%s] [%s] %s", l.now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	entry += "\n"
	_, _ = l.writer.Write([]byte(entry))
}
