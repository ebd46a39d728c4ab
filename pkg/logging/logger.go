package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level orders log entries by severity.
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
	default:
		return "ERROR"
	}
}

// ParseLevel accepts debug, info, warn and error, and the verbosity names
// quiet (error), normal (info) and verbose (debug).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return LevelDebug, nil
	case "info", "normal", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "quiet":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s (must be 'quiet', 'normal', 'verbose', 'debug', 'info', 'warn' or 'error')", s)
	}
}

// Logger writes leveled entries for one component:
//
//	[2006-01-02 15:04:05.000] [component] [LEVEL] message
//
// Loggers derived with With share the underlying writer.
type Logger struct {
	sessionID string
	component string
	level     Level
	sink      *sink
}

type sink struct {
	mu        sync.Mutex
	logger    *log.Logger
	file      *os.File
	logPath   string
	closeOnce sync.Once
}

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where session log files are stored
	logDir     string
	logDirMu   sync.Mutex
	initOnce   sync.Once
	initErr    error
	defaultDir = func() (string, error) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, ".gnmd", "logs"), nil
	}
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// SetLogDirectory overrides the session log directory. It must be called
// before the first NewLogger call to take effect.
func SetLogDirectory(dir string) {
	logDirMu.Lock()
	defer logDirMu.Unlock()
	logDir = dir
}

func initLogDirectory() error {
	initOnce.Do(func() {
		logDirMu.Lock()
		defer logDirMu.Unlock()
		if logDir == "" {
			dir, err := defaultDir()
			if err != nil {
				initErr = err
				return
			}
			logDir = dir
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// New creates a logger writing to w. Entries below level are dropped.
func New(component string, w io.Writer, level Level) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		level:     level,
		sink: &sink{
			logger: log.New(w, "", 0),
		},
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New("nop", io.Discard, LevelError+1)
}

// NewLogger creates a logger writing every level to the session log file
// <log-dir>/<session-id>-gnmd.log. If the file cannot be opened it falls back
// to stderr and returns the error alongside the fallback logger.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("%s-gnmd.log", getSessionID()))
	// Append mode: several components may write to the same file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	l := New(component, file, LevelDebug)
	l.sink.file = file
	l.sink.logPath = logPath
	return l, nil
}

func newFallbackLogger(component string, err error) *Logger {
	l := New(component, os.Stderr, LevelDebug)
	l.Warnf("failed to initialize file logging: %v", err)
	l.Warnf("falling back to stderr logging")
	return l
}

// With returns a logger for another component sharing this logger's output
// and level.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		sessionID: l.sessionID,
		component: component,
		level:     l.level,
		sink:      l.sink,
	}
}

// SetLevel changes the minimum level written by this logger.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Enabled reports whether entries at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) formatLogEntry(level Level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

func (l *Logger) logf(level Level, format string, v ...any) {
	if !l.Enabled(level) {
		return
	}
	entry := l.formatLogEntry(level, fmt.Sprintf(format, v...))

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.logger.Println(entry)
}

func (l *Logger) Debugf(format string, v ...any) {
	l.logf(LevelDebug, format, v...)
}

func (l *Logger) Infof(format string, v ...any) {
	l.logf(LevelInfo, format, v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.logf(LevelWarn, format, v...)
}

func (l *Logger) Errorf(format string, v ...any) {
	l.logf(LevelError, format, v...)
}

func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the session log file, or "" when not logging to a file.
func (l *Logger) LogPath() string {
	return l.sink.logPath
}

// Close closes the log file, if any. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.sink.closeOnce.Do(func() {
		if l.sink.file != nil {
			err = l.sink.file.Close()
		}
	})
	return err
}
