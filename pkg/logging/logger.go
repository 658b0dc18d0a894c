package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Global logger instance and synchronization
var (
	Logger   *slog.Logger
	loggerMu sync.RWMutex
	logFile  *os.File // Track file handle for cleanup
	isInited bool
	initOnce sync.Once // For lazy initialization in GetLogger
)

// LogLevel represents logging verbosity
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	OutputPath string // Empty for stdout, or file path
}

// Init initializes the global logger with the given configuration.
// This should be called once at application startup.
// Subsequent calls to Init will return an error to prevent multiple initialization.
//
// Example:
//
//	logging.Init(logging.Config{
//	    Level: logging.LevelInfo,
//	    OutputPath: "logs/relindex.log",
//	})
func Init(config Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return fmt.Errorf("logger already initialized; call Close() first to reinitialize")
	}

	var writer io.Writer

	if config.OutputPath == "" {
		writer = os.Stdout
	} else {
		logDir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			return err
		}

		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		writer = file
		logFile = file
	}

	var level slog.Level
	switch config.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelInfo:
		level = slog.LevelInfo
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	Logger = slog.New(newLogfmtHandler(writer, level))
	isInited = true
	return nil
}

// InitDefault initializes the logger with sensible defaults:
// - Level: INFO
// - Output: stdout
// This is safe to call multiple times and will only initialize once.
func InitDefault() {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return
	}

	Logger = slog.New(newLogfmtHandler(os.Stdout, slog.LevelInfo))
	isInited = true
}

// Close closes the logger and any open file handles.
// After calling Close, you can call Init again to reinitialize.
// It's safe to call Close multiple times.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if !isInited {
		return nil
	}

	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}

	Logger = nil
	isInited = false

	initOnce = sync.Once{}
	return err
}

// GetLogger returns the current logger instance in a thread-safe manner.
// If the logger is not initialized, it initializes with defaults using sync.Once
// for efficient lazy initialization.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	if isInited {
		logger := Logger
		loggerMu.RUnlock()
		return logger
	}
	loggerMu.RUnlock()

	initOnce.Do(func() {
		InitDefault()
	})

	loggerMu.RLock()
	logger := Logger
	loggerMu.RUnlock()
	return logger
}

// Debug logs a debug message in a thread-safe manner
func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

// Info logs an info message in a thread-safe manner
func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

// Warn logs a warning message in a thread-safe manner
func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

// Error logs an error message in a thread-safe manner
func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// logfmtHandler is a slog.Handler that renders records as logfmt lines
// instead of slog's built-in text/JSON encodings. It keeps the
// group/WithAttrs plumbing slog expects but delegates the actual key=value
// encoding to github.com/go-logfmt/logfmt.
type logfmtHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func newLogfmtHandler(w io.Writer, level slog.Level) *logfmtHandler {
	return &logfmtHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *logfmtHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *logfmtHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	enc := logfmt.NewEncoder(h.w)

	if !r.Time.IsZero() {
		if err := enc.EncodeKeyval("ts", r.Time.Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}
	if err := enc.EncodeKeyval("level", r.Level.String()); err != nil {
		return err
	}
	if err := enc.EncodeKeyval("msg", r.Message); err != nil {
		return err
	}

	for _, a := range h.attrs {
		if err := encodeAttr(enc, h.groups, a); err != nil {
			return err
		}
	}

	var encErr error
	r.Attrs(func(a slog.Attr) bool {
		encErr = encodeAttr(enc, h.groups, a)
		return encErr == nil
	})
	if encErr != nil {
		return encErr
	}

	return enc.EndRecord()
}

func encodeAttr(enc *logfmt.Encoder, groups []string, a slog.Attr) error {
	if a.Equal(slog.Attr{}) {
		return nil
	}
	key := a.Key
	if len(groups) > 0 {
		key = fmt.Sprintf("%s.%s", joinGroups(groups), key)
	}
	return enc.EncodeKeyval(key, a.Value.Any())
}

func joinGroups(groups []string) string {
	out := groups[0]
	for _, g := range groups[1:] {
		out = out + "." + g
	}
	return out
}

func (h *logfmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &logfmtHandler{mu: h.mu, w: h.w, level: h.level, groups: h.groups}
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return next
}

func (h *logfmtHandler) WithGroup(name string) slog.Handler {
	next := &logfmtHandler{mu: h.mu, w: h.w, level: h.level, attrs: h.attrs}
	next.groups = append(append([]string{}, h.groups...), name)
	return next
}
