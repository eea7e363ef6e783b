package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Rotation configures the size-based rotation of the log file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	atom         = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger       *zap.SugaredLogger
	sink         io.Closer
)

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.podfeed/podfeed.log.
func Setup(level LogLevel, filePath ...string) error {
	path := ""
	if len(filePath) > 0 {
		path = filePath[0]
	}
	return SetupRotating(level, path, Rotation{MaxSizeMB: 10, MaxBackups: 3})
}

// SetupRotating is Setup with explicit rotation limits.
func SetupRotating(level LogLevel, path string, rot Rotation) error {
	if level == LevelOff {
		install(level, nil, nil)
		return nil
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".podfeed", "podfeed.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// Fail early on unwritable paths, lumberjack would only report on first write
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	f.Close()

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
	}
	install(level, zapcore.AddSync(lj), lj)
	return nil
}

// SetupWriter routes log output to w. Used by tests and by callers that
// want logs on stderr.
func SetupWriter(level LogLevel, w io.Writer) {
	if level == LevelOff {
		install(level, nil, nil)
		return
	}
	install(level, zapcore.AddSync(w), nil)
}

func install(level LogLevel, ws zapcore.WriteSyncer, closer io.Closer) {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	currentLevel = level
	if ws == nil {
		return
	}

	atom.SetLevel(level.zapLevel())
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, atom)
	logger = zap.New(core).Named("podfeed").Sugar()
	sink = closer
}

func closeLocked() error {
	var err error
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if sink != nil {
		err = sink.Close()
		sink = nil
	}
	return err
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close flushes and closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func active(level LogLevel) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if level < currentLevel || logger == nil {
		return nil
	}
	return logger
}

func logf(level LogLevel, kv []interface{}, format string, args ...any) {
	l := active(level)
	if l == nil {
		return
	}
	if len(kv) > 0 {
		l = l.With(kv...)
	}
	switch level {
	case LevelDebug:
		l.Debugf(format, args...)
	case LevelInfo:
		l.Infof(format, args...)
	case LevelWarn:
		l.Warnf(format, args...)
	case LevelError:
		l.Errorf(format, args...)
	}
}

func Debugf(format string, args ...any) {
	logf(LevelDebug, nil, format, args...)
}

func Infof(format string, args ...any) {
	logf(LevelInfo, nil, format, args...)
}

func Warnf(format string, args ...any) {
	logf(LevelWarn, nil, format, args...)
}

func Errorf(format string, args ...any) {
	logf(LevelError, nil, format, args...)
}

// FieldLogger attaches a fixed set of structured fields to every entry.
type FieldLogger struct {
	kv []interface{}
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &FieldLogger{kv: kv}
}

// With returns a copy of fl extended with one more field.
func (fl *FieldLogger) With(key string, value interface{}) *FieldLogger {
	kv := make([]interface{}, 0, len(fl.kv)+2)
	kv = append(kv, fl.kv...)
	kv = append(kv, key, value)
	return &FieldLogger{kv: kv}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logf(LevelDebug, fl.kv, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logf(LevelInfo, fl.kv, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logf(LevelWarn, fl.kv, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logf(LevelError, fl.kv, format, args...)
}
