package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of log messages.
type LogLevel int

// Log level constants defining message severity.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLogLevel converts a string log level to its LogLevel constant.
// Unknown values fall back to INFO.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Options configures log output and rotation.
type Options struct {
	Path       string // empty means stdout only
	Level      LogLevel
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Logger writes leveled messages to stdout and, optionally, a rotated log file.
type Logger struct {
	out   *log.Logger
	level LogLevel
	mu    sync.RWMutex
	file  io.Closer
}

var (
	instance *Logger
	once     sync.Once
)

// Init initializes the global logger. Only the first call has an effect.
func Init(opts Options) error {
	var err error
	once.Do(func() {
		instance, err = New(opts)
	})
	return err
}

// New creates a logger. When opts.Path is set, output is duplicated into a
// lumberjack-rotated file next to stdout.
func New(opts Options) (*Logger, error) {
	var w io.Writer = os.Stdout
	l := &Logger{level: opts.Level}

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		l.file = lj
		w = io.MultiWriter(os.Stdout, lj)
	}

	l.out = log.New(w, "", log.LstdFlags|log.Lshortfile)
	return l, nil
}

// NewWithWriter creates a logger writing to w. Used by tests.
func NewWithWriter(w io.Writer, level LogLevel) *Logger {
	return &Logger{out: log.New(w, "", 0), level: level}
}

// SetDefault replaces the global logger instance.
func SetDefault(l *Logger) {
	instance = l
}

// SetLevel changes the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *Logger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Close flushes and closes the rotated log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) logf(depth int, level LogLevel, format string, v ...interface{}) {
	if level < l.GetLevel() {
		return
	}
	l.out.Output(depth+1, "["+level.String()+"] "+fmt.Sprintf(format, v...))
}

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.logf(2, DEBUG, format, v...) }

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.logf(2, INFO, format, v...) }

// Warnf logs a formatted warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.logf(2, WARN, format, v...) }

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.logf(2, ERROR, format, v...) }

// Fatalf logs a formatted fatal-level message and exits the program.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logf(2, FATAL, format, v...)
	l.Close()
	os.Exit(1)
}

// Global convenience functions

// Debugf logs a formatted debug-level message using the global logger instance.
func Debugf(format string, v ...interface{}) {
	if instance != nil {
		instance.logf(2, DEBUG, format, v...)
	}
}

// Infof logs a formatted info-level message using the global logger instance.
func Infof(format string, v ...interface{}) {
	if instance != nil {
		instance.logf(2, INFO, format, v...)
	}
}

// Warnf logs a formatted warning-level message using the global logger instance.
func Warnf(format string, v ...interface{}) {
	if instance != nil {
		instance.logf(2, WARN, format, v...)
	}
}

// Errorf logs a formatted error-level message using the global logger instance.
func Errorf(format string, v ...interface{}) {
	if instance != nil {
		instance.logf(2, ERROR, format, v...)
	}
}

// Fatalf logs a formatted fatal-level message using the global logger
// instance and exits the program. Without a logger it still exits.
func Fatalf(format string, v ...interface{}) {
	if instance != nil {
		instance.logf(2, FATAL, format, v...)
		instance.Close()
	} else {
		log.Printf("[FATAL] "+format, v...)
	}
	os.Exit(1)
}

// GetLevel returns the current minimum log level of the global logger instance.
func GetLevel() LogLevel {
	if instance != nil {
		return instance.GetLevel()
	}
	return INFO
}

// Close closes the global logger's file output.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
