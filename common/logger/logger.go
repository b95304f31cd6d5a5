package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// Config holds logger configuration
type Config struct {
	Level       Level
	Output      io.Writer
	JSONFormat  bool
	ShowCaller  bool
	TimeFormat  string
	ServiceName string
}

// DefaultConfig returns logger configuration from environment variables
func DefaultConfig() *Config {
	level := INFO
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level = parseLevel(lvl)
	}

	return &Config{
		Level:       level,
		Output:      os.Stdout,
		JSONFormat:  os.Getenv("LOG_FORMAT") == "json",
		ShowCaller:  true,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		ServiceName: os.Getenv("SERVICE_NAME"),
	}
}

// Logger is a structured logger with per-instance fields
type Logger struct {
	config *Config
	fields map[string]interface{}
	mu     sync.RWMutex
}

type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Service   string                 `json:"service,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New creates a logger with the given config
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	return &Logger{
		config: config,
		fields: make(map[string]interface{}),
	}
}

// Default returns the shared default logger
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(nil)
	})
	return defaultLogger
}

// With returns a child logger carrying an additional field
func (l *Logger) With(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a child logger carrying additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	child := &Logger{
		config: l.config,
		fields: make(map[string]interface{}),
	}
	l.mu.RLock()
	for k, v := range l.fields {
		child.fields[k] = v
	}
	l.mu.RUnlock()
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// WithError returns a child logger carrying the error as a field
func (l *Logger) WithError(err error) *Logger {
	return l.With("error", err.Error())
}

// Debug logs at DEBUG level. Extra args are key/value pairs.
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(DEBUG, msg, kv...) }

// Info logs at INFO level
func (l *Logger) Info(msg string, kv ...interface{}) { l.log(INFO, msg, kv...) }

// Warn logs at WARN level
func (l *Logger) Warn(msg string, kv ...interface{}) { l.log(WARN, msg, kv...) }

// Error logs at ERROR level
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(ERROR, msg, kv...) }

// Fatal logs at FATAL level and exits
func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.log(FATAL, msg, kv...)
	os.Exit(1)
}

func (l *Logger) log(level Level, msg string, kv ...interface{}) {
	if level < l.config.Level {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().Format(l.config.TimeFormat),
		Level:     levelNames[level],
		Message:   msg,
		Service:   l.config.ServiceName,
	}

	if l.config.ShowCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", shortenPath(file), line)
		}
	}

	l.mu.RLock()
	if len(l.fields) > 0 || len(kv) > 0 {
		entry.Fields = make(map[string]interface{}, len(l.fields)+len(kv)/2)
		for k, v := range l.fields {
			entry.Fields[k] = v
		}
	}
	l.mu.RUnlock()

	// Trailing key/value pairs, logger.Info("msg", "key", value) style.
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		entry.Fields[key] = kv[i+1]
	}

	if l.config.JSONFormat {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.config.Output, string(data))
		return
	}

	var sb strings.Builder
	sb.WriteString(entry.Timestamp)
	sb.WriteString(fmt.Sprintf(" [%-5s] ", entry.Level))
	if entry.Caller != "" {
		sb.WriteString(fmt.Sprintf("[%s] ", entry.Caller))
	}
	sb.WriteString(entry.Message)
	if len(entry.Fields) > 0 {
		sb.WriteString(" |")
		for k, v := range entry.Fields {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, v))
		}
	}
	fmt.Fprintln(l.config.Output, sb.String())
}

// RequestLog captures one handled HTTP request for access logging
type RequestLog struct {
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	ClientIP  string
	RequestID string
}

// LogRequest writes an access-log line; 4xx logs WARN, 5xx logs ERROR
func (l *Logger) LogRequest(req RequestLog) {
	level := INFO
	if req.Status >= 500 {
		level = ERROR
	} else if req.Status >= 400 {
		level = WARN
	}

	l.WithFields(map[string]interface{}{
		"method":      req.Method,
		"path":        req.Path,
		"status":      req.Status,
		"duration_ms": req.Duration.Milliseconds(),
		"client_ip":   req.ClientIP,
		"request_id":  req.RequestID,
	}).log(level, fmt.Sprintf("%s %s -> %d (%s)", req.Method, req.Path, req.Status, req.Duration))
}

func parseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
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

func shortenPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	return path
}

// Package-level convenience functions using the default logger

func Debug(msg string, kv ...interface{}) { Default().log(DEBUG, msg, kv...) }
func Info(msg string, kv ...interface{})  { Default().log(INFO, msg, kv...) }
func Warn(msg string, kv ...interface{})  { Default().log(WARN, msg, kv...) }
func Error(msg string, kv ...interface{}) { Default().log(ERROR, msg, kv...) }
