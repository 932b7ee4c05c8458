package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "warn", "WARN":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface for AggMesh.
// This allows users to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// AggMeshLogger wraps slog.Logger adding contextual cloning helpers and
// domain convenience methods. It should be cheap to copy via With* methods.
type AggMeshLogger struct {
	logger      *slog.Logger
	level       LogLevel
	context     map[string]interface{}
	component   string
	executionID string
	planID      string
}

// LoggerConfig configures construction of an AggMeshLogger.
type LoggerConfig struct {
	Level       LogLevel
	Format      string // json or text
	Output      io.Writer
	AddSource   bool
	Component   string
	ExecutionID string
	PlanID      string
	CustomAttrs map[string]interface{}
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout, AddSource: true, CustomAttrs: map[string]interface{}{}}
}

// NewLogger builds an AggMeshLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *AggMeshLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &AggMeshLogger{logger: slog.New(handler), level: cfg.Level, context: map[string]interface{}{}, component: cfg.Component, executionID: cfg.ExecutionID, planID: cfg.PlanID}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *AggMeshLogger) clone() *AggMeshLogger {
	nl := *l
	nl.context = map[string]interface{}{}
	for k, v := range l.context {
		nl.context[k] = v
	}
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *AggMeshLogger) WithContext(key string, value interface{}) *AggMeshLogger {
	nl := l.clone()
	nl.context[key] = value
	return nl
}

// WithComponent sets the logical component (engine, planner, validator, etc.).
func (l *AggMeshLogger) WithComponent(c string) *AggMeshLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithExecution attaches execution and plan identifiers.
func (l *AggMeshLogger) WithExecution(executionID, planID string) *AggMeshLogger {
	nl := l.clone()
	nl.executionID = executionID
	nl.planID = planID
	return nl
}

func (l *AggMeshLogger) buildAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.context)+5)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.executionID != "" {
		attrs = append(attrs, slog.String("execution_id", l.executionID))
	}
	if l.planID != "" {
		attrs = append(attrs, slog.String("plan_id", l.planID))
	}
	attrs = append(attrs, slog.Time("timestamp", time.Now()))
	for k, v := range l.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

func (l *AggMeshLogger) log(level slog.Level, allowed bool, msg string, args ...interface{}) {
	if !allowed {
		return
	}
	attrs := l.buildAttrs()
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Debug logs at debug level.
func (l *AggMeshLogger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, msg, args...)
}

// Info logs at info level.
func (l *AggMeshLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *AggMeshLogger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, l.level <= LogLevelWarn, msg, args...)
}

// Error logs at error level.
func (l *AggMeshLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, l.level <= LogLevelError, msg, args...)
}

// ErrorWithStack logs an error plus a runtime stack snapshot.
func (l *AggMeshLogger) ErrorWithStack(err error, msg string, args ...interface{}) {
	if l.level > LogLevelError {
		return
	}
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("error", err.Error()), slog.String("error_type", fmt.Sprintf("%T", err)))
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	attrs = append(attrs, slog.String("stack_trace", string(stack[:n])))
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

// LogUnitExecution records execution details for a single unit.
func (l *AggMeshLogger) LogUnitExecution(unit string, dur time.Duration, success bool, err error) {
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("unit_id", unit), slog.Duration("duration", dur), slog.Bool("success", success))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	level := slog.LevelInfo
	msg := "Unit execution completed"
	if !success {
		level = slog.LevelError
		msg = "Unit execution failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogPhaseExecution records aggregate phase run metrics.
func (l *AggMeshLogger) LogPhaseExecution(phase string, strategy string, units int, dur time.Duration, success bool, err error) {
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("phase", phase), slog.String("strategy", strategy), slog.Int("unit_count", units), slog.Duration("duration", dur), slog.Bool("success", success))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	level := slog.LevelInfo
	msg := "Phase execution completed"
	if !success {
		level = slog.LevelError
		msg = "Phase execution failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogThrottling records a throttling decision applied before a phase.
func (l *AggMeshLogger) LogThrottling(phase string, level string, delay time.Duration) {
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("phase", phase), slog.String("throttle_level", level), slog.Duration("delay", delay))
	l.logger.LogAttrs(context.Background(), slog.LevelWarn, "Throttling applied", attrs...)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *AggMeshLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Info("Operation completed", "operation", op, "duration", time.Since(start)) }
}

// LogPerformance logs arbitrary performance metrics for an operation.
func (l *AggMeshLogger) LogPerformance(op string, dur time.Duration, metrics map[string]interface{}) {
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("operation", op), slog.Duration("duration", dur))
	for k, v := range metrics {
		attrs = append(attrs, slog.Any("metric_"+k, v))
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "Performance metrics", attrs...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// NewSlogLogger creates a new AggMeshLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *AggMeshLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}
