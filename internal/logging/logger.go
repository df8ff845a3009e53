// Package logging provides simple leveled logging for the dramsim project.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the available log levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
	default:
		return "UNKNOWN"
	}
}

// Config holds logging configuration.
type Config struct {
	Level LogLevel
	// Format selects the line encoding: "text" (default) or "json".
	Format string
	Output io.Writer
	// Sync is accepted but not read: every write already goes straight to
	// Output under the logger's mutex, so buffer contents can be asserted on
	// as soon as a call returns whatever Sync is set to.
	Sync bool
	// NoColor disables ANSI color in text output (color is off by default;
	// this flag only matters once colorized output is added by a caller).
	NoColor bool
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// Logger wraps an output writer with level filtering and structured,
// chainable context fields (With/WithChannel/WithCycle/WithError).
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  LogLevel
	format string
	fields []field
}

type field struct {
	key string
	val any
}

// NewLogger creates a new logger.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	format := config.Format
	if format == "" {
		format = "text"
	}
	return &Logger{
		out:    output,
		level:  config.Level,
		format: format,
	}
}

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// Default returns the default logger, creating it if necessary.
func Default() *Logger {
	defaultMu.RLock()
	if defaultLogger != nil {
		defer defaultMu.RUnlock()
		return defaultLogger
	}
	defaultMu.RUnlock()

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// with returns a copy of l with an additional context field. Fields are
// appended, not merged by key, so the most specific call site wins when
// rendered (last write, in insertion order, is what a reader scans last).
func (l *Logger) with(key string, val any) *Logger {
	next := &Logger{
		out:    l.out,
		level:  l.level,
		format: l.format,
		fields: append(append([]field{}, l.fields...), field{key, val}),
	}
	return next
}

// With attaches an arbitrary key/value pair to every message logged through
// the returned logger.
func (l *Logger) With(key string, val any) *Logger {
	return l.with(key, val)
}

// WithChannel scopes subsequent messages to a channel id.
func (l *Logger) WithChannel(id int) *Logger {
	return l.with("channel", id)
}

// WithCycle scopes subsequent messages to a simulation cycle.
func (l *Logger) WithCycle(cycle uint64) *Logger {
	return l.with("cycle", cycle)
}

// WithRequest scopes subsequent messages to a transaction id and its kind.
func (l *Logger) WithRequest(txID uint64, op string) *Logger {
	return l.with("tx", txID).with("op", op)
}

// WithError attaches an error to subsequent messages.
func (l *Logger) WithError(err error) *Logger {
	return l.with("error", err)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.format {
	case "json":
		l.writeJSON(level, msg, args)
	default:
		l.writeText(level, msg, args)
	}
}

func (l *Logger) writeText(level LogLevel, msg string, args []any) {
	fmt.Fprintf(l.out, "%s [%s] %s%s%s\n",
		time.Now().Format(time.RFC3339Nano), level, msg,
		renderFields(l.fields), renderArgs(args))
}

func (l *Logger) writeJSON(level LogLevel, msg string, args []any) {
	rec := make(map[string]any, len(l.fields)+len(args)/2+3)
	rec["time"] = time.Now().Format(time.RFC3339Nano)
	rec["level"] = level.String()
	rec["msg"] = msg
	for _, f := range l.fields {
		rec[f.key] = stringify(f.val)
	}
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			rec[k] = stringify(args[i+1])
		}
	}
	enc := json.NewEncoder(l.out)
	_ = enc.Encode(rec)
}

func stringify(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func renderFields(fields []field) string {
	if len(fields) == 0 {
		return ""
	}
	var out string
	for _, f := range fields {
		out += fmt.Sprintf(" %s=%v", f.key, stringify(f.val))
	}
	return out
}

func renderArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var out string
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
		}
	}
	return out
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Debugf/Infof/Warnf/Errorf provide printf-style logging without structured
// fields, for call sites translating a formatted diagnostic directly (e.g.
// config-parse warnings that already embed the offending line).
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, fmt.Sprintf(format, args...)) }

// Printf satisfies interfaces.Logger by aliasing to Infof.
func (l *Logger) Printf(format string, args ...any) { l.Infof(format, args...) }

// Global convenience functions operating on the default logger.
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
