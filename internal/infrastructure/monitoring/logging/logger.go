// Package logging defines the structured logging contract shared by every
// layer of the service, together with its zap-backed implementation.  Loaders,
// analyzers, comparators, repositories, and HTTP handlers all depend on the
// Logger interface declared here; importing go.uber.org/zap anywhere else is
// off limits so the backend stays replaceable.
//
// Startup sequence in cmd/*/main.go:
//
//  1. Parse configuration.
//  2. Call NewLogger(cfg.Log) and register it with logging.SetDefault.
//  3. Construct the remaining components, injecting the Logger.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ─────────────────────────────────────────────────────────────────────────────
// Field — structured log field carrier
// ─────────────────────────────────────────────────────────────────────────────

// Field is a typed key-value pair attached to a log entry.  A concrete struct
// keeps the call sites explicit where variadic interface{} arguments would not,
// and lets zapLogger translate the common types without reflection.
type Field struct {
	Key   string
	Value interface{}
}

// ── Convenience constructors ──────────────────────────────────────────────────

// String constructs a Field holding a string.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int constructs a Field holding an int.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Int64 constructs a Field holding an int64.
func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

// Float64 constructs a Field holding a float64.
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

// Bool constructs a Field holding a bool.
func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

// Err records an error under the canonical key "error".  A nil err is logged
// as the string "<nil>".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any constructs a Field holding an arbitrary value.  Prefer the typed
// constructors; this one ends up in zap.Any, which falls back to reflection.
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }

// Duration constructs a Field holding a time.Duration.
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// ─────────────────────────────────────────────────────────────────────────────
// Logger interface
// ─────────────────────────────────────────────────────────────────────────────

// Logger is the logging contract every component receives via constructor
// injection.  Tests substitute NewNopLogger or an observed-core logger without
// touching the code under test.
type Logger interface {
	// Debug logs at DEBUG level: high-frequency diagnostics that production
	// configurations silence by raising the level to INFO.
	Debug(msg string, fields ...Field)

	// Info logs at INFO level: routine operational events.
	Info(msg string, fields ...Field)

	// Warn logs at WARN level: recoverable abnormal conditions worth a look.
	Warn(msg string, fields ...Field)

	// Error logs at ERROR level: a single request or operation failed but the
	// process continues.
	Error(msg string, fields ...Field)

	// Fatal logs at FATAL level and exits the process.  Startup failures only;
	// never call it on a request path.
	Fatal(msg string, fields ...Field)

	// With returns a child Logger that attaches the given fields to every
	// subsequent entry.  The receiver is left unchanged.
	With(fields ...Field) Logger

	// Named returns a child Logger whose name extends the parent's with a
	// period separator ("app" → "app.http").
	Named(name string) Logger
}

// ─────────────────────────────────────────────────────────────────────────────
// LogConfig — logger construction parameters
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig carries the parameters NewLogger needs.  It is populated from the
// application configuration file by internal/config/loader.go.
type LogConfig struct {
	// Level is the minimum severity emitted: "debug", "info", "warn", or
	// "error" (case-insensitive).  Empty or unrecognised values mean "info".
	Level string `yaml:"level" json:"level"`

	// Format selects the encoding: "json" for aggregation pipelines or
	// "console" for coloured local output.  Defaults to "json".
	Format string `yaml:"format" json:"format"`

	// OutputPaths lists the sinks for log entries.  "stdout" and "stderr" are
	// special values; file paths are created on demand.  Defaults to ["stdout"].
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`

	// ErrorOutputPaths lists the sinks for zap's own internal errors, such as
	// write failures.  Defaults to ["stderr"].
	ErrorOutputPaths []string `yaml:"error_output_paths" json:"error_output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// zapLogger — zap-backed Logger implementation
// ─────────────────────────────────────────────────────────────────────────────

// zapLogger adapts a *zap.Logger to the Logger interface.  The inner logger is
// the unsugared variant; Field slices are translated per call so zap's pooled
// allocators do the heavy lifting.
type zapLogger struct {
	z *zap.Logger
}

// toZapFields translates our Field values into zap.Field values, switching on
// the common concrete types and reserving zap.Any for the remainder.
func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case float64:
			out = append(out, zap.Float64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.z.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.z.Error(msg, toZapFields(fields)...)
}

func (l *zapLogger) Fatal(msg string, fields ...Field) {
	l.z.Fatal(msg, toZapFields(fields)...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

// ─────────────────────────────────────────────────────────────────────────────
// NewLogger — factory
// ─────────────────────────────────────────────────────────────────────────────

// parseLevel maps a configured level string to a zapcore.Level.  Unknown
// values fall back to InfoLevel rather than failing startup.
func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug", "DEBUG":
		return zapcore.DebugLevel
	case "warn", "WARN":
		return zapcore.WarnLevel
	case "error", "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a zap-backed Logger from cfg, filling in defaults for any
// unset field (level "info", format "json", outputs stdout/stderr).  It
// returns an error only when zap cannot build the logger, for instance when
// an output path cannot be opened.
func NewLogger(cfg LogConfig) (Logger, error) {
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stdout"}
	}
	if len(cfg.ErrorOutputPaths) == 0 {
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	encoding := "json"
	encCfg := zap.NewProductionEncoderConfig()
	if cfg.Format == "console" {
		encoding = "console"
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	}

	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build zap logger: %w", err)
	}
	return &zapLogger{z: z}, nil
}

// NewLoggerFromCore wraps an existing zapcore.Core in a Logger.  Tests pass an
// observer core here to assert on emitted entries.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core, zap.AddCallerSkip(1))}
}

// ─────────────────────────────────────────────────────────────────────────────
// nopLogger — no-op implementation for tests and disabled components
// ─────────────────────────────────────────────────────────────────────────────

type nopLogger struct{}

func (nopLogger) Debug(_ string, _ ...Field) {}
func (nopLogger) Info(_ string, _ ...Field)  {}
func (nopLogger) Warn(_ string, _ ...Field)  {}
func (nopLogger) Error(_ string, _ ...Field) {}
func (nopLogger) Fatal(_ string, _ ...Field) {}
func (n nopLogger) With(_ ...Field) Logger   { return n }
func (n nopLogger) Named(_ string) Logger    { return n }

// NewNopLogger returns a Logger that drops every entry.  It is safe for
// concurrent use and exists for unit tests and benchmarks where log output is
// noise.
func NewNopLogger() Logger { return nopLogger{} }

// ─────────────────────────────────────────────────────────────────────────────
// Global default Logger
// ─────────────────────────────────────────────────────────────────────────────

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = nopLogger{} // safe zero value; replaced during init
)

// SetDefault installs l as the process-wide default Logger.  Concurrent calls
// are safe, though the expected pattern is a single call during startup before
// any goroutine reads Default().
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide default Logger.  Code that cannot take an
// injected Logger, such as init functions, may use it; everything else should
// prefer constructor injection.
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	return l
}
