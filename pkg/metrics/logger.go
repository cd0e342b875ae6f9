package metrics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Level is a logging threshold.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent // Disables all logging
)

var levelNames = [...]string{"debug", "info", "warn", "error", "silent"}

// String returns the lowercase level name, as written to JSON logs.
func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel parses a level name, case-insensitively. "warning", "off" and
// "none" are accepted as aliases.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off", "none":
		return LevelSilent, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Format selects the log encoding.
type Format int

const (
	FormatText Format = iota // zerolog console writer
	FormatJSON               // one JSON object per line
)

// ParseFormat parses "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "console", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// Fields are structured log fields.
type Fields map[string]interface{}

// Redacted replaces the value of any field whose name marks it as key
// material.
const Redacted = "[REDACTED]"

// secretMarkers flag a field as secret wherever they appear in its name.
var secretMarkers = []string{"secret", "private", "password", "passphrase"}

// isSecretField reports whether a field name marks key material: any name
// ending in "key" (hmac_key, aesKey) unless it is a public key, any name
// containing a secret marker, and the DH exponent "x".
func isSecretField(name string) bool {
	n := strings.ToLower(name)
	if n == "x" {
		return true
	}
	for _, m := range secretMarkers {
		if strings.Contains(n, m) {
			return true
		}
	}
	if strings.HasPrefix(n, "pub") {
		return false
	}
	return strings.HasSuffix(n, "key")
}

// sanitize redacts secret fields and reduces byte slices to their length,
// so raw buffers never reach a log sink.
func sanitize(f Fields) map[string]interface{} {
	out := make(map[string]interface{}, len(f))
	for k, v := range f {
		switch {
		case isSecretField(k):
			out[k] = Redacted
		default:
			if b, ok := v.([]byte); ok {
				out[k] = fmt.Sprintf("<%d bytes>", len(b))
			} else {
				out[k] = v
			}
		}
	}
	return out
}

type loggerConfig struct {
	out    io.Writer
	level  Level
	format Format
	color  bool
	fields Fields
	name   string
}

// LoggerOption configures a logger.
type LoggerOption func(*loggerConfig)

// WithOutput sets the output writer. The default is stdout.
func WithOutput(w io.Writer) LoggerOption {
	return func(c *loggerConfig) { c.out = w }
}

// WithLevel sets the minimum level. The default is LevelInfo.
func WithLevel(level Level) LoggerOption {
	return func(c *loggerConfig) { c.level = level }
}

// WithFormat sets the encoding. The default is FormatText.
func WithFormat(format Format) LoggerOption {
	return func(c *loggerConfig) { c.format = format }
}

// WithColor enables ANSI colors in text output.
func WithColor(enabled bool) LoggerOption {
	return func(c *loggerConfig) { c.color = enabled }
}

// WithFields sets fields attached to every entry.
func WithFields(fields Fields) LoggerOption {
	return func(c *loggerConfig) { c.fields = fields }
}

// WithName sets the logger name, written as the "logger" field.
func WithName(name string) LoggerOption {
	return func(c *loggerConfig) { c.name = name }
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Logger is a leveled structured logger backed by zerolog. It is safe for
// concurrent use.
type Logger struct {
	mu  sync.RWMutex
	cfg loggerConfig
	zl  zerolog.Logger
}

// NewLogger creates a logger.
func NewLogger(opts ...LoggerOption) *Logger {
	cfg := loggerConfig{out: os.Stdout, level: LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newLogger(cfg)
}

func newLogger(cfg loggerConfig) *Logger {
	var w io.Writer = cfg.out
	if cfg.format == FormatText {
		w = zerolog.ConsoleWriter{
			Out:        cfg.out,
			NoColor:    !cfg.color,
			TimeFormat: "15:04:05.000",
			FormatLevel: func(i interface{}) string {
				s, _ := i.(string)
				return fmt.Sprintf("%-5s", strings.ToUpper(s))
			},
		}
	}

	ctx := zerolog.New(w).Level(cfg.level.zerolog()).With().Timestamp()
	if cfg.name != "" {
		ctx = ctx.Str("logger", cfg.name)
	}
	if len(cfg.fields) > 0 {
		ctx = ctx.Fields(sanitize(cfg.fields))
	}
	return &Logger{cfg: cfg, zl: ctx.Logger()}
}

func (l *Logger) config() loggerConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// With returns a child logger with extra fields. The parent is unchanged.
func (l *Logger) With(fields Fields) *Logger {
	cfg := l.config()
	merged := make(Fields, len(cfg.fields)+len(fields))
	for k, v := range cfg.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	cfg.fields = merged
	return newLogger(cfg)
}

// Named returns a child logger whose name is the parent's name with
// "."+name appended.
func (l *Logger) Named(name string) *Logger {
	cfg := l.config()
	if cfg.name != "" {
		cfg.name += "." + name
	} else {
		cfg.name = name
	}
	return newLogger(cfg)
}

// SetLevel changes the minimum level of this logger.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.level = level
	l.zl = l.zl.Level(level.zerolog())
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	return l.config().level
}

// Zerolog returns the underlying zerolog logger. Fields added through it
// bypass redaction.
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.zl
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Fields) { l.log(LevelDebug, msg, fields) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Fields) { l.log(LevelInfo, msg, fields) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Fields) { l.log(LevelWarn, msg, fields) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Fields) { l.log(LevelError, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Fields) {
	if level >= LevelSilent {
		return
	}
	zl := l.Zerolog()
	ev := zl.WithLevel(level.zerolog())
	if ev == nil {
		return
	}
	for _, f := range fields {
		ev = ev.Fields(sanitize(f))
	}
	ev.Msg(msg)
}

// --- Global logger ---

var globalLogger atomic.Pointer[Logger]

func init() {
	globalLogger.Store(NewLogger(WithOutput(os.Stderr), WithLevel(LevelWarn)))
}

// SetLogger replaces the global logger. A nil logger silences it.
func SetLogger(l *Logger) {
	if l == nil {
		l = NullLogger()
	}
	globalLogger.Store(l)
}

// GetLogger returns the global logger.
func GetLogger() *Logger {
	return globalLogger.Load()
}

// Debug logs at debug level using the global logger.
func Debug(msg string, fields ...Fields) { GetLogger().Debug(msg, fields...) }

// Info logs at info level using the global logger.
func Info(msg string, fields ...Fields) { GetLogger().Info(msg, fields...) }

// Warn logs at warn level using the global logger.
func Warn(msg string, fields ...Fields) { GetLogger().Warn(msg, fields...) }

// Error logs at error level using the global logger.
func Error(msg string, fields ...Fields) { GetLogger().Error(msg, fields...) }

// NullLogger returns a logger that discards everything.
func NullLogger() *Logger {
	return NewLogger(WithOutput(io.Discard), WithLevel(LevelSilent))
}

// TestLogger returns a debug-level text logger for tests.
func TestLogger(w io.Writer) *Logger {
	return NewLogger(WithOutput(w), WithLevel(LevelDebug))
}

// ProductionLogger returns an info-level JSON logger.
func ProductionLogger(w io.Writer) *Logger {
	return NewLogger(WithOutput(w), WithLevel(LevelInfo), WithFormat(FormatJSON))
}
