package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Leveled logger shared by the service.
// Init(level) once at startup, then Debugf/Infof/Warnf/Errorf/Fatalf.
// WithContext adds request and trace identifiers to each line.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// ParseLevel maps a level name to a Level, falling back to Info.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	}
	return LevelInfo
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

func header(l Level, prefix string) string {
	return fmt.Sprintf("%s [%s] %s", time.Now().Format(time.RFC3339), strings.ToUpper(l.String()), prefix)
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(l Level, prefix, format string, v ...interface{}) {
	if l != LevelFatal && !shouldLog(l) {
		return
	}
	logger.Printf(header(l, prefix)+format, v...)
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, "", format, v...) }
func Infof(format string, v ...interface{})  { output(LevelInfo, "", format, v...) }
func Warnf(format string, v ...interface{})  { output(LevelWarn, "", format, v...) }
func Errorf(format string, v ...interface{}) { output(LevelError, "", format, v...) }

func Fatalf(format string, v ...interface{}) {
	output(LevelFatal, "", format, v...)
	os.Exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}

type requestIDKey struct{}

// ContextWithRequestID stores a request id for WithContext to pick up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Entry is a logger bound to request-scoped identifiers.
type Entry struct {
	prefix string
}

// WithContext returns an Entry that prefixes lines with request_id and
// trace_id when they are present in ctx.
func WithContext(ctx context.Context) Entry {
	var b strings.Builder
	if id := RequestIDFrom(ctx); id != "" {
		fmt.Fprintf(&b, "request_id=%s ", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fmt.Fprintf(&b, "trace_id=%s ", sc.TraceID().String())
	}
	return Entry{prefix: b.String()}
}

func (e Entry) Debugf(format string, v ...interface{}) { output(LevelDebug, e.prefix, format, v...) }
func (e Entry) Infof(format string, v ...interface{})  { output(LevelInfo, e.prefix, format, v...) }
func (e Entry) Warnf(format string, v ...interface{})  { output(LevelWarn, e.prefix, format, v...) }
func (e Entry) Errorf(format string, v ...interface{}) { output(LevelError, e.prefix, format, v...) }
