package log

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const (
	ConnIDKey    ctxKey = "conn"
	RequestIDKey ctxKey = "req"
	QueryIDKey   ctxKey = "query"
)

var tagKeys = []ctxKey{ConnIDKey, RequestIDKey, QueryIDKey}

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// New builds a production zap logger at the given level
// (debug, info, warn, error).
func New(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("bad log level %q: %v", level, err)
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.DisableStacktrace = true
	return config.Build()
}

// SetLogger replaces the process-wide logger. The default discards everything.
func SetLogger(l *zap.Logger) {
	current.Store(l)
}

func L() *zap.Logger {
	return current.Load()
}

type Loggable interface {
	Ctx() context.Context
}

func ctxFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	for _, key := range tagKeys {
		if val := ctx.Value(key); val != nil {
			fields = append(fields, zap.Any(string(key), val))
		}
	}
	return fields
}

func Println(l Loggable, args ...interface{}) {
	msg := fmt.Sprintln(args...)
	L().Info(msg[:len(msg)-1], ctxFields(l.Ctx())...)
}

func Printf(l Loggable, format string, args ...interface{}) {
	L().Info(fmt.Sprintf(format, args...), ctxFields(l.Ctx())...)
}

func Debugf(l Loggable, format string, args ...interface{}) {
	logger := L()
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...), ctxFields(l.Ctx())...)
}

func Errorf(l Loggable, format string, args ...interface{}) {
	L().Error(fmt.Sprintf(format, args...), ctxFields(l.Ctx())...)
}

// Tagged adapts a bare context to Loggable.
type Tagged struct {
	context.Context
}

func (c Tagged) Ctx() context.Context {
	return c.Context
}
