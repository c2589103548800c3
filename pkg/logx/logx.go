package logx

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel accepts debug, info, warn/warning and error; anything else is info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is a thin wrapper around a sugared zap logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	global = newLogger("dev")
)

func newLogger(mode string) *Logger {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = level

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logx: falling back to no-op logger: %v\n", err)
		zl = zap.NewNop()
	}
	return &Logger{sugar: zl.Sugar()}
}

func SetLevel(l Level) {
	level.SetLevel(l.zapLevel())
}

// SetMode switches between the development console encoder and the
// production JSON encoder.
func SetMode(mode string) {
	l := newLogger(mode)
	mu.Lock()
	global = l
	mu.Unlock()
}

func L() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Sync() { _ = L().sugar.Sync() }

func With(keysAndValues ...any) *Logger {
	return &Logger{sugar: L().sugar.With(keysAndValues...)}
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...any) { l.sugar.Debugw(msg, keysAndValues...) }
func (l *Logger) Info(msg string, keysAndValues ...any)  { l.sugar.Infow(msg, keysAndValues...) }
func (l *Logger) Warn(msg string, keysAndValues ...any)  { l.sugar.Warnw(msg, keysAndValues...) }
func (l *Logger) Error(msg string, keysAndValues ...any) { l.sugar.Errorw(msg, keysAndValues...) }

func (l *Logger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

func Debug(msg string, keysAndValues ...any) { L().sugar.Debugw(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)  { L().sugar.Infow(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { L().sugar.Warnw(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { L().sugar.Errorw(msg, keysAndValues...) }

func Debugf(format string, args ...any) { L().sugar.Debugf(format, args...) }
func Infof(format string, args ...any)  { L().sugar.Infof(format, args...) }
func Warnf(format string, args ...any)  { L().sugar.Warnf(format, args...) }
func Errorf(format string, args ...any) { L().sugar.Errorf(format, args...) }
func Fatalf(format string, args ...any) { L().sugar.Fatalf(format, args...) }
