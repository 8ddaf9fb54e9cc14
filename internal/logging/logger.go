// Package logging provides a small structured wrapper around zap so call
// sites log the way the rest of this codebase does: logger.Info("fetched
// curve", "mint", mint, "duration", dur).
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled, key-value structured logger used throughout
// pumpwatch.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a Logger at the given level ("debug", "info", "warn", "error").
// An unrecognised level falls back to info.
func New(level string) *Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zap.DebugLevel
	case "warn":
		zapLevel = zap.WarnLevel
	case "error":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	)

	return &Logger{z: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) { l.z.Debugw(msg, keysAndValues...) }
func (l *Logger) Info(msg string, keysAndValues ...interface{})  { l.z.Infow(msg, keysAndValues...) }
func (l *Logger) Warn(msg string, keysAndValues ...interface{})  { l.z.Warnw(msg, keysAndValues...) }
func (l *Logger) Error(msg string, keysAndValues ...interface{}) { l.z.Errorw(msg, keysAndValues...) }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.z.Sync() }

var global = New("info")

// SetGlobal replaces the package-level logger used by the convenience
// functions below.
func SetGlobal(l *Logger) { global = l }

func Debug(msg string, keysAndValues ...interface{}) { global.Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...interface{})  { global.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...interface{})  { global.Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...interface{}) { global.Error(msg, keysAndValues...) }
