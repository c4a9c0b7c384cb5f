// Package logger provides the zap-backed implementation of ports.Logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shopmate/internal/ports"
)

// ZapLogger adapts a *zap.Logger to the ports.Logger contract.
type ZapLogger struct {
	base *zap.Logger
}

// New builds a logger at the given level. Pretty enables the colored
// development encoder for terminal use.
func New(level string, pretty bool) *ZapLogger {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	base, err := cfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		base = zap.NewNop()
	}
	return &ZapLogger{base: base}
}

// Nop returns a logger that discards everything; used by tests.
func Nop() *ZapLogger {
	return &ZapLogger{base: zap.NewNop()}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error { return l.base.Sync() }

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.base.Debug(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.base.Info(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.base.Warn(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Error(msg string, err error, fields map[string]interface{}) {
	zf := toZapFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.base.Error(msg, zf...)
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return zf
}

var _ ports.Logger = (*ZapLogger)(nil)
