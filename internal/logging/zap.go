package logging

import "go.uber.org/zap"

// ZapLogger adapts a zap logger to the Logger interface. Arguments are
// interpreted as alternating key/value pairs.
type ZapLogger struct {
	sl *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sl: l.Sugar()}
}

func (z *ZapLogger) Debug(msg string, args ...any) { z.sl.Debugw(msg, args...) }
func (z *ZapLogger) Info(msg string, args ...any)  { z.sl.Infow(msg, args...) }
func (z *ZapLogger) Warn(msg string, args ...any)  { z.sl.Warnw(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...any) { z.sl.Errorw(msg, args...) }

// Named returns a child logger with the given name segment.
func (z *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{sl: z.sl.Named(name)}
}

var _ Logger = (*ZapLogger)(nil)
