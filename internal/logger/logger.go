package logger

import (
  "fmt"

  "go.uber.org/zap"
)

// Logger wraps a zap sugared logger so callers can pass key/value pairs
// without importing zap everywhere.
type Logger struct {
  sugar *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
  var cfg zap.Config
  switch mode {
  case "production":
    cfg = zap.NewProductionConfig()
  case "development", "":
    cfg = zap.NewDevelopmentConfig()
  default:
    return nil, fmt.Errorf("unknown log mode: %q", mode)
  }
  base, err := cfg.Build(zap.AddCallerSkip(1))
  if err != nil {
    return nil, fmt.Errorf("failed to build zap logger: %w", err)
  }
  return &Logger{sugar: base.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
  return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
  return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
  l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
  l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
  l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
  l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Sync() {
  _ = l.sugar.Sync()
}
