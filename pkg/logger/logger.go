package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log struct {
	LogLevel zapcore.Level `yaml:"level" envconfig:"LOG_LEVEL"`
	Sink     string        `yaml:"sink" envconfig:"LOG_SINK"`
}

// NewLogger builds a zap logger writing to stderr or, when cfg.Sink is
// set, to that file.
func NewLogger(cfg Log, name string) *zap.Logger {
	ws := zapcore.Lock(os.Stderr)
	if cfg.Sink != "" {
		if f, err := os.OpenFile(cfg.Sink, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			ws = zapcore.Lock(f)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, cfg.LogLevel)

	return zap.New(core, zap.AddCaller()).Named(name)
}
