package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger - логгер приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	Sync() error
}

// Config описывает параметры zap-логгера.
type Config struct {
	IsDevelopment bool
	Encoding      string // json | console
	Level         string
	DisableCaller bool
}

// ConfigFromEnv читает LOG_LEVEL, LOG_ENCODING и APP_ENV.
func ConfigFromEnv() *Config {
	cfg := &Config{
		Encoding: "json",
		Level:    "info",
	}

	if os.Getenv("APP_ENV") == "development" {
		cfg.IsDevelopment = true
		cfg.Encoding = "console"
		cfg.Level = "debug"
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_ENCODING"); v != "" {
		cfg.Encoding = v
	}

	return cfg
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger создаёт Logger поверх zap. При некорректном уровне используется info.
func NewZapLogger(cfg *Config) Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	zcfg.Encoding = cfg.Encoding
	zcfg.DisableCaller = cfg.DisableCaller
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		base = zap.NewExample()
	}

	return &zapLogger{sugar: base.Sugar()}
}

// NewNopLogger возвращает логгер, который ничего не пишет. Используется в тестах.
func NewNopLogger() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debugf(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *zapLogger) Warnf(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *zapLogger) Errorf(err error, format string, args ...any) {
	l.sugar.Errorw(fmt.Sprintf(format, args...), zap.Error(err))
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}
