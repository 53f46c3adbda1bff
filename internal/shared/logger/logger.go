package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	level string
}

type Option func(*options)

// WithLevel sobrescreve o nível padrão do ambiente ("debug", "info", "warn", "error").
// String vazia mantém o padrão.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// New cria o logger zap do serviço. Ambientes locais usam a configuração de
// desenvolvimento (console colorido, nível debug); os demais emitem JSON.
func New(serviceName string, env string, opts ...Option) (*zap.Logger, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	cfg := zap.NewProductionConfig()
	// sem amostragem em produção
	cfg.Sampling = nil
	if isLocal(env) {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if o.level != "" {
		lvl, err := zapcore.ParseLevel(o.level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", o.level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build(
		zap.Fields(
			zap.String("service", serviceName),
			zap.String("env", env),
		),
	)
}

func isLocal(env string) bool {
	switch env {
	case "local", "development", "dev", "test":
		return true
	}
	return false
}
