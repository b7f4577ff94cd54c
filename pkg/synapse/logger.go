package synapse

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig configures NewLogger
type LogConfig struct {
	// Env is "dev" (colored console) or "prod" (JSON). Default: dev.
	Env string

	// Level is the minimum level: debug, info, warn, error. Default: info.
	Level string

	// Service is added to every entry when set
	Service string
}

// NewLogger builds a zap logger for generated clients
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if strings.EqualFold(cfg.Env, "prod") {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Service != "" {
		l = l.With(zap.String("service", cfg.Service))
	}
	return l, nil
}

// ParseLevel converts a level name to a zapcore.Level, defaulting to info
func ParseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// LoggingObserver writes one entry per lifecycle stage
type LoggingObserver struct {
	log *zap.Logger
}

// NewLoggingObserver returns an Observer that logs to l
func NewLoggingObserver(l *zap.Logger) *LoggingObserver {
	if l == nil {
		l = zap.NewNop()
	}
	return &LoggingObserver{log: l}
}

func (o *LoggingObserver) Before(_ context.Context, e Event) {
	o.log.Debug("request built", eventFields(e)...)
}

func (o *LoggingObserver) After(_ context.Context, e Event) {
	o.log.Info("request succeeded", eventFields(e)...)
}

func (o *LoggingObserver) Fail(_ context.Context, e Event) {
	o.log.Warn("request failed", append(eventFields(e), zap.String("body", truncate(e.Body, 512)))...)
}

func (o *LoggingObserver) Error(_ context.Context, e Event) {
	o.log.Error("request error", append(eventFields(e), zap.Error(e.Err))...)
}

func eventFields(e Event) []zap.Field {
	fields := []zap.Field{
		zap.String("invocation_id", e.InvocationID),
		zap.String("client", e.Client),
		zap.String("operation", e.Operation),
		zap.String("method", e.Method),
		zap.String("url", e.URL),
	}
	if e.StatusCode != 0 {
		fields = append(fields, zap.Int("status", e.StatusCode))
	}
	if e.Elapsed > 0 {
		fields = append(fields, zap.Duration("elapsed", e.Elapsed))
	}
	return fields
}
