package utils

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the JSON process logger. Unknown levels fall back to info.
func NewLogger(levelStr string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.Set(strings.ToLower(strings.TrimSpace(levelStr))); err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    encoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return cfg.Build()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(time.RFC3339Nano))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// LogEvent writes the standard module/action/request_id line.
// Keep message summarized; never pass credentials or uploaded content.
func LogEvent(logger *zap.Logger, requestID, module, action, message string, fields ...zap.Field) {
	if logger == nil {
		logger = zap.L()
	}
	base := []zap.Field{
		zap.String("module", strings.ToLower(module)),
		zap.String("action", action),
		zap.String("request_id", strings.TrimSpace(requestID)),
	}
	logger.Info(message, append(base, fields...)...)
}
