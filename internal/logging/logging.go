// Package logging builds the zap logger shared by the server and the
// terminal client.
package logging

import (
	"os"

	"github.com/ecochain/token-catalog/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config level name onto a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// New creates a JSON production logger writing to stdout. When cfg.File is
// set, entries are also written to a size-rotated file.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		zcfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
			Development:      false,
			Encoding:         encoding(cfg.Format),
			EncoderConfig:    zap.NewProductionEncoderConfig(),
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		}
		return zcfg.Build()
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	core := zapcore.NewTee(
		zapcore.NewCore(newEncoder(cfg.Format), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(newEncoder("json"), zapcore.AddSync(rotator), level),
	)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

func encoding(format string) string {
	if format == "console" {
		return "console"
	}
	return "json"
}

func newEncoder(format string) zapcore.Encoder {
	if encoding(format) == "console" {
		return zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	}
	return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
}
