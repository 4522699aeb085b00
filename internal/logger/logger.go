package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and destination of the process logger.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json or console
	OutputPath string // file path; stdout when empty
}

// New builds a zap.Logger from cfg. Unknown levels fall back to info and
// unknown encodings to json.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	name := strings.ToLower(cfg.Level)
	if name == "" {
		name = "info"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}

	out := cfg.OutputPath
	if out == "" {
		out = "stdout"
	}

	zapConfig := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{out},
		ErrorOutputPaths:  []string{"stderr"},
	}

	l, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}
