package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log field keys written by NewLogger and read back by logtail.
const (
	TimeKey    = "ts"
	LevelKey   = "level"
	MessageKey = "msg"
	LoggerKey  = "logger"
)

// NewLogger opens path for appending and returns a JSON logger writing to it
// at the given level. The returned close func syncs and closes the file.
func NewLogger(path, level string) (*zap.Logger, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := zap.New(
		zapcore.NewCore(zapcore.NewJSONEncoder(EncoderConfig()), zapcore.AddSync(file), lvl),
		zap.AddCaller(),
	).Named("bookdash")

	closeFn := func() error {
		_ = logger.Sync()
		return file.Close()
	}
	return logger, closeFn, nil
}

// EncoderConfig is the JSON layout shared by the file logger and tests.
func EncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = TimeKey
	cfg.LevelKey = LevelKey
	cfg.MessageKey = MessageKey
	cfg.NameKey = LoggerKey
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// ParseLevel maps a config string such as "debug" or "WARN" to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	trimmed := strings.TrimSpace(level)
	if trimmed == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(trimmed))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return lvl, nil
}
