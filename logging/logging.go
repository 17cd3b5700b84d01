package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the production logger used for launcher lifecycle events.
func New(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parsed)

	return config.Build()
}

// NewStreamLogger returns a logger that writes each message verbatim to ws,
// with no timestamp, level or caller.
func NewStreamLogger(ws zapcore.WriteSyncer) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})

	return zap.New(zapcore.NewCore(encoder, zapcore.Lock(ws), zapcore.DebugLevel))
}
