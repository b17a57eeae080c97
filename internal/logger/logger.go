package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process-wide zap logger. Level and encoding come from
// PORTAL_LOG_LEVEL and PORTAL_LOG_FORMAT; production JSON is the default.
func Init(level, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	return cfg.Build()
}
