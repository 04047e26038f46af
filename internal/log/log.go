// Package log provides the process-wide zap logger.
//
// All output goes to stderr; stdout is reserved for command output and the
// MCP stdio transport.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.Mutex
	log *zap.SugaredLogger
)

// Init initializes the package-level logger. debug selects the development
// encoder and debug level; a non-empty level (debug, info, warn, error)
// overrides the level either way.
func Init(debug bool, level string) error {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	mu.Lock()
	log = zapLogger.Sugar()
	mu.Unlock()
	return nil
}

// GetSugaredLogger returns the sugared logger instance, falling back to a
// production logger if Init was never called.
func GetSugaredLogger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		zapLogger, err := zap.NewProduction()
		if err != nil {
			return zap.NewNop().Sugar()
		}
		log = zapLogger.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
}
