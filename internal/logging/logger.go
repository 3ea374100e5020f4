// Package logging provides categorized structured logging for survkit on top
// of zap. Until Initialize (or Set) is called every logger is a no-op, so
// library callers that never configure logging pay nothing.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"survkit/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryFormula Category = "formula" // Formula parsing and rewriting
	CategoryEngine  Category = "engine"  // Engine dispatch and prediction reshaping
	CategoryConfig  Category = "config"  // Config validation and engine overrides
)

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	cfg     = config.LoggingConfig{}
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Initialize builds the process logger from config.
// verbose forces debug level regardless of the configured level.
func Initialize(lc config.LoggingConfig, verbose bool) error {
	var zc zap.Config
	if lc.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
	}

	level := zapcore.InfoLevel
	if lc.Level != "" {
		parsed, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	Set(l, lc)
	return nil
}

// Set installs l as the process logger. Tests use it with zaptest/observer.
func Set(l *zap.Logger, lc config.LoggingConfig) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	base = l
	cfg = lc
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Reset returns logging to the no-op state.
func Reset() {
	Set(nil, config.LoggingConfig{})
}

// L returns the root logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *zap.SugaredLogger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop().Sugar()
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}
	l := base.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// WithCall returns a category logger tagged with a call correlation ID.
func WithCall(category Category, callID string) *zap.SugaredLogger {
	return Get(category).With("call_id", callID)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debugf(format, args...)
}

// FormulaDebug logs debug to the formula category
func FormulaDebug(format string, args ...interface{}) {
	Get(CategoryFormula).Debugf(format, args...)
}

// Engine logs to the engine category
func Engine(format string, args ...interface{}) {
	Get(CategoryEngine).Infof(format, args...)
}

// EngineDebug logs debug to the engine category
func EngineDebug(format string, args ...interface{}) {
	Get(CategoryEngine).Debugf(format, args...)
}

// EngineWarn logs a warning to the engine category
func EngineWarn(format string, args ...interface{}) {
	Get(CategoryEngine).Warnf(format, args...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugw("operation completed", "op", t.op, "elapsed", elapsed)
	return elapsed
}
