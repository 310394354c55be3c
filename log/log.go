// Package log builds the zap loggers used by agewitness components.
package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// where logs go by default.
var logWriter io.Writer = os.Stdout

var (
	mu      sync.RWMutex
	jsonLog bool
)

// JSONLog turns JSON format on or off.
func JSONLog(b bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonLog = b
}

// DefaultLevel returns the level used by modules without an explicit configuration.
func DefaultLevel() zapcore.Level {
	return zapcore.InfoLevel
}

func encoder() zapcore.Encoder {
	mu.RLock()
	defer mu.RUnlock()
	if jsonLog {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
}

// NewNop creates silent logger.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

// NewWithLevel creates a logger with a fixed level and with a set of (optional) hooks.
func NewWithLevel(module string, level zap.AtomicLevel, hooks ...func(zapcore.Entry) error) *zap.Logger {
	return NewWithWriter(logWriter, module, level, hooks...)
}

// NewWithWriter is NewWithLevel writing to w.
func NewWithWriter(w io.Writer, module string, level zap.AtomicLevel, hooks ...func(zapcore.Entry) error) *zap.Logger {
	core := zapcore.NewCore(encoder(), zapcore.AddSync(w), level)
	return zap.New(zapcore.RegisterHooks(core, hooks...)).Named(module)
}

// Levels keeps one atomic level per module so that levels can be changed at runtime.
//
// This type is not safe for concurrent use.
type Levels struct {
	root   *zap.Logger
	levels map[string]zap.AtomicLevel
}

// NewLevels wraps root logger. Root logger must be created with the lowest level
// any module might need, child loggers can only be more restrictive.
func NewLevels(root *zap.Logger) *Levels {
	return &Levels{root: root, levels: map[string]zap.AtomicLevel{}}
}

// Named returns a logger for module with the given level.
func (l *Levels) Named(module string, lvl zapcore.Level) *zap.Logger {
	level := zap.NewAtomicLevelAt(lvl)
	l.levels[module] = level
	return l.root.Named(module).WithOptions(zap.IncreaseLevel(level))
}

// Level returns the current level of module.
func (l *Levels) Level(module string) (zapcore.Level, bool) {
	lvl, ok := l.levels[module]
	if !ok {
		return 0, false
	}
	return lvl.Level(), true
}

// SetLevel updates the level of an existing module logger.
func (l *Levels) SetLevel(module, level string) error {
	lvl, ok := l.levels[module]
	if !ok {
		return &UnknownModuleError{Module: module}
	}
	return lvl.UnmarshalText([]byte(level))
}

// UnknownModuleError is returned when a logger for a module was never created.
type UnknownModuleError struct {
	Module string
}

func (e *UnknownModuleError) Error() string {
	return "cannot find logger " + e.Module
}
