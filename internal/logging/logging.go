// Package logging provides namespaced, level-gated logging for tsuzulint
// components, in the style of the indexing engine's debug helpers.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var (
	mu         sync.Mutex
	output     io.Writer = os.Stderr
	minLevel   Level     = LevelInfo
	namespaces           = map[string]bool{}
)

// SetOutput changes the writer all loggers write to. Passing nil disables
// output entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetMinLevel sets the minimum level that is emitted.
func SetMinLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// EnableNamespace turns on verbose (debug-level) logging for a specific
// component namespace regardless of the global minimum level.
func EnableNamespace(ns string) {
	mu.Lock()
	defer mu.Unlock()
	namespaces[ns] = true
}

// DisableNamespace reverts EnableNamespace.
func DisableNamespace(ns string) {
	mu.Lock()
	defer mu.Unlock()
	delete(namespaces, ns)
}

func enabled(ns string, l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	if output == nil {
		return false
	}
	if namespaces[ns] {
		return true
	}
	return l >= minLevel
}

func write(ns string, l Level, format string, args []any) {
	if !enabled(ns, l) {
		return
	}
	mu.Lock()
	w := output
	mu.Unlock()
	if w == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(w, "[%s:%s] %s\n", l, ns, msg)
}

// Logger is a namespace-bound logging handle, mirroring the Log(component,...)
// helper pattern but scoped once per component at construction time.
type Logger struct {
	ns string
}

// New returns a Logger scoped to the given component namespace, e.g. "cache",
// "scheduler", "pluginhost".
func New(namespace string) *Logger {
	return &Logger{ns: namespace}
}

func (l *Logger) Debugf(format string, args ...any) { write(l.ns, LevelDebug, format, args) }
func (l *Logger) Infof(format string, args ...any)  { write(l.ns, LevelInfo, format, args) }
func (l *Logger) Warnf(format string, args ...any)  { write(l.ns, LevelWarn, format, args) }
func (l *Logger) Errorf(format string, args ...any) { write(l.ns, LevelError, format, args) }
