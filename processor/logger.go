package processor

import (
	"fmt"
	"os"
	"sync"
)

// Logger receives process-wide notices such as deprecation warnings.
type Logger interface {
	Warn(msg string)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(msg string)

// Warn calls f.
func (f LoggerFunc) Warn(msg string) { f(msg) }

type stderrLogger struct{}

func (stderrLogger) Warn(msg string) { fmt.Fprintln(os.Stderr, msg) }

var (
	loggerMu sync.Mutex
	logger   Logger = stderrLogger{}
)

// SetLogger replaces the process-wide logger and returns the previous one.
// A nil l restores the default, which writes to standard error.
func SetLogger(l Logger) Logger {
	if l == nil {
		l = stderrLogger{}
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	prev := logger
	logger = l
	return prev
}

func logWarn(msg string) {
	loggerMu.Lock()
	l := logger
	loggerMu.Unlock()
	l.Warn(msg)
}
