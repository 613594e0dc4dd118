package logging

import (
	"sync"
)

// Logger is a type that is responsible for storing and logging output from the
// tool as necessary
type Logger struct {
	errorCount int
	LogLevel   int

	// warnings is a list of all warnings to be logged at the end of a run
	warnings []LogMessage

	// m is the mutex used to synchonize the printing of messages
	m *sync.Mutex
}

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and closing notification (success/fail)
	LogLevelWarning        // errors, warnings, and closing message
	LogLevelVerbose        // errors, warnings, phase progress, closing message (DEFAULT)
)

// newLogger creates a new logger struct
func newLogger(loglevel int) *Logger {
	return &Logger{
		LogLevel: loglevel,
		m:        &sync.Mutex{},
	}
}

// handleMsg prompts to logger to process a message -- messages can come in
// concurrently from the build driver so printing is guarded by a mutex
func (l *Logger) handleMsg(lm LogMessage) {
	l.m.Lock()
	defer l.m.Unlock()

	if lm.isError() {
		l.errorCount++

		if l.LogLevel > LogLevelSilent {
			displayEndPhase(false)
			lm.display()
		}
	} else {
		l.warnings = append(l.warnings, lm)
	}
}

// flushWarnings displays all stored warnings (if the log level allows it) and
// returns how many there were
func (l *Logger) flushWarnings() int {
	l.m.Lock()
	defer l.m.Unlock()

	count := len(l.warnings)
	if l.LogLevel >= LogLevelWarning {
		for _, w := range l.warnings {
			w.display()
		}
	}

	l.warnings = nil
	return count
}
