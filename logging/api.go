package logging

import (
	"fmt"
	"os"
)

// logger is a global reference to a shared Logger (initialized by the CLI, but
// separated for general usage)
var logger = newLogger(LogLevelVerbose)

// warningTotal counts the warnings flushed over the life of the process
var warningTotal int

// Initialize initializes the global logger with the provided log level
func Initialize(loglevelname string) {
	var loglevel int
	switch loglevelname {
	case "silent":
		loglevel = LogLevelSilent
	case "error":
		loglevel = LogLevelError
	case "warn", "warning":
		loglevel = LogLevelWarning
	// everything else (including invalid log levels) should default to verbose
	default:
		loglevel = LogLevelVerbose
	}

	logger = newLogger(loglevel)
	warningTotal = 0
}

// ShouldProceed indicates whether or not the log module has encountered any
// errors.  The build driver processes files concurrently and uses this as its
// error accumulator.
func ShouldProceed() bool {
	logger.m.Lock()
	defer logger.m.Unlock()

	return logger.errorCount == 0
}

// ErrorCount returns the number of errors logged so far
func ErrorCount() int {
	logger.m.Lock()
	defer logger.m.Unlock()

	return logger.errorCount
}

// WarningCount returns the number of warnings logged and not yet displayed
func WarningCount() int {
	logger.m.Lock()
	defer logger.m.Unlock()

	return len(logger.warnings)
}

// -----------------------------------------------------------------------------
// NOTE: All log functions will only display if the appropriate log level is
// set.  Most log functions will simply fail silently if below their appropriate
// log level.

// LogCompileError logs an error in the input being processed
func LogCompileError(lctx *LogContext, message string, kind int, pos *TextPosition) {
	logger.handleMsg(&CompileMessage{
		Message:  message,
		Kind:     kind,
		Position: pos,
		Context:  lctx,
		IsError:  true,
	})
}

// LogCompileWarning logs a warning about the input being processed
func LogCompileWarning(lctx *LogContext, message string, kind int, pos *TextPosition) {
	logger.handleMsg(&CompileMessage{
		Message:  message,
		Kind:     kind,
		Position: pos,
		Context:  lctx,
		IsError:  false,
	})
}

// LogConfigError logs an error related to project or grammar configuration
func LogConfigError(kind, message string) {
	logger.handleMsg(&ConfigError{Kind: kind, Message: message})
}

// LogConfigWarning logs a warning related to project or grammar configuration
func LogConfigWarning(kind, message string) {
	logger.handleMsg(&ConfigWarning{Kind: kind, Message: message})
}

// LogInfo displays an informational message if the log level is verbose
func LogInfo(tag, msg string) {
	if logger.LogLevel == LogLevelVerbose {
		logger.m.Lock()
		defer logger.m.Unlock()

		PrintInfoMessage(tag, msg)
	}
}

// LogFatal logs a fatal error that was not expected: ie. the tool did
// something it wasn't supposed to.  It exits the program.
func LogFatal(message string, args ...interface{}) {
	logger.m.Lock()
	displayFatalError(fmt.Sprintf(message, args...))
	logger.m.Unlock()

	os.Exit(1)
}

// -----------------------------------------------------------------------------
// Below are all the "aesthetic" logging functions that will only run if the
// log level is verbose.

// LogHeader displays the tool version and the grammar in use
func LogHeader(grammarPath string, caching bool) {
	if logger.LogLevel == LogLevelVerbose {
		displayHeader(grammarPath, caching)
	}
}

// LogBeginPhase starts a progress spinner for a named phase
func LogBeginPhase(phase string) {
	if logger.LogLevel == LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// LogEndPhase stops the current phase spinner
func LogEndPhase() {
	if logger.LogLevel == LogLevelVerbose {
		logger.m.Lock()
		defer logger.m.Unlock()

		displayEndPhase(logger.errorCount == 0)
	}
}

// LogFinished displays all deferred warnings followed by the closing message
func LogFinished() {
	warningTotal += logger.flushWarnings()

	if logger.LogLevel > LogLevelSilent {
		displayFinished(ShouldProceed(), ErrorCount(), warningTotal)
	}
}
