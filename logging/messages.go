package logging

// LogContext identifies the source a compile message refers to
type LogContext struct {
	// FilePath is the path to the file being processed (used for display)
	FilePath string

	// Text is the source text of the file if it is already in memory.  If it
	// is empty, the file is reopened when a code selection is displayed.
	Text string
}

// TextPosition represents a positional range in the source text.  Lines
// start at 1 and columns are 0-indexed; EndCol is one past the last column.
type TextPosition struct {
	StartLn, StartCol int
	EndLn, EndCol     int
}

// TextPositionFromRange takes two positions and computes the text position
// spanning them
func TextPositionFromRange(start, end *TextPosition) *TextPosition {
	return &TextPosition{
		StartLn:  start.StartLn,
		StartCol: start.StartCol,
		EndLn:    end.EndLn,
		EndCol:   end.EndCol,
	}
}

// LogMessage is any message the logger can store and display
type LogMessage interface {
	display()
	isError() bool
}

// Enumeration of the different kinds of compile messages (prefix LMK)
const (
	LMKToken = iota
	LMKSyntax
	LMKGrammar
	LMKImport
)

// CompileMessage is an error or warning attached to a position in a source
// file (user-induced, bad input)
type CompileMessage struct {
	Message  string
	Kind     int
	Position *TextPosition
	Context  *LogContext
	IsError  bool
}

func (cm *CompileMessage) isError() bool {
	return cm.IsError
}

// ConfigError is an error related to project, grammar or tool configuration
type ConfigError struct {
	Kind    string
	Message string
}

func (ce *ConfigError) isError() bool {
	return true
}

// ConfigWarning is a non-fatal configuration problem (eg. a grammar warning)
type ConfigWarning struct {
	Kind    string
	Message string
}

func (cw *ConfigWarning) isError() bool {
	return false
}
