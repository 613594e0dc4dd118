package syntax

import (
	"fmt"

	"ruparse/logging"
)

// PreprocessorError is a fatal lexical error: an unterminated string or
// comment or a malformed numeric literal.  It carries the offending span.
type PreprocessorError struct {
	Message string

	// Index and Len locate the offending span in the original text
	Index, Len int

	Line, Col int
}

func (pe *PreprocessorError) Error() string {
	return fmt.Sprintf("%s at line %d col %d", pe.Message, pe.Line, pe.Col+1)
}

// Position returns the text position of the offending span
func (pe *PreprocessorError) Position(src string) *logging.TextPosition {
	return SpanPosition(src, pe.Index, pe.Len, pe.Line, pe.Col)
}

// errorOver creates a preprocessor error spanning from the start of `first` to
// the end of `last`
func errorOver(first, last *Token, msg string, args ...interface{}) *PreprocessorError {
	return &PreprocessorError{
		Message: fmt.Sprintf(msg, args...),
		Index:   first.Index,
		Len:     last.Index + last.Len - first.Index,
		Line:    first.Line,
		Col:     first.Col,
	}
}
