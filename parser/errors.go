package parser

import (
	"fmt"

	"ruparse/logging"
	"ruparse/syntax"
)

// ErrorCode classifies parse errors
type ErrorCode int

// Enumeration of parse error codes
const (
	ErrNoMatch     ErrorCode = iota // the entry node did not match
	ErrTrailing                     // input remained after the entry node
	ErrCommitted                    // a committed node failed
	ErrLoopStalled                  // a loop or backward goto made no progress
	ErrRecursion                    // a node re-entered itself without progress
	ErrEntry                        // the entry node does not exist
)

var errorCodeNames = map[ErrorCode]string{
	ErrNoMatch:     "no match",
	ErrTrailing:    "trailing input",
	ErrCommitted:   "committed",
	ErrLoopStalled: "loop stalled",
	ErrRecursion:   "left recursion",
	ErrEntry:       "bad entry",
}

func (ec ErrorCode) String() string {
	return errorCodeNames[ec]
}

// ParseError is the error returned when a parse fails
type ParseError struct {
	Code    ErrorCode
	Message string

	// Token is the offending token; it is nil for ErrEntry and for errors at
	// the end of a stream with no eof marker
	Token *syntax.Token

	Position *logging.TextPosition

	// Len is the byte length of the offending token
	Len int
}

func (pe *ParseError) Error() string {
	if pe.Position == nil {
		return pe.Message
	}

	return fmt.Sprintf("%s at line %d col %d", pe.Message, pe.Position.StartLn, pe.Position.StartCol+1)
}

// Fatal reports whether the error is a hard failure (a commit or a grammar
// that cannot make progress) rather than input that simply did not match
func (pe *ParseError) Fatal() bool {
	switch pe.Code {
	case ErrCommitted, ErrLoopStalled, ErrRecursion:
		return true
	}

	return false
}

// mismatch is the recoverable outcome of a rule that did not match.  It never
// escapes the parser.
type mismatch struct {
	at int
}

func (m *mismatch) Error() string {
	return fmt.Sprintf("no match at token %d", m.at)
}

// describeToken renders a token for error messages
func describeToken(tok *syntax.Token, src string) string {
	switch {
	case tok == nil || tok.IsEOF():
		return "end of file"
	case tok.Is(syntax.Control, syntax.EOL):
		return "end of line"
	case tok.Kind.Class == syntax.Complex:
		return fmt.Sprintf("%s `%s`", tok.Kind.Name, tok.Text(src))
	case tok.Kind.Class == syntax.Symbol:
		return fmt.Sprintf("symbol `%s`", tok.Text(src))
	default:
		return fmt.Sprintf("`%s`", tok.Text(src))
	}
}
