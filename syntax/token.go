package syntax

import (
	"unicode/utf8"

	"ruparse/logging"
)

// TokenClass is the broad class of a token: what produced it
type TokenClass int

// The classes of tokens produced by the lexer and its preprocessor passes
const (
	Symbol     TokenClass = iota // literal symbol from the symbol table
	Word                         // generic run of non-symbol, non-space runes
	Whitespace                   // run of non-newline whitespace
	Control                      // end-of-line or end-of-file marker
	Complex                      // class assigned by a preprocessor pass
)

var tokenClassNames = map[TokenClass]string{
	Symbol:     "symbol",
	Word:       "word",
	Whitespace: "whitespace",
	Control:    "control",
	Complex:    "complex",
}

func (c TokenClass) String() string {
	return tokenClassNames[c]
}

// Names of the control markers
const (
	EOL = "eol"
	EOF = "eof"
)

// Names of the complex kinds produced by the standard pass
const (
	StringKind     = "string"
	CharKind       = "char"
	IntKind        = "int"
	UintKind       = "uint"
	FloatKind      = "float"
	DocCommentKind = "doc_comment"
)

// TokenKind is the full kind of a token.  Name is the symbol text for
// symbols, the marker name for control tokens and the class name for complex
// tokens; it is empty for words and whitespace.
type TokenKind struct {
	Class TokenClass
	Name  string
}

func (k TokenKind) String() string {
	if k.Name == "" {
		return k.Class.String()
	}

	return k.Class.String() + " `" + k.Name + "`"
}

// Token represents a token read in by the lexer.  Tokens are immutable once
// produced: passes build new tokens rather than modifying old ones.
type Token struct {
	Kind TokenKind

	// Index and Len are byte offsets into the original text
	Index, Len int

	// Line is the line number starting at 1
	Line int

	// Col is the 0-indexed column counted in runes
	Col int
}

// Text recovers the token's text from the original source
func (t *Token) Text(src string) string {
	if t.Index+t.Len > len(src) {
		return ""
	}

	return src[t.Index : t.Index+t.Len]
}

// Is tests whether the token has the given class and name
func (t *Token) Is(class TokenClass, name string) bool {
	return t.Kind.Class == class && t.Kind.Name == name
}

// IsEOF tests whether the token is the end-of-file marker
func (t *Token) IsEOF() bool {
	return t.Is(Control, EOF)
}

// Position returns the text position spanned by the token
func (t *Token) Position(src string) *logging.TextPosition {
	return SpanPosition(src, t.Index, t.Len, t.Line, t.Col)
}

// SpanPosition computes the text position of a span of the source that begins
// at the given line and column.  Spans may cross lines (eg. string literals).
func SpanPosition(src string, index, length, line, col int) *logging.TextPosition {
	pos := &logging.TextPosition{StartLn: line, StartCol: col, EndLn: line, EndCol: col}

	if index < 0 || index+length > len(src) {
		pos.EndCol += length
		return pos
	}

	for _, r := range src[index : index+length] {
		if r == '\n' {
			pos.EndLn++
			pos.EndCol = 0
		} else {
			pos.EndCol++
		}
	}

	return pos
}

// runeCount is used to advance columns over multi-byte text
func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
