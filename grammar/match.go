package grammar

import (
	"fmt"

	"ruparse/syntax"
)

// MatchKind is the kind of a match token
type MatchKind int

// Enumeration of match kinds.  The zero kind marks a missing token.
const (
	MatchNone       MatchKind = iota
	MatchWord                 // a word with exactly the given text
	MatchSymbol               // a symbol from the lexer's symbol table
	MatchComplex              // a token reclassified by a preprocessor pass
	MatchText                 // any word
	MatchControl              // an `eof` or `eol` marker
	MatchNode                 // a nested node invocation
	MatchEnumerator           // the first matching value of an enumerator
)

// MatchToken describes what a rule expects to find at the cursor
type MatchToken struct {
	Kind MatchKind
	Name string
}

// Word matches a word with exactly the given text
func Word(text string) MatchToken {
	return MatchToken{Kind: MatchWord, Name: text}
}

// Symbol matches the given symbol
func Symbol(sym string) MatchToken {
	return MatchToken{Kind: MatchSymbol, Name: sym}
}

// ComplexToken matches a complex token of the given class (eg. `string`)
func ComplexToken(name string) MatchToken {
	return MatchToken{Kind: MatchComplex, Name: name}
}

// Text matches any word
func Text() MatchToken {
	return MatchToken{Kind: MatchText}
}

// EOF matches the end-of-file marker
func EOF() MatchToken {
	return MatchToken{Kind: MatchControl, Name: syntax.EOF}
}

// EOL matches an end-of-line marker (only present without the standard pass)
func EOL() MatchToken {
	return MatchToken{Kind: MatchControl, Name: syntax.EOL}
}

// NodeRef matches the named node
func NodeRef(name string) MatchToken {
	return MatchToken{Kind: MatchNode, Name: name}
}

// EnumRef matches the named enumerator
func EnumRef(name string) MatchToken {
	return MatchToken{Kind: MatchEnumerator, Name: name}
}

// IsTerminal reports whether the match token matches a single lexical token
func (m MatchToken) IsTerminal() bool {
	return m.Kind != MatchNode && m.Kind != MatchEnumerator && m.Kind != MatchNone
}

// MatchesToken tests a terminal match token against a lexical token
func (m MatchToken) MatchesToken(tok *syntax.Token, src string) bool {
	if tok == nil {
		return false
	}

	switch m.Kind {
	case MatchWord:
		return tok.Kind.Class == syntax.Word && tok.Text(src) == m.Name
	case MatchSymbol:
		return tok.Is(syntax.Symbol, m.Name)
	case MatchComplex:
		return tok.Is(syntax.Complex, m.Name)
	case MatchText:
		return tok.Kind.Class == syntax.Word
	case MatchControl:
		return tok.Is(syntax.Control, m.Name)
	}

	return false
}

func (m MatchToken) String() string {
	switch m.Kind {
	case MatchWord:
		return fmt.Sprintf("`%s`", m.Name)
	case MatchSymbol:
		return fmt.Sprintf("symbol `%s`", m.Name)
	case MatchComplex:
		return m.Name
	case MatchText:
		return "word"
	case MatchControl:
		if m.Name == syntax.EOF {
			return "end of file"
		}

		return "end of line"
	case MatchNode:
		return fmt.Sprintf("node `%s`", m.Name)
	case MatchEnumerator:
		return fmt.Sprintf("enumerator `%s`", m.Name)
	}

	return "nothing"
}
