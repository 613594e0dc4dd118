package syntax

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// StandardSymbols are the symbols the standard pass relies on: they must be in
// the symbol table of any lexer using StandardPass
var StandardSymbols = []string{`"`, `'`, "//", "/", `\`, "."}

// Lexer splits raw text into tokens using a fixed symbol table and then runs
// the tokens through its preprocessor pipeline.  A lexer is configured once;
// after that Lex can be called from any number of goroutines.
type Lexer struct {
	// symbols sorted longest first so the first hit is the longest match
	symbols []string

	// byFirst indexes the sorted symbols by their first byte
	byFirst map[byte][]string

	passes []Preprocessor
}

// NewLexer creates a lexer with an empty symbol table and no passes
func NewLexer() *Lexer {
	return &Lexer{byFirst: make(map[byte][]string)}
}

// AddSymbols adds symbols to the symbol table.  Duplicates and empty strings
// are ignored.
func (l *Lexer) AddSymbols(symbols ...string) {
	for _, sym := range symbols {
		if sym == "" || l.hasSymbol(sym) {
			continue
		}

		l.symbols = append(l.symbols, sym)
	}

	sort.SliceStable(l.symbols, func(i, j int) bool {
		return len(l.symbols[i]) > len(l.symbols[j])
	})

	l.byFirst = make(map[byte][]string)
	for _, sym := range l.symbols {
		l.byFirst[sym[0]] = append(l.byFirst[sym[0]], sym)
	}
}

func (l *Lexer) hasSymbol(sym string) bool {
	for _, s := range l.symbols {
		if s == sym {
			return true
		}
	}

	return false
}

// Symbols returns the symbol table, longest symbols first
func (l *Lexer) Symbols() []string {
	return append([]string(nil), l.symbols...)
}

// AddPass appends a preprocessor pass to the pipeline
func (l *Lexer) AddPass(p Preprocessor) {
	l.passes = append(l.passes, p)
}

// Lex tokenizes the text and runs every pass in order.  If any pass fails, the
// error is returned and no tokens are.
func (l *Lexer) Lex(text string) ([]*Token, error) {
	tokens := l.Scan(text)

	for _, pass := range l.passes {
		next, err := pass(text, tokens)
		if err != nil {
			return nil, err
		}

		tokens = next
	}

	return tokens, nil
}

// Scan performs the primary scan only: symbols, words, whitespace, and
// end-of-line markers followed by a single end-of-file marker
func (l *Lexer) Scan(text string) []*Token {
	var tokens []*Token
	line, col := 1, 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		tok := &Token{Index: i, Line: line, Col: col}

		switch {
		case r == '\n':
			tok.Kind = TokenKind{Class: Control, Name: EOL}
			tok.Len = size
		case unicode.IsSpace(r):
			tok.Kind = TokenKind{Class: Whitespace}
			tok.Len = l.scanWhile(text, i, func(r rune, _ int) bool {
				return r != '\n' && unicode.IsSpace(r)
			})
		default:
			if n := l.matchSymbol(text, i); n > 0 {
				tok.Kind = TokenKind{Class: Symbol, Name: text[i : i+n]}
				tok.Len = n
			} else {
				tok.Kind = TokenKind{Class: Word}
				tok.Len = l.scanWhile(text, i, func(r rune, at int) bool {
					return !unicode.IsSpace(r) && l.matchSymbol(text, at) == 0
				})
			}
		}

		tokens = append(tokens, tok)
		i += tok.Len

		// line and column counting happens after the token is built so that the
		// token carries the position of its first rune
		if tok.Kind.Class == Control {
			line++
			col = 0
		} else {
			col += runeCount(text[tok.Index:i])
		}
	}

	return append(tokens, &Token{
		Kind:  TokenKind{Class: Control, Name: EOF},
		Index: len(text),
		Line:  line,
		Col:   col,
	})
}

// matchSymbol returns the length of the longest symbol matching at the given
// offset or 0 if there is none
func (l *Lexer) matchSymbol(text string, at int) int {
	for _, sym := range l.byFirst[text[at]] {
		if len(text)-at >= len(sym) && text[at:at+len(sym)] == sym {
			return len(sym)
		}
	}

	return 0
}

// scanWhile returns the byte length of the run starting at `from` (which is
// always included) for which the predicate holds
func (l *Lexer) scanWhile(text string, from int, pred func(rune, int) bool) int {
	_, size := utf8.DecodeRuneInString(text[from:])
	i := from + size

	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !pred(r, i) {
			break
		}

		i += size
	}

	return i - from
}
