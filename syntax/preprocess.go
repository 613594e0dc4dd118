package syntax

import "unicode"

// Preprocessor is a single token-reclassification pass.  Passes receive the
// original text so they can inspect token contents; they return a new token
// slice and must not modify the tokens they are given.
type Preprocessor func(text string, tokens []*Token) ([]*Token, error)

// passes lists the built-in passes by the names grammar files use for them
var passes = map[string]Preprocessor{
	"standard":         StandardPass,
	"strip-whitespace": StripWhitespacePass,
}

// PassByName looks up a built-in preprocessor pass
func PassByName(name string) (Preprocessor, bool) {
	p, ok := passes[name]
	return p, ok
}

// StripWhitespacePass drops all whitespace and end-of-line tokens
func StripWhitespacePass(text string, tokens []*Token) ([]*Token, error) {
	out := make([]*Token, 0, len(tokens))

	for _, tok := range tokens {
		if tok.Kind.Class == Whitespace || tok.Is(Control, EOL) {
			continue
		}

		out = append(out, tok)
	}

	return out, nil
}

// StandardPass folds numeric literals, string and character literals and
// comments into complex tokens and drops whitespace and line endings.  It
// requires every symbol in StandardSymbols to be in the lexer's symbol table.
func StandardPass(text string, tokens []*Token) ([]*Token, error) {
	f := &folder{text: text, tokens: tokens, out: make([]*Token, 0, len(tokens))}

	for f.ndx < len(tokens) {
		if err := f.foldNext(); err != nil {
			return nil, err
		}
	}

	return f.out, nil
}

// folder holds the state of a single run of the standard pass
type folder struct {
	text   string
	tokens []*Token
	out    []*Token

	// ndx is the index of the next token to consider
	ndx int
}

func (f *folder) foldNext() error {
	tok := f.tokens[f.ndx]

	switch {
	case tok.Kind.Class == Whitespace || tok.Is(Control, EOL):
		f.ndx++
	case tok.Kind.Class == Word:
		return f.foldWord()
	case tok.Is(Symbol, `"`):
		return f.foldQuoted(StringKind)
	case tok.Is(Symbol, "'"):
		return f.foldQuoted(CharKind)
	case tok.Is(Symbol, "//"):
		return f.foldComment()
	default:
		f.out = append(f.out, tok)
		f.ndx++
	}

	return nil
}

// peek returns the token `offset` tokens ahead of the current one or nil
func (f *folder) peek(offset int) *Token {
	if f.ndx+offset < len(f.tokens) {
		return f.tokens[f.ndx+offset]
	}

	return nil
}

// emit appends a complex token spanning from `first` to the end of `last`
func (f *folder) emit(name string, first, last *Token) {
	f.out = append(f.out, &Token{
		Kind:  TokenKind{Class: Complex, Name: name},
		Index: first.Index,
		Len:   last.Index + last.Len - first.Index,
		Line:  first.Line,
		Col:   first.Col,
	})
}

var numericSuffixes = map[byte]string{
	'u': UintKind,
	'i': IntKind,
	'f': FloatKind,
	'c': CharKind,
}

func (f *folder) foldWord() error {
	tok := f.tokens[f.ndx]
	text := tok.Text(f.text)

	digits := leadingDigits(text)
	if digits == 0 || len(text)-digits > 1 {
		// not a numeric literal
		f.out = append(f.out, tok)
		f.ndx++
		return nil
	}

	kind := IntKind
	suffixed := digits < len(text)
	if suffixed {
		suffix := text[digits]
		if !unicode.IsLetter(rune(suffix)) {
			f.out = append(f.out, tok)
			f.ndx++
			return nil
		}

		var ok bool
		if kind, ok = numericSuffixes[suffix]; !ok {
			return errorOver(tok, tok, "malformed numeric literal: unknown suffix `%c`", suffix)
		}
	}

	dot := f.peek(1)
	if dot == nil || !dot.Is(Symbol, ".") {
		f.emit(kind, tok, tok)
		f.ndx++
		return nil
	}

	frac := f.peek(2)
	fracIsDigits := frac != nil && frac.Kind.Class == Word && leadingDigits(frac.Text(f.text)) == frac.Len

	if suffixed {
		if fracIsDigits {
			return errorOver(tok, frac, "numeric suffix must end the literal")
		}

		f.emit(kind, tok, tok)
		f.ndx++
		return nil
	}

	switch {
	case fracIsDigits:
		f.emit(FloatKind, tok, frac)
		f.ndx += 3
	case frac != nil && frac.Kind.Class == Word:
		// member access on an integer: leave the dot for the grammar
		f.emit(IntKind, tok, tok)
		f.ndx++
	default:
		f.emit(FloatKind, tok, dot)
		f.ndx += 2
	}

	return nil
}

// leadingDigits counts the ASCII digits at the start of s
func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}

	return n
}

func (f *folder) foldQuoted(kind string) error {
	open := f.tokens[f.ndx]
	quote := open.Kind.Name

	escapes := 0
	for j := f.ndx + 1; j < len(f.tokens); j++ {
		tok := f.tokens[j]

		if tok.Is(Symbol, quote) && escapes%2 == 0 {
			f.emit(kind, open, tok)
			f.ndx = j + 1
			return nil
		}

		if tok.Is(Symbol, `\`) {
			escapes++
		} else {
			escapes = 0
		}
	}

	return errorOver(open, f.tokens[len(f.tokens)-1], "expected a closing quote")
}

func (f *folder) foldComment() error {
	open := f.tokens[f.ndx]

	end := -1
	for j := f.ndx + 1; j < len(f.tokens); j++ {
		if f.tokens[j].Kind.Class == Control {
			end = j
			break
		}
	}

	if end == -1 {
		return errorOver(open, f.tokens[len(f.tokens)-1], "unterminated comment")
	}

	// a third slash directly after `//` makes this a doc comment
	if slash := f.peek(1); slash != nil && slash.Is(Symbol, "/") && slash.Index == open.Index+open.Len {
		start, stop := slash.Index+slash.Len, f.tokens[end].Index
		if stop > start && f.text[stop-1] == '\r' {
			stop--
		}

		f.out = append(f.out, &Token{
			Kind:  TokenKind{Class: Complex, Name: DocCommentKind},
			Index: start,
			Len:   stop - start,
			Line:  slash.Line,
			Col:   slash.Col + 1,
		})
	}

	// the terminator is handled by the main loop: eol is dropped, eof is kept
	f.ndx = end
	return nil
}
