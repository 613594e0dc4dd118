package syntax

import (
	"errors"
	"strings"
	"testing"
)

func standardLexer() *Lexer {
	l := NewLexer()
	l.AddSymbols(StandardSymbols...)
	l.AddSymbols(",", ";", "(", ")", "==", "=")
	l.AddPass(StandardPass)
	return l
}

// describe renders tokens as `kind:text` pairs separated by spaces
func describe(src string, tokens []*Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		switch tok.Kind.Class {
		case Control:
			parts[i] = tok.Kind.Name
		case Complex:
			parts[i] = tok.Kind.Name + ":" + tok.Text(src)
		default:
			parts[i] = tok.Kind.Class.String() + ":" + tok.Text(src)
		}
	}

	return strings.Join(parts, " ")
}

func TestScanClasses(t *testing.T) {
	l := NewLexer()
	l.AddSymbols("=", "==", "(")

	src := "a == b\n\t(c=d"
	expected := "word:a whitespace:  symbol:== whitespace:  word:b eol whitespace:\t symbol:( word:c symbol:= word:d eof"
	if got := describe(src, l.Scan(src)); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestScanPositions(t *testing.T) {
	l := NewLexer()
	src := "ab cd\n  éf g"
	tokens := l.Scan(src)

	samples := []struct {
		text      string
		line, col int
	}{
		{"ab", 1, 0},
		{"cd", 1, 3},
		{"éf", 2, 2},
		{"g", 2, 5},
	}

	for _, s := range samples {
		found := false
		for _, tok := range tokens {
			if tok.Text(src) == s.text {
				found = true
				if tok.Line != s.line || tok.Col != s.col {
					t.Fatalf("%q: expected %d:%d, got %d:%d", s.text, s.line, s.col, tok.Line, tok.Col)
				}
			}
		}

		if !found {
			t.Fatalf("token %q not found", s.text)
		}
	}

	last := tokens[len(tokens)-1]
	if !last.IsEOF() || last.Index != len(src) || last.Len != 0 {
		t.Fatalf("expected trailing eof at %d, got %v at %d", len(src), last.Kind, last.Index)
	}
}

func TestSymbolsDeduplicated(t *testing.T) {
	l := NewLexer()
	l.AddSymbols("=", "==", "=", "")
	l.AddSymbols("==")

	syms := l.Symbols()
	if len(syms) != 2 || syms[0] != "==" || syms[1] != "=" {
		t.Fatalf("expected [== =], got %v", syms)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, src := range []string{"", " ", "\n\n", " \t\r\n "} {
		tokens, err := standardLexer().Lex(src)
		if err != nil {
			t.Fatalf("source %q: unexpected error %s", src, err)
		}

		if len(tokens) != 1 || !tokens[0].IsEOF() {
			t.Fatalf("source %q: expected only eof, got %q", src, describe(src, tokens))
		}
	}
}

func TestNumericFolding(t *testing.T) {
	samples := []struct {
		src, kind string
		length    int
	}{
		{"123", IntKind, 3},
		{"123.456", FloatKind, 7},
		{"123.", FloatKind, 4},
		{"123u", UintKind, 4},
		{"7i", IntKind, 2},
		{"2f", FloatKind, 2},
		{"65c", CharKind, 3},
	}

	for _, s := range samples {
		tokens, err := standardLexer().Lex(s.src)
		if err != nil {
			t.Fatalf("%q: unexpected error %s", s.src, err)
		}

		if len(tokens) != 2 {
			t.Fatalf("%q: expected one token and eof, got %q", s.src, describe(s.src, tokens))
		}

		tok := tokens[0]
		if tok.Kind.Class != Complex || tok.Kind.Name != s.kind || tok.Len != s.length {
			t.Fatalf("%q: expected %s of length %d, got %v of length %d", s.src, s.kind, s.length, tok.Kind, tok.Len)
		}
	}
}

func TestNumericEdges(t *testing.T) {
	samples := []struct{ src, expected string }{
		{"5.foo", "int:5 symbol:. word:foo eof"},
		{"5.)", "float:5. symbol:) eof"},
		{"1 . 2", "int:1 symbol:. int:2 eof"},
		{"12ab", "word:12ab eof"},
		{"x1", "word:x1 eof"},
		{"3u.x", "uint:3u symbol:. word:x eof"},
	}

	for _, s := range samples {
		tokens, err := standardLexer().Lex(s.src)
		if err != nil {
			t.Fatalf("%q: unexpected error %s", s.src, err)
		}

		if got := describe(s.src, tokens); got != s.expected {
			t.Fatalf("%q: expected %q, got %q", s.src, s.expected, got)
		}
	}
}

func TestNumericErrors(t *testing.T) {
	samples := []struct{ src, message string }{
		{"12z", "malformed numeric literal"},
		{"12u.5", "numeric suffix must end the literal"},
	}

	for _, s := range samples {
		tokens, err := standardLexer().Lex(s.src)
		if tokens != nil {
			t.Fatalf("%q: expected no tokens on error", s.src)
		}

		var pe *PreprocessorError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: expected a preprocessor error, got %v", s.src, err)
		}

		if !strings.Contains(pe.Message, s.message) || pe.Index != 0 {
			t.Fatalf("%q: expected %q at 0, got %q at %d", s.src, s.message, pe.Message, pe.Index)
		}
	}
}

func TestStringFolding(t *testing.T) {
	src := `x = "a \" b" + 'c'`
	tokens, err := standardLexer().Lex(src)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	expected := `word:x symbol:= string:"a \" b" word:+ char:'c' eof`
	if got := describe(src, tokens); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestEscapedBackslash(t *testing.T) {
	src := `"a\\" b`
	tokens, err := standardLexer().Lex(src)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	expected := `string:"a\\" word:b eof`
	if got := describe(src, tokens); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestUnterminatedString(t *testing.T) {
	src := "a \"bc\nd"
	_, err := standardLexer().Lex(src)

	pe, ok := err.(*PreprocessorError)
	if !ok {
		t.Fatalf("expected a preprocessor error, got %v", err)
	}

	if pe.Message != "expected a closing quote" || pe.Index != 2 || pe.Index+pe.Len != len(src) {
		t.Fatalf("unexpected error %q spanning %d+%d", pe.Message, pe.Index, pe.Len)
	}

	pos := pe.Position(src)
	if pos.StartLn != 1 || pos.StartCol != 2 || pos.EndLn != 2 || pos.EndCol != 1 {
		t.Fatalf("unexpected position %+v", *pos)
	}
}

func TestComments(t *testing.T) {
	samples := []struct{ src, expected string }{
		{"// x\n", "eof"},
		{"a // \"not a string\nb", "word:a word:b eof"},
		{"a // trailing", "word:a eof"},
		{"\"// kept\"", `string:"// kept" eof`},
		{"/// x\n", "doc_comment: x eof"},
		{"/// docs\nnode", "doc_comment: docs word:node eof"},
		{"/// x\r\n", "doc_comment: x eof"},
		{"///\r\n", "doc_comment: eof"},
		{"// / not docs\n", "eof"},
	}

	for _, s := range samples {
		tokens, err := standardLexer().Lex(s.src)
		if err != nil {
			t.Fatalf("%q: unexpected error %s", s.src, err)
		}

		if got := describe(s.src, tokens); got != s.expected {
			t.Fatalf("%q: expected %q, got %q", s.src, s.expected, got)
		}
	}
}

func TestDocCommentPosition(t *testing.T) {
	src := "a\n/// x\n"
	tokens, err := standardLexer().Lex(src)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	doc := tokens[1]
	if doc.Text(src) != " x" || doc.Line != 2 || doc.Col != 3 {
		t.Fatalf("expected doc comment ` x` at 2:3, got %q at %d:%d", doc.Text(src), doc.Line, doc.Col)
	}
}

func TestUnterminatedComment(t *testing.T) {
	// without an eof marker the comment scan has nothing to stop on
	l := NewLexer()
	l.AddSymbols(StandardSymbols...)
	tokens := l.Scan("// x")

	_, err := StandardPass("// x", tokens[:len(tokens)-1])
	if pe, ok := err.(*PreprocessorError); !ok || pe.Message != "unterminated comment" {
		t.Fatalf("expected unterminated comment error, got %v", err)
	}
}

func TestPassOrder(t *testing.T) {
	var seen []string
	record := func(name string) Preprocessor {
		return func(text string, tokens []*Token) ([]*Token, error) {
			seen = append(seen, name)
			return tokens, nil
		}
	}

	fail := errors.New("stop")
	l := NewLexer()
	l.AddPass(record("first"))
	l.AddPass(record("second"))
	l.AddPass(func(string, []*Token) ([]*Token, error) { return nil, fail })
	l.AddPass(record("never"))

	if _, err := l.Lex("x"); err != fail {
		t.Fatalf("expected the failing pass's error, got %v", err)
	}

	if strings.Join(seen, ",") != "first,second" {
		t.Fatalf("unexpected pass order %v", seen)
	}
}

func TestPassByName(t *testing.T) {
	for _, name := range []string{"standard", "strip-whitespace"} {
		if _, ok := PassByName(name); !ok {
			t.Fatalf("pass %q not registered", name)
		}
	}

	if _, ok := PassByName("nope"); ok {
		t.Fatalf("unexpected pass `nope`")
	}

	l := NewLexer()
	p, _ := PassByName("strip-whitespace")
	l.AddPass(p)

	src := " a \n b "
	tokens, _ := l.Lex(src)
	if got := describe(src, tokens); got != "word:a word:b eof" {
		t.Fatalf("unexpected tokens %q", got)
	}
}
