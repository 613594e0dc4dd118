package lang

import (
	"fmt"

	"ruparse/grammar"
	"ruparse/parser"
	"ruparse/syntax"
)

// Language bundles everything needed to turn source text into parse trees: a
// configured lexer and a validated grammar with its parser.
type Language struct {
	Name string

	// DefaultEntry is the node parsed when no entry is specified
	DefaultEntry string

	// ImportGlobal names the global accumulating import paths (may be empty)
	ImportGlobal string

	Lexer   *syntax.Lexer
	Grammar *grammar.Grammar
	Parser  *parser.Parser

	// Warnings are the non-blocking problems found when validating the grammar
	Warnings []*grammar.ValidationWarning
}

// ValidationFailure is returned when a language's grammar fails validation
type ValidationFailure struct {
	Name   string
	Result *grammar.ValidationResult
}

func (vf *ValidationFailure) Error() string {
	return fmt.Sprintf("grammar for `%s` is invalid: %s", vf.Name, vf.Result.Err())
}

// NewLanguage creates a language from a lexer and a grammar, validating the
// grammar if it has not already been
func NewLanguage(name string, lexer *syntax.Lexer, g *grammar.Grammar) (*Language, error) {
	vr := g.Validate()
	if !vr.Pass() {
		return nil, &ValidationFailure{Name: name, Result: vr}
	}

	p, err := parser.New(g)
	if err != nil {
		return nil, err
	}

	return &Language{
		Name:     name,
		Lexer:    lexer,
		Grammar:  g,
		Parser:   p,
		Warnings: vr.Warnings,
	}, nil
}

// Parse lexes and parses text starting from the given entry node.  If entry
// is empty, the language's default entry is used.  The tokens are returned
// even when parsing fails so that errors can be located.
func (l *Language) Parse(text, entry string) (*parser.ParseTree, []*syntax.Token, error) {
	tokens, err := l.Lexer.Lex(text)
	if err != nil {
		return nil, nil, err
	}

	if entry == "" {
		entry = l.DefaultEntry
	}

	tree, err := l.Parser.Parse(tokens, text, entry)
	return tree, tokens, err
}
