package parser

import (
	"fmt"

	"ruparse/grammar"
	"ruparse/syntax"
)

// DiagnosticKind distinguishes print from debug output
type DiagnosticKind int

// Enumeration of diagnostic kinds
const (
	PrintDiagnostic DiagnosticKind = iota
	DebugDiagnostic
)

// Diagnostic is the output of a Print or Debug command
type Diagnostic struct {
	Kind DiagnosticKind

	// Node is the node running the command
	Node string

	// Message is the text of a print; for a debug it names what is shown
	Message string

	// Token is the token at the cursor when the command ran or the final
	// token if the stream was exhausted.  It is only nil for an empty stream.
	Token *syntax.Token

	// Value is the debugged value: a variable's value or the whole record
	Value interface{}
}

// Diagnostics receives print and debug output.  It may be called from
// attempts that are later abandoned.
type Diagnostics func(d *Diagnostic)

// Parser runs a validated grammar over token streams.  A parser holds no
// per-parse state: it can be used from multiple goroutines at once.
type Parser struct {
	prog *grammar.Program
	diag Diagnostics
}

// New creates a parser for the grammar, validating it first if necessary
func New(g *grammar.Grammar) (*Parser, error) {
	if !g.Sealed() {
		if err := g.Validate().Err(); err != nil {
			return nil, fmt.Errorf("grammar failed validation: %w", err)
		}
	}

	return &Parser{prog: g.Program()}, nil
}

// SetDiagnostics sets the sink for print and debug commands.  Without one
// their output is discarded.  It must be called before parsing starts.
func (p *Parser) SetDiagnostics(d Diagnostics) {
	p.diag = d
}

// Parse matches the entry node against the tokens.  The text is the source
// the tokens were lexed from.  Only an eof marker may follow the entry node.
func (p *Parser) Parse(tokens []*syntax.Token, text, entry string) (*ParseTree, error) {
	ndx, ok := p.prog.NodeIndex(entry)
	if !ok {
		return nil, &ParseError{Code: ErrEntry, Message: fmt.Sprintf("entry node `%s` is not defined", entry)}
	}

	r := newRun(p, tokens, text)

	root, err := r.runNode(ndx)
	if err != nil {
		if _, ok := err.(*mismatch); ok {
			return nil, r.errorAt(ErrNoMatch, r.furthest, r.expectation(r.furthest))
		}

		return nil, err
	}

	if tok := r.current(); tok != nil && !tok.IsEOF() {
		return nil, r.errorAt(ErrTrailing, r.cursor,
			fmt.Sprintf("unexpected %s after the end of `%s`", describeToken(tok, text), entry))
	}

	return &ParseTree{Root: root.(*Record), Globals: r.journal.globals}, nil
}
