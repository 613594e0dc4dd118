package parser

import (
	"fmt"
	"strings"

	"ruparse/grammar"
	"ruparse/logging"
	"ruparse/syntax"
)

// run is the state of a single parse
type run struct {
	p      *Parser
	tokens []*syntax.Token
	src    string

	cursor int
	frames []*frame

	journal *journal

	// furthest is the furthest token any match attempt reached and expected
	// lists what was tried there
	furthest int
	expected []grammar.MatchToken
}

// frame is a running node invocation
type frame struct {
	node      *grammar.NodeProgram
	rec       *Record
	committed bool
}

// snapshot is the state restored when a speculative attempt fails
type snapshot struct {
	cursor, mark int
}

func newRun(p *Parser, tokens []*syntax.Token, src string) *run {
	return &run{
		p:       p,
		tokens:  tokens,
		src:     src,
		journal: newJournal(p.prog.Globals),
	}
}

func (r *run) snapshot() snapshot {
	return snapshot{cursor: r.cursor, mark: r.journal.mark()}
}

func (r *run) restore(s snapshot) {
	r.cursor = s.cursor
	r.journal.rollback(s.mark)
}

func (r *run) current() *syntax.Token {
	return r.tokenAt(r.cursor)
}

// lastSeen is the token at the cursor or, once the cursor has moved past the
// end of the stream, the final token
func (r *run) lastSeen() *syntax.Token {
	if tok := r.current(); tok != nil || len(r.tokens) == 0 {
		return tok
	}

	return r.tokens[len(r.tokens)-1]
}

func (r *run) tokenAt(ndx int) *syntax.Token {
	if ndx < len(r.tokens) {
		return r.tokens[ndx]
	}

	return nil
}

// -----------------------------------------------------------------------------

// runNode invokes a node in a new frame and returns its completed record
func (r *run) runNode(ndx int) (TreeNode, error) {
	np := r.p.prog.Nodes[ndx]

	for _, f := range r.frames {
		if f.node == np && f.rec.start == r.cursor {
			return nil, r.errorAt(ErrRecursion, r.cursor,
				fmt.Sprintf("node `%s` recursively invokes itself without consuming input", np.Name))
		}
	}

	f := &frame{node: np, rec: newRecord(np, r.cursor, r.current())}
	r.frames = append(r.frames, f)
	defer func() {
		r.frames = r.frames[:len(r.frames)-1]
	}()

	// gotos always resolve within the node so no jump escapes the body
	if _, err := r.runBlock(f, 0); err != nil {
		if m, ok := err.(*mismatch); ok && f.committed {
			return nil, r.errorAt(ErrCommitted, m.at, r.expectation(m.at))
		}

		return nil, err
	}

	f.rec.end = r.cursor
	if r.cursor > f.rec.start {
		f.rec.last = r.tokens[r.cursor-1]
	}

	return f.rec, nil
}

// runBlock runs a block of the frame's node.  If a goto targets a label
// outside the block, the jump is returned for an enclosing block to handle.
func (r *run) runBlock(f *frame, id int) (*grammar.Jump, error) {
	if id == grammar.NoBlock {
		return nil, nil
	}

	b := f.node.Blocks[id]

	// mark is the cursor at the last backward jump within this block
	mark := r.cursor

	for pc := 0; pc < len(b.Steps); {
		jump, err := r.runStep(f, b.Steps[pc])
		if err != nil {
			return nil, err
		}

		if jump == nil {
			pc++
			continue
		}

		if jump.Block != id {
			return jump, nil
		}

		if jump.Step <= pc {
			if r.cursor == mark {
				return nil, r.stalled(f)
			}

			mark = r.cursor
		}

		pc = jump.Step
	}

	return nil, nil
}

func (r *run) runStep(f *frame, step *grammar.Step) (*grammar.Jump, error) {
	switch step.Kind {
	case grammar.RuleIs:
		val, err := r.match(step.Match)
		if err != nil {
			return nil, err
		}

		r.applyParams(f, step.Params, val)
		return r.runBlock(f, step.Then)
	case grammar.RuleMaybe:
		snap := r.snapshot()

		val, err := r.match(step.Match)
		if err != nil {
			if _, ok := err.(*mismatch); !ok {
				return nil, err
			}

			r.restore(snap)
			return r.runBlock(f, step.Else)
		}

		r.applyParams(f, step.Params, val)
		return r.runBlock(f, step.Then)
	case grammar.RuleIsOneOf, grammar.RuleMaybeOneOf:
		start := r.cursor

		for _, opt := range step.Options {
			snap := r.snapshot()

			val, err := r.match(opt.Match)
			if err != nil {
				if _, ok := err.(*mismatch); !ok {
					return nil, err
				}

				r.restore(snap)
				continue
			}

			r.applyParams(f, opt.Params, val)
			return r.runBlock(f, opt.Then)
		}

		if step.Kind == grammar.RuleIsOneOf {
			return nil, &mismatch{at: start}
		}

		return r.runBlock(f, step.Else)
	case grammar.RuleWhile:
		for {
			snap := r.snapshot()

			val, err := r.match(step.Match)
			if err != nil {
				if _, ok := err.(*mismatch); !ok {
					return nil, err
				}

				r.restore(snap)
				return nil, nil
			}

			r.applyParams(f, step.Params, val)

			if jump, err := r.runBlock(f, step.Then); jump != nil || err != nil {
				return jump, err
			}

			// a repetition that consumed nothing would repeat forever
			if r.cursor == snap.cursor {
				return nil, nil
			}
		}
	case grammar.RuleLoop:
		for {
			before := r.cursor

			if jump, err := r.runBlock(f, step.Then); jump != nil || err != nil {
				return jump, err
			}

			if r.cursor == before {
				return nil, r.stalled(f)
			}
		}
	case grammar.RuleCommand:
		return r.runCommand(f, step)
	}

	return nil, nil
}

func (r *run) runCommand(f *frame, step *grammar.Step) (*grammar.Jump, error) {
	switch step.Command {
	case grammar.CommandGoto:
		target := step.Target
		return &target, nil
	case grammar.CommandPrint:
		if r.p.diag != nil {
			r.p.diag(&Diagnostic{
				Kind:    PrintDiagnostic,
				Node:    f.node.Name,
				Message: step.Name,
				Token:   r.lastSeen(),
			})
		}
	case grammar.CommandDebug:
		if r.p.diag != nil {
			d := &Diagnostic{Kind: DebugDiagnostic, Node: f.node.Name, Token: r.lastSeen()}

			// the record may still be rolled back after the sink returns
			if step.Name == "" {
				d.Message = f.node.Name
				d.Value = f.rec.clone()
			} else {
				d.Message = f.node.Name + "." + step.Name
				d.Value = f.rec.value(step.Name)
			}

			r.p.diag(d)
		}
	}

	return nil, nil
}

// match matches a token, node or enumerator at the cursor.  On a mismatch the
// cursor and journal may be left mid-attempt: the caller decides whether to
// roll back.
func (r *run) match(ref grammar.Ref) (TreeNode, error) {
	if !ref.IsTerminal() {
		if ref.Kind == grammar.MatchNode {
			return r.runNode(ref.Index)
		}

		return r.matchEnumerator(ref.Index)
	}

	r.expect(ref.MatchToken)

	tok := r.current()
	if ref.MatchesToken(tok, r.src) {
		r.cursor++
		return &Leaf{Token: tok}, nil
	}

	return nil, &mismatch{at: r.cursor}
}

func (r *run) matchEnumerator(ndx int) (TreeNode, error) {
	ep := r.p.prog.Enumerators[ndx]
	start := r.cursor

	for _, val := range ep.Values {
		snap := r.snapshot()

		node, err := r.match(val)
		if err == nil {
			return node, nil
		}

		if _, ok := err.(*mismatch); !ok {
			return nil, err
		}

		r.restore(snap)
	}

	return nil, &mismatch{at: start}
}

func (r *run) applyParams(f *frame, params []grammar.Parameter, val TreeNode) {
	for _, p := range params {
		switch p.Kind {
		case grammar.ParamHardError:
			f.committed = p.Flag
		case grammar.ParamSet:
			if f.node.Variables[p.Name] == grammar.NodeListVar {
				list, _ := f.rec.values[p.Name].([]TreeNode)
				r.journal.set(f.rec, p.Name, append(list, val))
			} else {
				r.journal.set(f.rec, p.Name, val)
			}
		case grammar.ParamGlobal:
			r.journal.appendGlobal(p.Name, val)
		case grammar.ParamTrue:
			r.journal.set(f.rec, p.Name, true)
		case grammar.ParamIncrement:
			r.journal.set(f.rec, p.Name, f.rec.Number(p.Name)+1)
		case grammar.ParamDecrement:
			r.journal.set(f.rec, p.Name, f.rec.Number(p.Name)-1)
		}
	}
}

// -----------------------------------------------------------------------------

// expect records a terminal match attempt at the cursor
func (r *run) expect(tok grammar.MatchToken) {
	switch {
	case r.cursor > r.furthest:
		r.furthest = r.cursor
		r.expected = append(r.expected[:0], tok)
	case r.cursor == r.furthest:
		for _, e := range r.expected {
			if e == tok {
				return
			}
		}

		r.expected = append(r.expected, tok)
	}
}

// expectation describes what was expected at a token index
func (r *run) expectation(at int) string {
	got := describeToken(r.tokenAt(at), r.src)

	if at != r.furthest || len(r.expected) == 0 {
		return "unexpected " + got
	}

	names := make([]string, len(r.expected))
	for i, e := range r.expected {
		names[i] = e.String()
	}

	return fmt.Sprintf("expected %s but got %s", strings.Join(names, " or "), got)
}

func (r *run) stalled(f *frame) *ParseError {
	if tok := r.current(); tok == nil || tok.IsEOF() {
		return r.errorAt(ErrLoopStalled, r.cursor,
			fmt.Sprintf("loop in `%s` reached end of file without exiting", f.node.Name))
	}

	return r.errorAt(ErrLoopStalled, r.cursor,
		fmt.Sprintf("loop in `%s` made no progress", f.node.Name))
}

// errorAt creates a parse error located at a token index
func (r *run) errorAt(code ErrorCode, at int, msg string) *ParseError {
	pe := &ParseError{Code: code, Message: msg}

	tok := r.tokenAt(at)
	if tok == nil && len(r.tokens) > 0 {
		// past the end of a stream without an eof marker
		end := r.tokens[len(r.tokens)-1].Position(r.src)
		pe.Position = &logging.TextPosition{StartLn: end.EndLn, StartCol: end.EndCol, EndLn: end.EndLn, EndCol: end.EndCol}
		return pe
	}

	if tok != nil {
		pe.Token = tok
		pe.Position = tok.Position(r.src)
		pe.Len = tok.Len
	}

	return pe
}
