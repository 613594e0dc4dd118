package parser

import (
	"fmt"
	"sort"
	"strings"

	"ruparse/grammar"
	"ruparse/logging"
	"ruparse/syntax"
)

// TreeNode is a value in the parse tree: either a *Leaf or a *Record
type TreeNode interface {
	// Position returns the text spanned by the node
	Position(src string) *logging.TextPosition
}

// Leaf is a single matched token
type Leaf struct {
	Token *syntax.Token
}

// Position returns the position of the token
func (l *Leaf) Position(src string) *logging.TextPosition {
	return l.Token.Position(src)
}

// Text returns the text of the token
func (l *Leaf) Text(src string) string {
	return l.Token.Text(src)
}

// Record is a completed node instance: the node's name and the values of its
// variables.  Records are never modified once their node has completed.
type Record struct {
	name   string
	kinds  map[string]grammar.VariableKind
	values map[string]interface{}

	// start and end are the token indices spanned by the record; first is the
	// token at start (nil at the end of the stream) and last is the final
	// token matched (nil if the record matched nothing)
	start, end  int
	first, last *syntax.Token
}

func newRecord(np *grammar.NodeProgram, start int, first *syntax.Token) *Record {
	return &Record{
		name:   np.Name,
		kinds:  np.Variables,
		values: make(map[string]interface{}),
		start:  start,
		end:    start,
		first:  first,
	}
}

// Name returns the name of the node that produced the record
func (r *Record) Name() string {
	return r.name
}

// Node returns the value of a node variable or nil if it was never written
func (r *Record) Node(name string) TreeNode {
	if v, ok := r.values[name].(TreeNode); ok {
		return v
	}

	return nil
}

// List returns a copy of the values of a node list variable
func (r *Record) List(name string) []TreeNode {
	if v, ok := r.values[name].([]TreeNode); ok {
		return append([]TreeNode(nil), v...)
	}

	return nil
}

// Bool returns the value of a boolean variable
func (r *Record) Bool(name string) bool {
	v, _ := r.values[name].(bool)
	return v
}

// Number returns the value of a number variable
func (r *Record) Number(name string) int {
	v, _ := r.values[name].(int)
	return v
}

// Has reports whether the variable was written
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Variables returns the names of the node's declared variables in sorted order
func (r *Record) Variables() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Span returns the range of token indices matched by the record
func (r *Record) Span() (start, end int) {
	return r.start, r.end
}

// Position returns the text spanned by the record
func (r *Record) Position(src string) *logging.TextPosition {
	switch {
	case r.first == nil:
		return &logging.TextPosition{StartLn: 1, EndLn: 1}
	case r.last == nil:
		return syntax.SpanPosition(src, r.first.Index, 0, r.first.Line, r.first.Col)
	default:
		return logging.TextPositionFromRange(r.first.Position(src), r.last.Position(src))
	}
}

// clone returns a copy of the record that is unaffected by later writes to r
func (r *Record) clone() *Record {
	c := *r
	c.values = make(map[string]interface{}, len(r.values))

	for name, v := range r.values {
		if list, ok := v.([]TreeNode); ok {
			v = append([]TreeNode(nil), list...)
		}

		c.values[name] = v
	}

	return &c
}

// value returns the value of a variable as it would be read, defaults included
func (r *Record) value(name string) interface{} {
	switch r.kinds[name] {
	case grammar.NodeListVar:
		return r.List(name)
	case grammar.BooleanVar:
		return r.Bool(name)
	case grammar.NumberVar:
		return r.Number(name)
	default:
		return r.Node(name)
	}
}

// ParseTree is the result of a successful parse
type ParseTree struct {
	Root    *Record
	Globals map[string][]TreeNode
}

// Global returns a copy of a global accumulator's values in the order they
// were appended
func (pt *ParseTree) Global(name string) []TreeNode {
	return append([]TreeNode(nil), pt.Globals[name]...)
}

// StringContent returns the contents of a string or char literal without its
// quotes.  It returns false if the node is not such a literal.
func StringContent(node TreeNode, src string) (string, bool) {
	leaf, ok := node.(*Leaf)
	if !ok || leaf.Token.Kind.Class != syntax.Complex {
		return "", false
	}

	if name := leaf.Token.Kind.Name; name != syntax.StringKind && name != syntax.CharKind {
		return "", false
	}

	text := leaf.Text(src)
	if len(text) < 2 {
		return "", false
	}

	return text[1 : len(text)-1], true
}

// Format renders a tree value (a TreeNode, list of TreeNodes, bool or int) as
// indented text
func Format(value interface{}, src string) string {
	sb := &strings.Builder{}
	format(sb, value, src, 0)
	return sb.String()
}

func format(sb *strings.Builder, value interface{}, src string, depth int) {
	indent := strings.Repeat("  ", depth)

	switch v := value.(type) {
	case *Leaf:
		if v.Token.Kind.Class == syntax.Word || v.Token.Kind.Class == syntax.Symbol {
			fmt.Fprintf(sb, "%q", v.Text(src))
		} else {
			fmt.Fprintf(sb, "%s %q", v.Token.Kind.Name, v.Text(src))
		}
	case *Record:
		sb.WriteString(v.name)
		sb.WriteString(" {")

		vars := v.Variables()
		if len(vars) == 0 {
			sb.WriteString("}")
			return
		}

		sb.WriteString("\n")
		for _, name := range vars {
			fmt.Fprintf(sb, "%s  %s: ", indent, name)
			format(sb, v.value(name), src, depth+1)
			sb.WriteString("\n")
		}

		sb.WriteString(indent + "}")
	case []TreeNode:
		if len(v) == 0 {
			sb.WriteString("[]")
			return
		}

		sb.WriteString("[\n")
		for _, item := range v {
			sb.WriteString(indent + "  ")
			format(sb, item, src, depth+1)
			sb.WriteString("\n")
		}

		sb.WriteString(indent + "]")
	case nil:
		sb.WriteString("none")
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}
