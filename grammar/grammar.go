package grammar

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSealed is returned when a grammar is modified after it has been validated
var ErrSealed = errors.New("grammar is sealed: it has already been validated")

// Grammar is the registry of nodes, enumerators and globals making up a
// language's syntax.  Once a grammar passes validation it is compiled and
// sealed: it is then immutable and can be shared between parsers.
type Grammar struct {
	nodes   map[string]*Node
	enums   map[string]*Enumerator
	globals map[string]struct{}

	result  *ValidationResult
	program *Program
}

// New creates a new empty grammar
func New() *Grammar {
	return &Grammar{
		nodes:   make(map[string]*Node),
		enums:   make(map[string]*Enumerator),
		globals: make(map[string]struct{}),
	}
}

// AddNode registers a node.  Nodes and enumerators share one namespace.
func (g *Grammar) AddNode(n *Node) error {
	if err := g.checkName(n.Name); err != nil {
		return err
	}

	g.nodes[n.Name] = n
	g.result = nil
	return nil
}

// AddEnumerator registers an enumerator
func (g *Grammar) AddEnumerator(e *Enumerator) error {
	if err := g.checkName(e.Name); err != nil {
		return err
	}

	g.enums[e.Name] = e
	g.result = nil
	return nil
}

// AddGlobal registers a global accumulator
func (g *Grammar) AddGlobal(name string) error {
	if g.program != nil {
		return ErrSealed
	}

	if name == "" {
		return errors.New("global name must not be empty")
	}

	if _, ok := g.globals[name]; ok {
		return fmt.Errorf("global `%s` is already registered", name)
	}

	g.globals[name] = struct{}{}
	g.result = nil
	return nil
}

func (g *Grammar) checkName(name string) error {
	if g.program != nil {
		return ErrSealed
	}

	if name == "" {
		return errors.New("node and enumerator names must not be empty")
	}

	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("name `%s` is already used by a node", name)
	}

	if _, ok := g.enums[name]; ok {
		return fmt.Errorf("name `%s` is already used by an enumerator", name)
	}

	return nil
}

// Node looks up a node by name
func (g *Grammar) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Enumerator looks up an enumerator by name
func (g *Grammar) Enumerator(name string) (*Enumerator, bool) {
	e, ok := g.enums[name]
	return e, ok
}

// NodeNames returns the names of all nodes in sorted order
func (g *Grammar) NodeNames() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// EnumeratorNames returns the names of all enumerators in sorted order
func (g *Grammar) EnumeratorNames() []string {
	names := make([]string, 0, len(g.enums))
	for name := range g.enums {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Globals returns the names of all globals in sorted order
func (g *Grammar) Globals() []string {
	names := make([]string, 0, len(g.globals))
	for name := range g.globals {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Sealed reports whether the grammar has passed validation
func (g *Grammar) Sealed() bool {
	return g.program != nil
}

// Program returns the compiled form of the grammar or nil if the grammar has
// not passed validation
func (g *Grammar) Program() *Program {
	return g.program
}

// Validate checks the whole grammar.  If there are no errors, the grammar is
// compiled and sealed.  Validating an unchanged grammar again returns the
// same result.
func (g *Grammar) Validate() *ValidationResult {
	if g.result != nil {
		return g.result
	}

	v := &validator{g: g, result: &ValidationResult{}}
	v.validate()
	g.result = v.result

	if g.result.Pass() {
		g.program = compile(g)
	}

	return g.result
}
