package grammar

// Program is the compiled form of a validated grammar.  References are
// resolved to indices and every rule list is flattened into a block whose
// gotos have been resolved to concrete jump targets.
type Program struct {
	Nodes       []*NodeProgram
	Enumerators []*EnumProgram
	Globals     []string

	nodeIndex map[string]int
}

// NodeIndex looks up the index of a node by name
func (p *Program) NodeIndex(name string) (int, bool) {
	ndx, ok := p.nodeIndex[name]
	return ndx, ok
}

// Ref is a match token with its node or enumerator reference resolved
type Ref struct {
	MatchToken

	// Index is the index of the referenced node or enumerator
	Index int
}

// NodeProgram is a compiled node.  Blocks[0] is the node's body.
type NodeProgram struct {
	Name      string
	Variables map[string]VariableKind
	Blocks    []*Block
}

// EnumProgram is a compiled enumerator
type EnumProgram struct {
	Name   string
	Values []Ref
}

// NoBlock marks an absent nested rule list
const NoBlock = -1

// Block is a compiled rule list
type Block struct {
	// Parent is the block containing this one or NoBlock for the body
	Parent int

	Steps []*Step

	// Labels maps the labels declared directly in this block to their steps
	Labels map[string]int
}

// Jump is the resolved target of a goto
type Jump struct {
	Block, Step int
}

// Step is a compiled rule
type Step struct {
	Kind   RuleKind
	Match  Ref
	Params []Parameter

	// Then is the nested rule list (the body for loops); Else is the rule list
	// run when an optional rule does not match
	Then, Else int

	Options []*OptionStep

	// Command and Name are set for command rules
	Command CommandKind
	Name    string

	// Target is set for gotos
	Target Jump
}

// OptionStep is a compiled option of a OneOf rule
type OptionStep struct {
	Match  Ref
	Params []Parameter
	Then   int
}

func compile(g *Grammar) *Program {
	p := &Program{
		Globals:   g.Globals(),
		nodeIndex: make(map[string]int),
	}

	enumIndex := make(map[string]int)
	for i, name := range g.EnumeratorNames() {
		enumIndex[name] = i
	}

	for i, name := range g.NodeNames() {
		p.nodeIndex[name] = i
	}

	c := &compiler{nodeIndex: p.nodeIndex, enumIndex: enumIndex}

	for _, name := range g.NodeNames() {
		n := g.nodes[name]
		vars := make(map[string]VariableKind, len(n.Variables))
		for name, kind := range n.Variables {
			vars[name] = kind
		}

		c.np = &NodeProgram{Name: n.Name, Variables: vars}
		c.compileBlock(n.Rules, NoBlock)
		p.Nodes = append(p.Nodes, c.np)
	}

	for _, name := range g.EnumeratorNames() {
		e := g.enums[name]
		ep := &EnumProgram{Name: e.Name}

		for _, val := range e.Values {
			ep.Values = append(ep.Values, c.resolve(val))
		}

		p.Enumerators = append(p.Enumerators, ep)
	}

	return p
}

type compiler struct {
	nodeIndex, enumIndex map[string]int

	// np is the node being compiled
	np *NodeProgram
}

func (c *compiler) resolve(tok MatchToken) Ref {
	switch tok.Kind {
	case MatchNode:
		return Ref{MatchToken: tok, Index: c.nodeIndex[tok.Name]}
	case MatchEnumerator:
		return Ref{MatchToken: tok, Index: c.enumIndex[tok.Name]}
	default:
		return Ref{MatchToken: tok}
	}
}

// compileBlock compiles a rule list into a new block and returns its index.
// Empty lists produce no block.
func (c *compiler) compileBlock(rules []*Rule, parent int) int {
	if len(rules) == 0 && parent != NoBlock {
		return NoBlock
	}

	id := len(c.np.Blocks)
	b := &Block{Parent: parent, Labels: make(map[string]int)}
	c.np.Blocks = append(c.np.Blocks, b)

	// labels are recorded first so nested gotos can resolve against them
	for i, r := range rules {
		if r.Kind == RuleCommand && r.Command.Kind == CommandLabel {
			b.Labels[r.Command.Name] = i
		}
	}

	for _, r := range rules {
		step := &Step{Kind: r.Kind, Params: r.Params, Then: NoBlock, Else: NoBlock}

		switch r.Kind {
		case RuleIs, RuleMaybe, RuleWhile:
			step.Match = c.resolve(r.Token)
			step.Then = c.compileBlock(r.Rules, id)
			step.Else = c.compileBlock(r.Else, id)
		case RuleIsOneOf, RuleMaybeOneOf:
			for _, opt := range r.Options {
				step.Options = append(step.Options, &OptionStep{
					Match:  c.resolve(opt.Token),
					Params: opt.Params,
					Then:   c.compileBlock(opt.Rules, id),
				})
			}

			step.Else = c.compileBlock(r.Else, id)
		case RuleLoop:
			step.Then = c.compileBlock(r.Rules, id)
		case RuleCommand:
			step.Command = r.Command.Kind
			step.Name = r.Command.Name

			if step.Command == CommandGoto {
				step.Target = c.resolveLabel(id, step.Name)
			}
		}

		b.Steps = append(b.Steps, step)
	}

	return id
}

// resolveLabel finds a label in the given block or the closest enclosing
// block declaring it
func (c *compiler) resolveLabel(block int, label string) Jump {
	for block != NoBlock {
		b := c.np.Blocks[block]
		if step, ok := b.Labels[label]; ok {
			return Jump{Block: block, Step: step}
		}

		block = b.Parent
	}

	// unreachable for validated grammars
	return Jump{Block: 0, Step: 0}
}
