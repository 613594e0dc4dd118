package grammar

// VariableKind is the kind of value a node variable holds
type VariableKind int

// Enumeration of variable kinds
const (
	NodeVar     VariableKind = iota // a single matched token or node
	NodeListVar                     // matched tokens or nodes in order
	BooleanVar                      // a flag, initially false
	NumberVar                       // a counter, initially zero
)

var variableKindNames = map[VariableKind]string{
	NodeVar:     "node",
	NodeListVar: "node list",
	BooleanVar:  "boolean",
	NumberVar:   "number",
}

func (vk VariableKind) String() string {
	return variableKindNames[vk]
}

// Node is a named sequence of rules.  Matching a node runs its rules in order
// and produces a record of its variables.
type Node struct {
	Name      string
	Rules     []*Rule
	Variables map[string]VariableKind

	// Docs is free documentation text shown by tooling
	Docs string
}

// NewNode creates a new node with the given variables and rules
func NewNode(name string, vars map[string]VariableKind, rules ...*Rule) *Node {
	if vars == nil {
		vars = make(map[string]VariableKind)
	}

	return &Node{Name: name, Rules: rules, Variables: vars}
}

// Enumerator is a named ordered set of alternatives: the first value that
// matches wins
type Enumerator struct {
	Name   string
	Values []MatchToken
}

// NewEnumerator creates a new enumerator
func NewEnumerator(name string, values ...MatchToken) *Enumerator {
	return &Enumerator{Name: name, Values: values}
}

// RuleKind is the kind of a rule
type RuleKind int

// Enumeration of rule kinds
const (
	RuleIs RuleKind = iota
	RuleMaybe
	RuleIsOneOf
	RuleMaybeOneOf
	RuleWhile
	RuleLoop
	RuleCommand
)

var ruleKindNames = map[RuleKind]string{
	RuleIs:         "is",
	RuleMaybe:      "maybe",
	RuleIsOneOf:    "is one of",
	RuleMaybeOneOf: "maybe one of",
	RuleWhile:      "while",
	RuleLoop:       "loop",
	RuleCommand:    "command",
}

func (rk RuleKind) String() string {
	return ruleKindNames[rk]
}

// Rule is a single step of a node.  Which fields are meaningful depends on the
// rule's kind:
//
//   Is, Maybe, While:       Token, Params, Rules (run after each match)
//   Maybe, MaybeOneOf:      Else (run when nothing matched)
//   IsOneOf, MaybeOneOf:    Options
//   Loop:                   Rules (the body)
//   Command:                Command
type Rule struct {
	Kind    RuleKind
	Token   MatchToken
	Rules   []*Rule
	Else    []*Rule
	Options []*Option
	Params  []Parameter
	Command *Command
}

// Option is one alternative of an IsOneOf or MaybeOneOf rule
type Option struct {
	Token  MatchToken
	Rules  []*Rule
	Params []Parameter
}

// Is creates a rule that must match the token
func Is(tok MatchToken, params ...Parameter) *Rule {
	return &Rule{Kind: RuleIs, Token: tok, Params: params}
}

// Maybe creates a rule that optionally matches the token
func Maybe(tok MatchToken, params ...Parameter) *Rule {
	return &Rule{Kind: RuleMaybe, Token: tok, Params: params}
}

// While creates a rule that matches the token as many times as it can
func While(tok MatchToken, params ...Parameter) *Rule {
	return &Rule{Kind: RuleWhile, Token: tok, Params: params}
}

// IsOneOf creates a rule that must match one of the options
func IsOneOf(opts ...*Option) *Rule {
	return &Rule{Kind: RuleIsOneOf, Options: opts}
}

// MaybeOneOf creates a rule that optionally matches one of the options
func MaybeOneOf(opts ...*Option) *Rule {
	return &Rule{Kind: RuleMaybeOneOf, Options: opts}
}

// Loop creates a rule that runs its body until a goto leaves it
func Loop(rules ...*Rule) *Rule {
	return &Rule{Kind: RuleLoop, Rules: rules}
}

// Then sets the rules run after the rule matches
func (r *Rule) Then(rules ...*Rule) *Rule {
	r.Rules = rules
	return r
}

// Otherwise sets the rules run when an optional rule does not match
func (r *Rule) Otherwise(rules ...*Rule) *Rule {
	r.Else = rules
	return r
}

// Opt creates an option for a OneOf rule
func Opt(tok MatchToken, params ...Parameter) *Option {
	return &Option{Token: tok, Params: params}
}

// Then sets the rules run when the option matches
func (o *Option) Then(rules ...*Rule) *Option {
	o.Rules = rules
	return o
}

// -----------------------------------------------------------------------------

// CommandKind is the kind of a command rule
type CommandKind int

// Enumeration of command kinds
const (
	CommandLabel CommandKind = iota
	CommandGoto
	CommandPrint
	CommandDebug
)

// Command is a rule that matches nothing.  Name is the label for Label and
// Goto, the message for Print and the (optional) target variable for Debug.
type Command struct {
	Kind CommandKind
	Name string
}

// Label marks a position in a node that Goto can jump to
func Label(name string) *Rule {
	return &Rule{Kind: RuleCommand, Command: &Command{Kind: CommandLabel, Name: name}}
}

// Goto jumps to a label in the same rule list or an enclosing one
func Goto(name string) *Rule {
	return &Rule{Kind: RuleCommand, Command: &Command{Kind: CommandGoto, Name: name}}
}

// Print emits a message to the parser's diagnostics
func Print(msg string) *Rule {
	return &Rule{Kind: RuleCommand, Command: &Command{Kind: CommandPrint, Name: msg}}
}

// Debug emits the value of a variable (or the whole record if target is
// empty) to the parser's diagnostics
func Debug(target string) *Rule {
	return &Rule{Kind: RuleCommand, Command: &Command{Kind: CommandDebug, Name: target}}
}

// -----------------------------------------------------------------------------

// ParamKind is the kind of a rule parameter
type ParamKind int

// Enumeration of parameter kinds
const (
	ParamSet ParamKind = iota
	ParamGlobal
	ParamTrue
	ParamIncrement
	ParamDecrement
	ParamHardError
)

// Parameter is a side effect applied when a rule matches
type Parameter struct {
	Kind ParamKind

	// Name is the variable or global affected
	Name string

	// Flag is the argument to HardError
	Flag bool
}

// Set stores the matched value in a node variable (appending for lists)
func Set(name string) Parameter {
	return Parameter{Kind: ParamSet, Name: name}
}

// Global appends the matched value to a global accumulator
func Global(name string) Parameter {
	return Parameter{Kind: ParamGlobal, Name: name}
}

// True sets a boolean variable
func True(name string) Parameter {
	return Parameter{Kind: ParamTrue, Name: name}
}

// Increment adds one to a number variable
func Increment(name string) Parameter {
	return Parameter{Kind: ParamIncrement, Name: name}
}

// Decrement subtracts one from a number variable
func Decrement(name string) Parameter {
	return Parameter{Kind: ParamDecrement, Name: name}
}

// HardError commits (or uncommits) the current node: once committed, any
// failure in the node is fatal
func HardError(on bool) Parameter {
	return Parameter{Kind: ParamHardError, Flag: on}
}
