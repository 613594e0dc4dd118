package grammar

import (
	"fmt"
	"sort"
)

// ValidationError is a problem in the grammar that prevents it from being
// used.  Node names the node or enumerator the problem was found in.
type ValidationError struct {
	Node    string
	Message string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("in `%s`: %s", ve.Node, ve.Message)
}

// ValidationWarning is a likely mistake in the grammar that does not prevent
// it from being used
type ValidationWarning struct {
	Node    string
	Message string
}

func (vw *ValidationWarning) String() string {
	return fmt.Sprintf("in `%s`: %s", vw.Node, vw.Message)
}

// ValidationResult is the outcome of validating a grammar
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationWarning
}

// Pass reports whether the grammar is usable
func (vr *ValidationResult) Pass() bool {
	return len(vr.Errors) == 0
}

// Err returns nil if validation passed and otherwise an error describing the
// first problem found
func (vr *ValidationResult) Err() error {
	switch len(vr.Errors) {
	case 0:
		return nil
	case 1:
		return vr.Errors[0]
	default:
		return fmt.Errorf("%s (and %d more errors)", vr.Errors[0], len(vr.Errors)-1)
	}
}

// -----------------------------------------------------------------------------

type validator struct {
	g      *Grammar
	result *ValidationResult

	// the node currently being checked
	node *Node

	// written records the variables of the current node that some rule writes
	written map[string]bool
}

func (v *validator) errorf(owner, msg string, args ...interface{}) {
	v.result.Errors = append(v.result.Errors, &ValidationError{Node: owner, Message: fmt.Sprintf(msg, args...)})
}

func (v *validator) warnf(owner, msg string, args ...interface{}) {
	v.result.Warnings = append(v.result.Warnings, &ValidationWarning{Node: owner, Message: fmt.Sprintf(msg, args...)})
}

func (v *validator) validate() {
	for _, name := range v.g.NodeNames() {
		v.validateNode(v.g.nodes[name])
	}

	for _, name := range v.g.EnumeratorNames() {
		v.validateEnumerator(v.g.enums[name])
	}
}

func (v *validator) validateNode(n *Node) {
	v.node = n
	v.written = make(map[string]bool)

	// labels are unique across the whole node so that a goto is never ambiguous
	labels := make(map[string]bool)
	walkRules(n.Rules, func(r *Rule) {
		if r.Kind == RuleCommand && r.Command != nil && r.Command.Kind == CommandLabel {
			if labels[r.Command.Name] {
				v.errorf(n.Name, "duplicate label `%s`", r.Command.Name)
			}

			labels[r.Command.Name] = true
		}
	})

	v.validateRules(n.Rules, nil)

	var unwritten []string
	for name := range n.Variables {
		if !v.written[name] {
			unwritten = append(unwritten, name)
		}
	}

	sort.Strings(unwritten)
	for _, name := range unwritten {
		v.warnf(n.Name, "variable `%s` is declared but never written", name)
	}
}

// validateRules checks a rule list.  scope holds the labels of the enclosing
// rule lists in the node, innermost last.
func (v *validator) validateRules(rules []*Rule, scope []map[string]bool) {
	local := make(map[string]bool)
	for _, r := range rules {
		if r.Kind == RuleCommand && r.Command != nil && r.Command.Kind == CommandLabel {
			local[r.Command.Name] = true
		}
	}

	scope = append(scope, local)

	for _, r := range rules {
		v.validateRule(r, scope)
	}
}

func (v *validator) validateRule(r *Rule, scope []map[string]bool) {
	name := v.node.Name

	switch r.Kind {
	case RuleIs, RuleMaybe, RuleWhile:
		if r.Token.Kind == MatchNone {
			v.errorf(name, "`%s` rule has no token to match", r.Kind)
		} else {
			v.checkToken(name, r.Token)
		}

		v.checkParams(r.Params)
		v.validateRules(r.Rules, scope)

		if len(r.Else) > 0 {
			if r.Kind == RuleMaybe {
				v.validateRules(r.Else, scope)
			} else {
				v.errorf(name, "`%s` rule cannot have else rules", r.Kind)
			}
		}
	case RuleIsOneOf, RuleMaybeOneOf:
		if len(r.Options) == 0 {
			v.errorf(name, "`%s` rule has no options", r.Kind)
		}

		for _, opt := range r.Options {
			if opt.Token.Kind == MatchNone {
				v.errorf(name, "option of `%s` rule has no token to match", r.Kind)
			} else {
				v.checkToken(name, opt.Token)
			}

			v.checkParams(opt.Params)
			v.validateRules(opt.Rules, scope)
		}

		if len(r.Else) > 0 {
			if r.Kind == RuleMaybeOneOf {
				v.validateRules(r.Else, scope)
			} else {
				v.errorf(name, "`%s` rule cannot have else rules", r.Kind)
			}
		}
	case RuleLoop:
		if len(r.Params) > 0 {
			v.errorf(name, "`loop` rule matches nothing and cannot have parameters")
		}

		hasGoto := false
		walkRules(r.Rules, func(inner *Rule) {
			if inner.Kind == RuleCommand && inner.Command != nil && inner.Command.Kind == CommandGoto {
				hasGoto = true
			}
		})

		if !hasGoto {
			v.warnf(name, "`loop` rule has no goto and can never exit normally")
		}

		v.validateRules(r.Rules, scope)
	case RuleCommand:
		v.validateCommand(r.Command, scope)
	default:
		v.errorf(name, "unknown rule kind %d", r.Kind)
	}
}

func (v *validator) validateCommand(cmd *Command, scope []map[string]bool) {
	name := v.node.Name

	if cmd == nil {
		v.errorf(name, "command rule has no command")
		return
	}

	switch cmd.Kind {
	case CommandLabel:
		if cmd.Name == "" {
			v.errorf(name, "label must have a name")
		}
	case CommandGoto:
		for _, labels := range scope {
			if labels[cmd.Name] {
				return
			}
		}

		v.errorf(name, "goto targets label `%s` which is not declared in this rule list or an enclosing one", cmd.Name)
	case CommandDebug:
		if cmd.Name != "" {
			if _, ok := v.node.Variables[cmd.Name]; !ok {
				v.errorf(name, "debug targets undeclared variable `%s`", cmd.Name)
			}
		}
	}
}

// checkToken verifies that a match token is well-formed and that any node or
// enumerator it references exists
func (v *validator) checkToken(owner string, tok MatchToken) {
	switch tok.Kind {
	case MatchWord, MatchSymbol, MatchComplex, MatchControl:
		if tok.Name == "" {
			v.errorf(owner, "%s match must not be empty", matchKindNames[tok.Kind])
		}
	case MatchNode:
		if _, ok := v.g.nodes[tok.Name]; !ok {
			v.errorf(owner, "reference to undefined node `%s`", tok.Name)
		}
	case MatchEnumerator:
		if _, ok := v.g.enums[tok.Name]; !ok {
			v.errorf(owner, "reference to undefined enumerator `%s`", tok.Name)
		}
	}
}

var matchKindNames = map[MatchKind]string{
	MatchWord:    "word",
	MatchSymbol:  "symbol",
	MatchComplex: "complex",
	MatchControl: "control",
}

// paramVarKinds lists the variable kinds each variable parameter accepts
var paramVarKinds = map[ParamKind][]VariableKind{
	ParamSet:       {NodeVar, NodeListVar},
	ParamTrue:      {BooleanVar},
	ParamIncrement: {NumberVar},
	ParamDecrement: {NumberVar},
}

var paramNames = map[ParamKind]string{
	ParamSet:       "set",
	ParamGlobal:    "global",
	ParamTrue:      "true",
	ParamIncrement: "increment",
	ParamDecrement: "decrement",
	ParamHardError: "hard error",
}

func (v *validator) checkParams(params []Parameter) {
	name := v.node.Name

	for _, p := range params {
		switch p.Kind {
		case ParamGlobal:
			if _, ok := v.g.globals[p.Name]; !ok {
				v.errorf(name, "global `%s` is not registered", p.Name)
			}
		case ParamHardError:
		default:
			kinds, ok := paramVarKinds[p.Kind]
			if !ok {
				v.errorf(name, "unknown parameter kind %d", p.Kind)
				continue
			}

			vk, declared := v.node.Variables[p.Name]
			if !declared {
				v.errorf(name, "`%s` writes undeclared variable `%s`", paramNames[p.Kind], p.Name)
				continue
			}

			v.written[p.Name] = true

			compatible := false
			for _, k := range kinds {
				if k == vk {
					compatible = true
				}
			}

			if !compatible {
				v.errorf(name, "`%s` cannot write variable `%s` of kind %s", paramNames[p.Kind], p.Name, vk)
			}
		}
	}
}

func (v *validator) validateEnumerator(e *Enumerator) {
	if len(e.Values) == 0 {
		v.errorf(e.Name, "enumerator has no values")
	}

	for i, val := range e.Values {
		if val.Kind == MatchNone {
			v.errorf(e.Name, "enumerator value %d has no token to match", i)
			continue
		}

		v.checkToken(e.Name, val)

		for _, prev := range e.Values[:i] {
			if shadows(prev, val) {
				v.warnf(e.Name, "value %s is unreachable: %s always matches first", val, prev)
				break
			}
		}
	}

	if v.enumCycles(e.Name) {
		v.errorf(e.Name, "enumerator contains itself")
	}
}

// shadows reports whether an earlier enumerator value accepts every token a
// later one could
func shadows(earlier, later MatchToken) bool {
	if earlier == later {
		return true
	}

	return earlier.Kind == MatchText && later.Kind == MatchWord
}

// enumCycles tests whether the named enumerator can reach itself through the
// enumerators it references
func (v *validator) enumCycles(start string) bool {
	visited := make(map[string]bool)
	stack := []string{start}

	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e, ok := v.g.enums[name]
		if !ok {
			continue
		}

		for _, val := range e.Values {
			if val.Kind != MatchEnumerator {
				continue
			}

			if val.Name == start {
				return true
			}

			if !visited[val.Name] {
				visited[val.Name] = true
				stack = append(stack, val.Name)
			}
		}
	}

	return false
}

// walkRules calls f for every rule in the list and every rule nested in it
func walkRules(rules []*Rule, f func(*Rule)) {
	for _, r := range rules {
		f(r)

		walkRules(r.Rules, f)
		walkRules(r.Else, f)

		for _, opt := range r.Options {
			walkRules(opt.Rules, f)
		}
	}
}
