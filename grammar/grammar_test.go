package grammar

import (
	"strings"
	"testing"
)

func pairGrammar() *Grammar {
	g := New()
	g.AddNode(NewNode("Pair",
		map[string]VariableKind{"left": NodeVar, "right": NodeVar},
		Is(Text(), Set("left")),
		Is(Symbol(","), HardError(true)),
		Is(Text(), Set("right")),
	))

	return g
}

func expectError(t *testing.T, vr *ValidationResult, fragment string) {
	t.Helper()

	for _, err := range vr.Errors {
		if strings.Contains(err.Message, fragment) {
			return
		}
	}

	t.Fatalf("expected an error containing %q, got %v", fragment, vr.Errors)
}

func expectWarning(t *testing.T, vr *ValidationResult, fragment string) {
	t.Helper()

	for _, w := range vr.Warnings {
		if strings.Contains(w.Message, fragment) {
			return
		}
	}

	t.Fatalf("expected a warning containing %q, got %v", fragment, vr.Warnings)
}

func TestValidGrammar(t *testing.T) {
	g := pairGrammar()
	vr := g.Validate()

	if !vr.Pass() || vr.Err() != nil {
		t.Fatalf("unexpected errors: %v", vr.Errors)
	}

	if len(vr.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", vr.Warnings)
	}

	if !g.Sealed() || g.Program() == nil {
		t.Fatalf("expected the grammar to be compiled and sealed")
	}

	if g.Validate() != vr {
		t.Fatalf("expected validation of a sealed grammar to return the same result")
	}
}

func TestUndeclaredVariable(t *testing.T) {
	g := New()
	g.AddNode(NewNode("N", nil, Is(Text(), Set("foo"))))

	vr := g.Validate()
	if vr.Pass() {
		t.Fatalf("expected validation to fail")
	}

	if vr.Errors[0].Node != "N" || !strings.Contains(vr.Errors[0].Message, "`foo`") {
		t.Fatalf("expected an error naming N and foo, got %s", vr.Errors[0])
	}

	if g.Sealed() {
		t.Fatalf("a failing grammar must not be sealed")
	}
}

func TestIncompatibleVariables(t *testing.T) {
	g := New()
	g.AddGlobal("seen")
	g.AddNode(NewNode("N",
		map[string]VariableKind{"flag": BooleanVar, "count": NumberVar, "child": NodeVar},
		Is(Text(), Set("flag")),
		Is(Text(), True("count")),
		Is(Text(), Increment("child")),
		Is(Text(), Global("missing")),
	))

	vr := g.Validate()
	expectError(t, vr, "cannot write variable `flag`")
	expectError(t, vr, "cannot write variable `count`")
	expectError(t, vr, "cannot write variable `child`")
	expectError(t, vr, "global `missing` is not registered")
}

func TestDanglingReferences(t *testing.T) {
	g := New()
	g.AddNode(NewNode("N", nil,
		Is(NodeRef("Missing")),
		IsOneOf(Opt(EnumRef("Gone")), Opt(Word("x"))),
	))
	g.AddEnumerator(NewEnumerator("E", NodeRef("AlsoMissing")))

	vr := g.Validate()
	expectError(t, vr, "undefined node `Missing`")
	expectError(t, vr, "undefined enumerator `Gone`")
	expectError(t, vr, "undefined node `AlsoMissing`")
}

func TestMalformedRules(t *testing.T) {
	g := New()
	g.AddNode(NewNode("N", nil,
		&Rule{Kind: RuleIs},
		IsOneOf(),
		MaybeOneOf(Opt(MatchToken{})),
		Is(Word("x")).Otherwise(Is(Word("y"))),
	))

	vr := g.Validate()
	expectError(t, vr, "`is` rule has no token")
	expectError(t, vr, "`is one of` rule has no options")
	expectError(t, vr, "option of `maybe one of` rule has no token")
	expectError(t, vr, "`is` rule cannot have else rules")
}

func TestLabels(t *testing.T) {
	g := New()
	g.AddNode(NewNode("Ok", nil,
		Loop(
			Maybe(Symbol(";")).Then(Goto("done")),
			Is(Text()),
		),
		Label("done"),
	))
	g.AddNode(NewNode("Inner", nil,
		Maybe(Word("a")).Then(Label("inside")),
		Goto("inside"),
	))
	g.AddNode(NewNode("Dup", nil,
		Label("x"),
		Maybe(Word("a")).Then(Label("x")),
	))

	vr := g.Validate()
	if len(vr.Errors) != 2 {
		t.Fatalf("expected two errors, got %v", vr.Errors)
	}

	expectError(t, vr, "label `inside` which is not declared")
	expectError(t, vr, "duplicate label `x`")

	for _, err := range vr.Errors {
		if err.Node == "Ok" {
			t.Fatalf("unexpected error in a valid node: %s", err)
		}
	}
}

func TestEnumeratorCycles(t *testing.T) {
	g := New()
	g.AddEnumerator(NewEnumerator("A", Word("a"), EnumRef("B")))
	g.AddEnumerator(NewEnumerator("B", EnumRef("A")))
	g.AddEnumerator(NewEnumerator("C", EnumRef("A")))

	vr := g.Validate()

	cyclic := make(map[string]bool)
	for _, err := range vr.Errors {
		if strings.Contains(err.Message, "contains itself") {
			cyclic[err.Node] = true
		}
	}

	if !cyclic["A"] || !cyclic["B"] || cyclic["C"] {
		t.Fatalf("expected A and B to be reported as cyclic, got %v", cyclic)
	}
}

func TestWarnings(t *testing.T) {
	g := New()
	g.AddEnumerator(NewEnumerator("Values", Text(), Word("x"), Symbol(";"), Symbol(";")))
	g.AddNode(NewNode("N",
		map[string]VariableKind{"unused": NodeVar},
		Loop(Is(Text())),
	))

	vr := g.Validate()
	if !vr.Pass() {
		t.Fatalf("warnings must not fail validation: %v", vr.Errors)
	}

	expectWarning(t, vr, "value `x` is unreachable")
	expectWarning(t, vr, "value symbol `;` is unreachable")
	expectWarning(t, vr, "no goto")
	expectWarning(t, vr, "`unused` is declared but never written")

	if len(vr.Warnings) != 4 {
		t.Fatalf("expected four warnings, got %v", vr.Warnings)
	}
}

func TestRegistration(t *testing.T) {
	g := New()
	if err := g.AddNode(NewNode("X", nil, Is(Word("x")))); err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	if g.AddEnumerator(NewEnumerator("X", Word("x"))) == nil {
		t.Fatalf("expected a duplicate name error")
	}

	if g.AddGlobal("g") != nil || g.AddGlobal("g") == nil {
		t.Fatalf("expected only the second global registration to fail")
	}

	if !g.Validate().Pass() {
		t.Fatalf("expected the grammar to validate")
	}

	if g.AddNode(NewNode("Y", nil)) != ErrSealed || g.AddGlobal("h") != ErrSealed {
		t.Fatalf("expected registration after validation to fail")
	}
}

func TestRegistrationOrder(t *testing.T) {
	// forward references are fine: order of registration is irrelevant
	g := New()
	g.AddNode(NewNode("Outer", nil, Is(NodeRef("Inner")), Is(EnumRef("E"))))
	g.AddEnumerator(NewEnumerator("E", NodeRef("Inner")))
	g.AddNode(NewNode("Inner", nil, Is(Word("x"))))

	if vr := g.Validate(); !vr.Pass() {
		t.Fatalf("unexpected errors: %v", vr.Errors)
	}
}

func TestCompiledGotos(t *testing.T) {
	g := New()
	g.AddNode(NewNode("N", nil,
		Label("top"),
		Loop(
			Maybe(Symbol(";")).Then(Goto("end")),
			Maybe(Symbol("^")).Then(Goto("top")),
			Is(Text()),
		),
		Label("end"),
	))

	if vr := g.Validate(); !vr.Pass() {
		t.Fatalf("unexpected errors: %v", vr.Errors)
	}

	np := g.Program().Nodes[0]
	body := np.Blocks[0]
	if body.Labels["top"] != 0 || body.Labels["end"] != 2 {
		t.Fatalf("unexpected body labels %v", body.Labels)
	}

	loop := np.Blocks[body.Steps[1].Then]
	if loop.Parent != 0 || len(loop.Steps) != 3 {
		t.Fatalf("unexpected loop block %+v", loop)
	}

	end := np.Blocks[loop.Steps[0].Then].Steps[0]
	if end.Command != CommandGoto || end.Target != (Jump{Block: 0, Step: 2}) {
		t.Fatalf("expected goto end to target 0:2, got %+v", end.Target)
	}

	top := np.Blocks[loop.Steps[1].Then].Steps[0]
	if top.Target != (Jump{Block: 0, Step: 0}) {
		t.Fatalf("expected goto top to target 0:0, got %+v", top.Target)
	}
}

func TestProgramOwnsVariables(t *testing.T) {
	vars := map[string]VariableKind{"name": NodeVar}

	g := New()
	g.AddNode(NewNode("N", vars, Is(Text(), Set("name"))))

	if vr := g.Validate(); !vr.Pass() {
		t.Fatalf("unexpected errors: %v", vr.Errors)
	}

	vars["name"] = NumberVar
	vars["extra"] = BooleanVar

	np := g.Program().Nodes[0]
	if len(np.Variables) != 1 || np.Variables["name"] != NodeVar {
		t.Fatalf("compiled variables changed with the node: %v", np.Variables)
	}
}

func TestTerminalMatches(t *testing.T) {
	samples := []struct {
		tok      MatchToken
		terminal bool
	}{
		{Word("fn"), true},
		{Symbol(";"), true},
		{ComplexToken("string"), true},
		{Text(), true},
		{EOF(), true},
		{EOL(), true},
		{NodeRef("N"), false},
		{EnumRef("E"), false},
		{MatchToken{}, false},
	}

	for _, s := range samples {
		if s.tok.IsTerminal() != s.terminal {
			t.Fatalf("%s: expected terminal=%v", s.tok, s.terminal)
		}
	}
}
