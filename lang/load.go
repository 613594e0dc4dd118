package lang

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"ruparse/grammar"
	"ruparse/syntax"

	"github.com/pelletier/go-toml"
)

// grammarFile represents a grammar definition as it is encoded in TOML
type grammarFile struct {
	Name         string            `toml:"name"`
	Entry        string            `toml:"entry"`
	ImportGlobal string            `toml:"import-global,omitempty"`
	Lexer        *lexerConfig      `toml:"lexer"`
	Globals      []string          `toml:"globals,omitempty"`
	Enumerators  []*enumeratorDecl `toml:"enumerator"`
	Nodes        []*nodeDecl       `toml:"node"`
}

// lexerConfig is the `[lexer]` table
type lexerConfig struct {
	Symbols []string `toml:"symbols"`
	Passes  []string `toml:"passes"`
}

type enumeratorDecl struct {
	Name   string   `toml:"name"`
	Values []string `toml:"values"`
}

type nodeDecl struct {
	Name      string            `toml:"name"`
	Docs      string            `toml:"docs,omitempty"`
	Variables map[string]string `toml:"variables,omitempty"`
	Rules     []*ruleDecl       `toml:"rules"`
}

// ruleDecl is a single rule: exactly one of the rule keys must be set
type ruleDecl struct {
	Is         string        `toml:"is,omitempty"`
	Maybe      string        `toml:"maybe,omitempty"`
	While      string        `toml:"while,omitempty"`
	IsOneOf    []*optionDecl `toml:"is_one_of,omitempty"`
	MaybeOneOf []*optionDecl `toml:"maybe_one_of,omitempty"`
	Loop       []*ruleDecl   `toml:"loop,omitempty"`
	Label      string        `toml:"label,omitempty"`
	Goto       string        `toml:"goto,omitempty"`
	Print      string        `toml:"print,omitempty"`
	Debug      bool          `toml:"debug,omitempty"`

	// Target is the variable shown by `debug`
	Target string `toml:"target,omitempty"`

	Rules  []*ruleDecl `toml:"rules,omitempty"`
	Else   []*ruleDecl `toml:"else,omitempty"`
	Params []string    `toml:"params,omitempty"`
}

type optionDecl struct {
	Token  string      `toml:"token"`
	Rules  []*ruleDecl `toml:"rules,omitempty"`
	Params []string    `toml:"params,omitempty"`
}

// readGrammarFile reads and decodes a grammar definition file
func readGrammarFile(path string) (*grammarFile, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	gf := &grammarFile{}
	if err := toml.Unmarshal(buff, gf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if gf.Name == "" {
		gf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return gf, nil
}

// LoadFile loads a language from a grammar definition file without caching
func LoadFile(path string) (*Language, error) {
	gf, err := readGrammarFile(path)
	if err != nil {
		return nil, err
	}

	return gf.build()
}

// LoadString loads a language from grammar definition text
func LoadString(text string) (*Language, error) {
	gf := &grammarFile{}
	if err := toml.Unmarshal([]byte(text), gf); err != nil {
		return nil, err
	}

	return gf.build()
}

// build converts a decoded grammar file into a language
func (gf *grammarFile) build() (*Language, error) {
	lexer, err := gf.buildLexer()
	if err != nil {
		return nil, err
	}

	g := grammar.New()

	for _, name := range gf.Globals {
		if err := g.AddGlobal(name); err != nil {
			return nil, err
		}
	}

	for _, ed := range gf.Enumerators {
		e := &grammar.Enumerator{Name: ed.Name}

		for _, v := range ed.Values {
			tok, err := parseMatch(v)
			if err != nil {
				return nil, fmt.Errorf("enumerator `%s`: %w", ed.Name, err)
			}

			e.Values = append(e.Values, tok)
		}

		if err := g.AddEnumerator(e); err != nil {
			return nil, err
		}
	}

	for _, nd := range gf.Nodes {
		n, err := nd.build()
		if err != nil {
			return nil, fmt.Errorf("node `%s`: %w", nd.Name, err)
		}

		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	language, err := NewLanguage(gf.Name, lexer, g)
	if err != nil {
		return nil, err
	}

	language.DefaultEntry = gf.Entry
	if gf.Entry != "" {
		if _, ok := g.Node(gf.Entry); !ok {
			return nil, fmt.Errorf("entry node `%s` is not defined", gf.Entry)
		}
	}

	language.ImportGlobal = gf.ImportGlobal
	if gf.ImportGlobal != "" {
		found := false
		for _, name := range gf.Globals {
			found = found || name == gf.ImportGlobal
		}

		if !found {
			return nil, fmt.Errorf("import global `%s` is not registered", gf.ImportGlobal)
		}
	}

	return language, nil
}

func (gf *grammarFile) buildLexer() (*syntax.Lexer, error) {
	lexer := syntax.NewLexer()
	if gf.Lexer == nil {
		return lexer, nil
	}

	lexer.AddSymbols(gf.Lexer.Symbols...)

	for _, name := range gf.Lexer.Passes {
		pass, ok := syntax.PassByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown preprocessor pass `%s`", name)
		}

		// the standard pass depends on these symbols being scanned
		if name == "standard" {
			lexer.AddSymbols(syntax.StandardSymbols...)
		}

		lexer.AddPass(pass)
	}

	return lexer, nil
}

var variableKinds = map[string]grammar.VariableKind{
	"node":      grammar.NodeVar,
	"node_list": grammar.NodeListVar,
	"boolean":   grammar.BooleanVar,
	"number":    grammar.NumberVar,
}

func (nd *nodeDecl) build() (*grammar.Node, error) {
	vars := make(map[string]grammar.VariableKind)
	for name, kindName := range nd.Variables {
		kind, ok := variableKinds[kindName]
		if !ok {
			return nil, fmt.Errorf("variable `%s` has unknown kind `%s`", name, kindName)
		}

		vars[name] = kind
	}

	rules, err := buildRules(nd.Rules)
	if err != nil {
		return nil, err
	}

	n := grammar.NewNode(nd.Name, vars, rules...)
	n.Docs = strings.TrimSpace(nd.Docs)
	return n, nil
}

func buildRules(decls []*ruleDecl) ([]*grammar.Rule, error) {
	rules := make([]*grammar.Rule, 0, len(decls))

	for i, rd := range decls {
		r, err := rd.build()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}

		rules = append(rules, r)
	}

	return rules, nil
}

// kinds returns the rule keys that are set
func (rd *ruleDecl) kinds() []string {
	var set []string
	check := func(present bool, key string) {
		if present {
			set = append(set, key)
		}
	}

	check(rd.Is != "", "is")
	check(rd.Maybe != "", "maybe")
	check(rd.While != "", "while")
	check(rd.IsOneOf != nil, "is_one_of")
	check(rd.MaybeOneOf != nil, "maybe_one_of")
	check(rd.Loop != nil, "loop")
	check(rd.Label != "", "label")
	check(rd.Goto != "", "goto")
	check(rd.Print != "", "print")
	check(rd.Debug, "debug")

	return set
}

var tokenRuleKinds = map[string]grammar.RuleKind{
	"is":    grammar.RuleIs,
	"maybe": grammar.RuleMaybe,
	"while": grammar.RuleWhile,
}

func (rd *ruleDecl) build() (*grammar.Rule, error) {
	kinds := rd.kinds()
	if len(kinds) != 1 {
		return nil, fmt.Errorf("a rule must set exactly one of is, maybe, while, is_one_of, maybe_one_of, loop, label, goto, print or debug (found %d)", len(kinds))
	}

	params, err := parseParams(rd.Params)
	if err != nil {
		return nil, err
	}

	r := &grammar.Rule{Params: params}

	switch kinds[0] {
	case "is", "maybe", "while":
		r.Kind = tokenRuleKinds[kinds[0]]
		if r.Token, err = parseMatch(rd.Is + rd.Maybe + rd.While); err != nil {
			return nil, err
		}
	case "is_one_of":
		r.Kind = grammar.RuleIsOneOf
		if r.Options, err = buildOptions(rd.IsOneOf); err != nil {
			return nil, err
		}
	case "maybe_one_of":
		r.Kind = grammar.RuleMaybeOneOf
		if r.Options, err = buildOptions(rd.MaybeOneOf); err != nil {
			return nil, err
		}
	case "loop":
		r.Kind = grammar.RuleLoop
		if r.Rules, err = buildRules(rd.Loop); err != nil {
			return nil, err
		}

		return r, nil
	default:
		return buildCommand(kinds[0], rd)
	}

	if r.Rules, err = buildRules(rd.Rules); err != nil {
		return nil, err
	}

	if r.Else, err = buildRules(rd.Else); err != nil {
		return nil, err
	}

	return r, nil
}

func buildCommand(kind string, rd *ruleDecl) (*grammar.Rule, error) {
	if len(rd.Params) > 0 || len(rd.Rules) > 0 || len(rd.Else) > 0 {
		return nil, fmt.Errorf("`%s` takes no params or nested rules", kind)
	}

	switch kind {
	case "label":
		return grammar.Label(rd.Label), nil
	case "goto":
		return grammar.Goto(rd.Goto), nil
	case "print":
		return grammar.Print(rd.Print), nil
	default:
		return grammar.Debug(rd.Target), nil
	}
}

func buildOptions(decls []*optionDecl) ([]*grammar.Option, error) {
	opts := make([]*grammar.Option, 0, len(decls))

	for i, od := range decls {
		tok, err := parseMatch(od.Token)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i+1, err)
		}

		params, err := parseParams(od.Params)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i+1, err)
		}

		rules, err := buildRules(od.Rules)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i+1, err)
		}

		opts = append(opts, &grammar.Option{Token: tok, Params: params, Rules: rules})
	}

	return opts, nil
}

// parseMatch decodes a match string such as `word:let` or `node:Expr`
func parseMatch(s string) (grammar.MatchToken, error) {
	kind, arg := s, ""
	if ndx := strings.IndexByte(s, ':'); ndx >= 0 {
		kind, arg = s[:ndx], s[ndx+1:]
	}

	switch kind {
	case "text":
		return grammar.Text(), nil
	case "eof":
		return grammar.EOF(), nil
	case "eol":
		return grammar.EOL(), nil
	}

	if arg == "" {
		return grammar.MatchToken{}, fmt.Errorf("invalid match `%s`", s)
	}

	switch kind {
	case "word":
		return grammar.Word(arg), nil
	case "symbol":
		return grammar.Symbol(arg), nil
	case "complex":
		return grammar.ComplexToken(arg), nil
	case "node":
		return grammar.NodeRef(arg), nil
	case "enum":
		return grammar.EnumRef(arg), nil
	}

	return grammar.MatchToken{}, fmt.Errorf("invalid match `%s`", s)
}

var paramKinds = map[string]func(string) grammar.Parameter{
	"set":    grammar.Set,
	"global": grammar.Global,
	"true":   grammar.True,
	"inc":    grammar.Increment,
	"dec":    grammar.Decrement,
}

// parseParams decodes parameter strings such as `set:name` or `hard_error`
func parseParams(strs []string) ([]grammar.Parameter, error) {
	params := make([]grammar.Parameter, 0, len(strs))

	for _, s := range strs {
		kind, arg := s, ""
		if ndx := strings.IndexByte(s, ':'); ndx >= 0 {
			kind, arg = s[:ndx], s[ndx+1:]
		}

		if kind == "hard_error" {
			switch arg {
			case "", "true":
				params = append(params, grammar.HardError(true))
			case "false":
				params = append(params, grammar.HardError(false))
			default:
				return nil, fmt.Errorf("invalid parameter `%s`", s)
			}

			continue
		}

		mk, ok := paramKinds[kind]
		if !ok || arg == "" {
			return nil, fmt.Errorf("invalid parameter `%s`", s)
		}

		params = append(params, mk(arg))
	}

	return params, nil
}
