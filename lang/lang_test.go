package lang

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ruparse/parser"
)

const miniPath = "../testdata/mini.toml"

func loadMini(t *testing.T) *Language {
	t.Helper()

	language, err := LoadFile(miniPath)
	if err != nil {
		t.Fatalf("failed to load mini: %s", err)
	}

	return language
}

func TestLoadMini(t *testing.T) {
	language := loadMini(t)

	if language.Name != "mini" || language.DefaultEntry != "File" || language.ImportGlobal != "imports" {
		t.Fatalf("unexpected language header %q %q %q", language.Name, language.DefaultEntry, language.ImportGlobal)
	}

	if len(language.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", language.Warnings)
	}

	n, ok := language.Grammar.Node("Import")
	if !ok || !strings.Contains(n.Docs, "runtime module") {
		t.Fatalf("expected Import docs to be retained")
	}
}

func TestParseMini(t *testing.T) {
	language := loadMini(t)

	buff, err := ioutil.ReadFile("../testdata/project/main.mini")
	if err != nil {
		t.Fatal(err)
	}

	src := string(buff)
	tree, _, err := language.Parse(src, "")
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	if n := len(tree.Root.List("statements")); n != 4 {
		t.Fatalf("expected four statements, got %d:\n%s", n, parser.Format(tree.Root, src))
	}

	if n := len(tree.Root.List("docs")); n != 1 {
		t.Fatalf("expected one doc comment, got %d", n)
	}

	var paths []string
	for _, node := range tree.Global("imports") {
		path, ok := parser.StringContent(node, src)
		if !ok {
			t.Fatalf("expected a string import path")
		}

		paths = append(paths, path)
	}

	if strings.Join(paths, ",") != "#io,util.mini" {
		t.Fatalf("unexpected imports %v", paths)
	}

	fns := tree.Global("functions")
	if len(fns) != 1 || fns[0].(*parser.Leaf).Text(src) != "main" {
		t.Fatalf("expected one function named main")
	}

	fn := tree.Root.List("statements")[3].(*parser.Record)
	if fn.Name() != "Fn" || len(fn.List("params")) != 2 || len(fn.List("body")) != 2 {
		t.Fatalf("unexpected function record:\n%s", parser.Format(fn, src))
	}
}

func TestCommittedStatement(t *testing.T) {
	language := loadMini(t)

	src := "let x = 1;\nimport nope;"
	_, _, err := language.Parse(src, "")

	var pe *parser.ParseError
	if !errors.As(err, &pe) || pe.Code != parser.ErrCommitted {
		t.Fatalf("expected a committed parse error, got %v", err)
	}

	if pe.Position.StartLn != 2 || pe.Token.Text(src) != "nope" {
		t.Fatalf("expected the error at `nope` on line 2, got %s", pe)
	}
}

func TestLexErrorSurfaces(t *testing.T) {
	language := loadMini(t)

	_, tokens, err := language.Parse(`let x = "open;`, "")
	if tokens != nil {
		t.Fatalf("expected no tokens when lexing fails")
	}

	if err == nil || !strings.Contains(err.Error(), "closing quote") {
		t.Fatalf("expected an unterminated string error, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	samples := []struct{ text, fragment string }{
		{"[[node]]\nname = \"N\"\n[[node.rules]]\nis = \"text\"\nmaybe = \"text\"", "exactly one"},
		{"[lexer]\npasses = [\"nope\"]", "unknown preprocessor pass"},
		{"[[node]]\nname = \"N\"\n[[node.rules]]\nis = \"foo:bar\"", "invalid match"},
		{"[[node]]\nname = \"N\"\n[[node.rules]]\nis = \"word:\"", "invalid match"},
		{"[[node]]\nname = \"N\"\n[[node.rules]]\nis = \"text\"\nparams = [\"grow:x\"]", "invalid parameter"},
		{"[[node]]\nname = \"N\"\n[node.variables]\nx = \"tree\"", "unknown kind"},
		{"entry = \"Missing\"\n[[node]]\nname = \"N\"\n[[node.rules]]\nis = \"text\"", "entry node `Missing`"},
		{"[[node]]\nname = \"N\"\n[[node.rules]]\nlabel = \"x\"\nparams = [\"hard_error\"]", "takes no params"},
	}

	for _, s := range samples {
		_, err := LoadString(s.text)
		if err == nil || !strings.Contains(err.Error(), s.fragment) {
			t.Fatalf("%q: expected an error containing %q, got %v", s.text, s.fragment, err)
		}
	}
}

func TestValidationFailure(t *testing.T) {
	_, err := LoadString("[[node]]\nname = \"N\"\n[[node.rules]]\nis = \"text\"\nparams = [\"set:foo\"]")

	var vf *ValidationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("expected a validation failure, got %v", err)
	}

	if len(vf.Result.Errors) != 1 || vf.Result.Errors[0].Node != "N" {
		t.Fatalf("unexpected validation errors %v", vf.Result.Errors)
	}
}

func TestGrammarCache(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")

	buff, err := ioutil.ReadFile(miniPath)
	if err != nil {
		t.Fatal(err)
	}

	grammarPath := filepath.Join(dir, "mini.toml")
	if err := ioutil.WriteFile(grammarPath, buff, 0644); err != nil {
		t.Fatal(err)
	}

	if _, cached, err := Load(grammarPath, cacheDir); err != nil || cached {
		t.Fatalf("expected a fresh load, got cached=%v err=%v", cached, err)
	}

	if _, err := os.Stat(CachePath(grammarPath, cacheDir)); err != nil {
		t.Fatalf("expected a cache file: %s", err)
	}

	language, cached, err := Load(grammarPath, cacheDir)
	if err != nil || !cached {
		t.Fatalf("expected a cached load, got cached=%v err=%v", cached, err)
	}

	if _, _, err := language.Parse("let x = 1;", ""); err != nil {
		t.Fatalf("cached language failed to parse: %s", err)
	}

	// a grammar edited after the cache was written invalidates it
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(grammarPath, future, future); err != nil {
		t.Fatal(err)
	}

	if _, cached, err := Load(grammarPath, cacheDir); err != nil || cached {
		t.Fatalf("expected a stale cache to be ignored, got cached=%v err=%v", cached, err)
	}
}
