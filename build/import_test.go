package build

import (
	"io/ioutil"
	"testing"

	"ruparse/lang"
)

const useGrammar = `
name = "use"
entry = "File"
import-global = "uses"
globals = ["uses"]

[lexer]
symbols = [";"]
passes = ["standard"]

[[enumerator]]
name = "Path"
values = ["complex:string", "text"]

[[node]]
name = "File"

[node.variables]
uses = "node_list"

[[node.rules]]
[[node.rules.loop]]
maybe = "eof"
rules = [{ goto = "end" }]

[[node.rules.loop]]
is = "node:Use"
params = ["set:uses"]

[[node.rules]]
label = "end"

[[node]]
name = "Use"

[[node.rules]]
is = "word:use"

[[node.rules]]
is = "enum:Path"
params = ["global:uses"]

[[node.rules]]
is = "symbol:;"
`

func findImports(t *testing.T, language *lang.Language, src string) ([]*Import, error) {
	t.Helper()

	tree, _, err := language.Parse(src, "")
	if err != nil {
		t.Fatalf("failed to parse %q: %s", src, err)
	}

	return FindImports(tree, src, language.ImportGlobal)
}

func TestFindImports(t *testing.T) {
	language, err := lang.LoadFile("../testdata/mini.toml")
	if err != nil {
		t.Fatal(err)
	}

	buff, err := ioutil.ReadFile("../testdata/project/main.mini")
	if err != nil {
		t.Fatal(err)
	}

	imports, err := findImports(t, language, string(buff))
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	if len(imports) != 2 {
		t.Fatalf("expected two imports, got %d", len(imports))
	}

	if imports[0].Kind != ImportRuntime || imports[0].Path != "io" {
		t.Fatalf("expected runtime import `io`, got %v", imports[0])
	}

	if imports[1].Kind != ImportFile || imports[1].Path != "util.mini" {
		t.Fatalf("expected file import `util.mini`, got %v", imports[1])
	}

	if imports[0].Position.StartLn >= imports[1].Position.StartLn {
		t.Fatalf("imports out of order: %v, %v", imports[0].Position, imports[1].Position)
	}
}

func TestImportErrors(t *testing.T) {
	language, err := lang.LoadString(useGrammar)
	if err != nil {
		t.Fatal(err)
	}

	imports, err := findImports(t, language, `use "a.use"; use "#rt";`)
	if err != nil || len(imports) != 2 {
		t.Fatalf("expected two imports, got %v (%v)", imports, err)
	}

	// entries that are not string literals are not imports
	imports, err = findImports(t, language, `use "a.use"; use b; use "c.use";`)
	if err != nil || len(imports) != 2 || imports[0].Path != "a.use" || imports[1].Path != "c.use" {
		t.Fatalf("expected the word entry to be skipped, got %v (%v)", imports, err)
	}

	for _, src := range []string{`use "";`, `use "#";`} {
		_, err := findImports(t, language, src)
		if _, ok := err.(*ImportError); !ok {
			t.Fatalf("%q: expected an import error, got %v", src, err)
		}
	}
}

func TestNoImports(t *testing.T) {
	language, err := lang.LoadString(useGrammar)
	if err != nil {
		t.Fatal(err)
	}

	imports, err := findImports(t, language, "")
	if err != nil || len(imports) != 0 {
		t.Fatalf("expected no imports, got %v (%v)", imports, err)
	}
}
