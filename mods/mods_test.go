package mods

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ruparse/common"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		t.Fatal(err)
	}

	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadExampleProject(t *testing.T) {
	project, err := LoadProject("../testdata/project")
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	if project.Name != "example" || project.Entry != "File" || project.ShouldCache || project.CacheDirectory != "" {
		t.Fatalf("unexpected project %+v", project)
	}

	if !filepath.IsAbs(project.GrammarPath) || filepath.Base(project.GrammarPath) != "mini.toml" {
		t.Fatalf("expected an absolute grammar path, got %s", project.GrammarPath)
	}

	if len(project.Sources) != 1 || project.Sources[0] != filepath.Join(project.Root, "main.mini") {
		t.Fatalf("unexpected sources %v", project.Sources)
	}
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()

	if err := InitProject("demo", dir, "", true); err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	project, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("failed to load the new project: %s", err)
	}

	if project.Name != "demo" || project.GrammarPath != filepath.Join(dir, "demo"+common.GrammarFileExtension) {
		t.Fatalf("unexpected project %+v", project)
	}

	if !project.ShouldCache || project.CacheDirectory != filepath.Join(dir, ".ruparse") {
		t.Fatalf("expected caching in .ruparse, got %v %s", project.ShouldCache, project.CacheDirectory)
	}

	if err := InitProject("demo", dir, "", false); err == nil {
		t.Fatalf("expected initializing twice to fail")
	}

	if err := InitProject("1demo", t.TempDir(), "", false); err == nil {
		t.Fatalf("expected an invalid name to be rejected")
	}
}

func TestInvalidProjects(t *testing.T) {
	samples := []struct{ content, fragment string }{
		{"grammar = \"g.toml\"\nsources = [\"a\"]", "missing project name"},
		{"name = \"my project\"\ngrammar = \"g.toml\"\nsources = [\"a\"]", "valid identifier"},
		{"name = \"p\"\nsources = [\"a\"]", "grammar file"},
		{"name = \"p\"\ngrammar = \"g.toml\"", "at least one source"},
		{"name = \"p\"\ngrammar = \"g.toml\"\nsources = [\"a\"]\nlog-level = \"loud\"", "invalid log level"},
		{"name = \"p\"\ngrammar = \"g.toml\"\nsources = [\"a\"]\nruparse-version = \"0.0.1\"", "requires ruparse version"},
	}

	for _, s := range samples {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, common.ProjectFileName), s.content)

		_, err := LoadProject(dir)
		if err == nil || !strings.Contains(err.Error(), s.fragment) {
			t.Fatalf("%q: expected an error containing %q, got %v", s.content, s.fragment, err)
		}
	}
}

func TestResolveImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.txt"), "")
	writeFile(t, filepath.Join(root, "shared.txt"), "")
	writeFile(t, filepath.Join(root, "lib", "ext.txt"), "")
	writeFile(t, filepath.Join(root, "vendor", "real.txt"), "")

	project := &Project{
		Root:             root,
		ImportDirs:       []string{filepath.Join(root, "lib")},
		PathReplacements: map[string]string{"fake.txt": "vendor/real.txt"},
	}

	from := filepath.Join(root, "src")
	samples := []struct {
		path, expected string
	}{
		{"a.txt", filepath.Join(root, "src", "a.txt")},
		{"shared.txt", filepath.Join(root, "shared.txt")},
		{"ext.txt", filepath.Join(root, "lib", "ext.txt")},
		{"fake.txt", filepath.Join(root, "vendor", "real.txt")},
	}

	for _, s := range samples {
		path, ok := project.ResolveImport(from, s.path)
		if !ok || path != s.expected {
			t.Fatalf("%s: expected %s, got %s (%v)", s.path, s.expected, path, ok)
		}
	}

	if _, ok := project.ResolveImport(from, "missing.txt"); ok {
		t.Fatalf("expected a missing import not to resolve")
	}
}

func TestRuntimeImports(t *testing.T) {
	defer func(prev string) { common.RuparsePath = prev }(common.RuparsePath)

	common.RuparsePath = ""
	if _, ok := ResolveRuntimeImport("io"); ok {
		t.Fatalf("expected no runtime imports without a runtime root")
	}

	common.RuparsePath = t.TempDir()
	writeFile(t, filepath.Join(common.RuparsePath, "io"), "")

	if path, ok := ResolveRuntimeImport("io"); !ok || path != filepath.Join(common.RuparsePath, "io") {
		t.Fatalf("expected io to resolve, got %s", path)
	}
}

func TestFindProjectRoot(t *testing.T) {
	expected, _ := filepath.Abs("../testdata/project")

	root, ok := FindProjectRoot("../testdata/project")
	if !ok || root != expected {
		t.Fatalf("expected %s, got %s", expected, root)
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, common.ProjectFileName), "name = \"p\"")
	writeFile(t, filepath.Join(dir, "a", "b", "x.txt"), "")

	if root, ok := FindProjectRoot(filepath.Join(dir, "a", "b")); !ok || root != dir {
		t.Fatalf("expected %s, got %s", dir, root)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, id := range []string{"a", "_x", "Name2"} {
		if !IsValidIdentifier(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}

	for _, id := range []string{"", "2a", "a-b", "a b"} {
		if IsValidIdentifier(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}
