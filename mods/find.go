package mods

import (
	"os"
	"path/filepath"
	"strings"

	"ruparse/common"

	"github.com/pelletier/go-toml"
)

// ResolveImport takes in a file import path as it was written in the file in
// directory `fromDir` and attempts to determine the absolute path of the file
// it refers to
func (p *Project) ResolveImport(fromDir, importPath string) (string, bool) {
	// replacements override import semantics entirely
	if replacement, ok := p.PathReplacements[importPath]; ok {
		path := joinRoot(p.Root, replacement)
		return path, isFile(path)
	}

	if filepath.IsAbs(importPath) {
		return importPath, isFile(importPath)
	}

	// the importing file's directory has the highest priority, followed by the
	// project root and then the local import directories
	searchDirs := append([]string{fromDir, p.Root}, p.ImportDirs...)
	for _, dir := range searchDirs {
		if path := filepath.Join(dir, importPath); isFile(path) {
			return path, true
		}
	}

	return "", false
}

// ResolveRuntimeImport determines the path of a runtime module inside the
// runtime namespace root.  It fails if no root is configured or the module
// does not exist.
func ResolveRuntimeImport(modPath string) (string, bool) {
	if common.RuparsePath == "" {
		return "", false
	}

	path := filepath.Join(common.RuparsePath, filepath.FromSlash(strings.TrimPrefix(modPath, "/")))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	return path, true
}

// FindProjectRoot searches the given directory and its parents for a project
// file and returns the directory containing it
func FindProjectRoot(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		if checkProjectFile(filepath.Join(dir, common.ProjectFileName)) {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}

// checkProjectFile checks to see if a path holds a project file.  It only
// queries the name rather than doing a full load: a broken project file that
// the user did not ask for should not cause an error.
func checkProjectFile(path string) bool {
	if !isFile(path) {
		return false
	}

	tree, err := toml.LoadFile(path)
	if err != nil {
		return false
	}

	if tree.Has("name") {
		_, ok := tree.Get("name").(string)
		return ok
	}

	return false
}

func isFile(path string) bool {
	finfo, err := os.Stat(path)
	return err == nil && !finfo.IsDir()
}
