package deps

import (
	"path/filepath"
	"sort"
	"sync"

	"ruparse/common"
	"ruparse/logging"
	"ruparse/parser"
)

// SourceFile represents a file parsed as part of a project
type SourceFile struct {
	// ID is a unique identifier for the file that is based on its path
	ID uint

	// FilePath is the absolute path to the file
	FilePath string

	// LogContext is the log context for this file
	LogContext *logging.LogContext

	// Text is the full contents of the file
	Text string

	// Tree is the parse tree of the file (nil if parsing failed)
	Tree *parser.ParseTree

	// DependsOn is the set of files this file imports organized by ID
	DependsOn map[uint]*SourceFile

	// RuntimeImports lists the runtime modules this file imports in the order
	// they appear
	RuntimeImports []string
}

// NewSourceFile creates a new source file for the given absolute path and
// contents (does NOT perform parsing)
func NewSourceFile(abspath, text string) *SourceFile {
	return &SourceFile{
		ID:         common.GenerateIDFromPath(abspath),
		FilePath:   abspath,
		LogContext: &logging.LogContext{FilePath: abspath, Text: text},
		Text:       text,
		DependsOn:  make(map[uint]*SourceFile),
	}
}

// Name returns the file's name without its directory
func (sf *SourceFile) Name() string {
	return filepath.Base(sf.FilePath)
}

// Graph is the import graph of a project's source files.  Files may be added
// from multiple goroutines.
type Graph struct {
	files map[uint]*SourceFile
	m     sync.Mutex
}

// NewGraph creates a new empty graph
func NewGraph() *Graph {
	return &Graph{files: make(map[uint]*SourceFile)}
}

// Add adds a file to the graph.  If a file with the same ID is already present,
// that file is returned instead along with false.
func (g *Graph) Add(sf *SourceFile) (*SourceFile, bool) {
	g.m.Lock()
	defer g.m.Unlock()

	if existing, ok := g.files[sf.ID]; ok {
		return existing, false
	}

	g.files[sf.ID] = sf
	return sf, true
}

// Get looks up a file by its ID
func (g *Graph) Get(id uint) (*SourceFile, bool) {
	g.m.Lock()
	defer g.m.Unlock()

	sf, ok := g.files[id]
	return sf, ok
}

// Files returns all the files in the graph sorted by path
func (g *Graph) Files() []*SourceFile {
	g.m.Lock()
	defer g.m.Unlock()

	files := make([]*SourceFile, 0, len(g.files))
	for _, sf := range g.files {
		files = append(files, sf)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].FilePath < files[j].FilePath
	})

	return files
}

// FindCycle searches the graph for an import cycle.  If there is one, the
// files along it are returned with the first file repeated at the end.
func (g *Graph) FindCycle() []*SourceFile {
	// colors: absent = unvisited, 1 = on the current path, 2 = finished
	colors := make(map[uint]int)
	var path []*SourceFile

	var visit func(sf *SourceFile) []*SourceFile
	visit = func(sf *SourceFile) []*SourceFile {
		colors[sf.ID] = 1
		path = append(path, sf)

		for _, dep := range sortedDeps(sf) {
			switch colors[dep.ID] {
			case 1:
				for i, onPath := range path {
					if onPath == dep {
						return append(append([]*SourceFile(nil), path[i:]...), dep)
					}
				}
			case 0:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		colors[sf.ID] = 2
		return nil
	}

	for _, sf := range g.Files() {
		if colors[sf.ID] == 0 {
			if cycle := visit(sf); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}

// Order returns the files so that every file comes after the files it
// imports.  The graph must not contain cycles.
func (g *Graph) Order() []*SourceFile {
	done := make(map[uint]bool)
	var order []*SourceFile

	var visit func(sf *SourceFile)
	visit = func(sf *SourceFile) {
		done[sf.ID] = true

		for _, dep := range sortedDeps(sf) {
			if !done[dep.ID] {
				visit(dep)
			}
		}

		order = append(order, sf)
	}

	for _, sf := range g.Files() {
		if !done[sf.ID] {
			visit(sf)
		}
	}

	return order
}

// sortedDeps returns a file's dependencies in path order so that graph walks
// are deterministic
func sortedDeps(sf *SourceFile) []*SourceFile {
	deps := make([]*SourceFile, 0, len(sf.DependsOn))
	for _, dep := range sf.DependsOn {
		deps = append(deps, dep)
	}

	sort.Slice(deps, func(i, j int) bool {
		return deps[i].FilePath < deps[j].FilePath
	})

	return deps
}
