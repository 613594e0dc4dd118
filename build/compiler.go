package build

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"sync"

	"ruparse/common"
	"ruparse/deps"
	"ruparse/lang"
	"ruparse/logging"
	"ruparse/mods"
	"ruparse/parser"
	"ruparse/syntax"
)

// Compiler is the data structure responsible for maintaining all high-level
// state of a project build: the language in use and the graph of parsed files
type Compiler struct {
	// project is the project being built
	project *mods.Project

	// language is the language loaded from the project's grammar; it is shared
	// by all the goroutines parsing files
	language *lang.Language

	// graph is the import graph of all the files in the project
	graph *deps.Graph

	// links are the file imports found so far
	links []importLink
}

// importLink is an import of the file at `path` by `from`
type importLink struct {
	from *deps.SourceFile
	path string
}

// NewCompiler creates a new compiler for a given project
func NewCompiler(project *mods.Project) *Compiler {
	return &Compiler{
		project: project,
		graph:   deps.NewGraph(),
	}
}

// Language returns the language the project was parsed with
func (c *Compiler) Language() *lang.Language {
	return c.language
}

// Files returns every file that was parsed in dependency order: imported files
// come before the files importing them
func (c *Compiler) Files() []*deps.SourceFile {
	return c.graph.Order()
}

// Analyze loads the project's grammar, parses every file reachable from the
// project's sources and checks the import graph.  It handles all errors
// appropriately and returns a boolean indicating whether or not it succeeded.
func (c *Compiler) Analyze() bool {
	logging.LogBeginPhase("Loading")

	cacheDir := ""
	if c.project.ShouldCache {
		cacheDir = c.project.CacheDirectory
	}

	language, cached, err := lang.Load(c.project.GrammarPath, cacheDir)
	if err != nil {
		logGrammarError(c.project.GrammarPath, err)
		return false
	}

	c.language = language
	grammarCtx := &logging.LogContext{FilePath: c.project.GrammarPath}
	for _, w := range language.Warnings {
		logging.LogCompileWarning(grammarCtx, w.String(), logging.LMKGrammar, nil)
	}

	logging.LogEndPhase()

	if cached {
		logging.LogInfo("Cache", "loaded grammar from "+cacheDir)
	}

	logging.LogBeginPhase("Parsing")

	// files are parsed in waves: each wave is parsed concurrently and the file
	// imports it discovers make up the next wave
	wave := make([]string, 0, len(c.project.Sources))
	for _, src := range c.project.Sources {
		wave = append(wave, filepath.Clean(src))
	}

	for len(wave) > 0 {
		files := c.parseWave(wave)
		wave = c.resolveImports(files)
	}

	c.linkImports()

	if !logging.ShouldProceed() {
		return false
	}

	logging.LogEndPhase()

	logging.LogBeginPhase("Resolving")

	if cycle := c.graph.FindCycle(); cycle != nil {
		names := make([]string, len(cycle))
		for i, sf := range cycle {
			names[i] = sf.Name()
		}

		logging.LogConfigError("Import", "import cycle detected: "+strings.Join(names, " -> "))
		return false
	}

	logging.LogEndPhase()
	return true
}

// logGrammarError logs an error loading the grammar.  Validation problems are
// attached to the grammar file; they carry no position.
func logGrammarError(grammarPath string, err error) {
	var vf *lang.ValidationFailure
	if errors.As(err, &vf) {
		grammarCtx := &logging.LogContext{FilePath: grammarPath}
		for _, ve := range vf.Result.Errors {
			logging.LogCompileError(grammarCtx, ve.Error(), logging.LMKGrammar, nil)
		}

		return
	}

	logging.LogConfigError("Grammar", "error loading grammar: "+err.Error())
}

// parseWave parses a list of files concurrently and returns the ones that
// were newly added to the graph
func (c *Compiler) parseWave(paths []string) []*deps.SourceFile {
	fchan := make(chan *deps.SourceFile)

	wg := &sync.WaitGroup{}
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			c.initFile(fchan, path)
		}(path)
	}

	go func() {
		wg.Wait()
		close(fchan)
	}()

	var files []*deps.SourceFile
	for sf := range fchan {
		if sf != nil {
			files = append(files, sf)
		}
	}

	return files
}

// initFile attempts to load and parse a file concurrently.  The file is
// written to the channel if it was newly added to the graph and parsed
// successfully; otherwise an appropriate error is logged and `nil` is written.
func (c *Compiler) initFile(fchan chan *deps.SourceFile, abspath string) {
	buff, err := ioutil.ReadFile(abspath)
	if err != nil {
		logging.LogConfigError("File", fmt.Sprintf("unable to read %s: %s", abspath, err.Error()))
		fchan <- nil
		return
	}

	sf, added := c.graph.Add(deps.NewSourceFile(abspath, string(buff)))
	if !added {
		// another wave or goroutine already owns this file
		fchan <- nil
		return
	}

	tree, _, err := c.language.Parse(sf.Text, c.project.Entry)
	if err != nil {
		logSourceError(sf, err)
		fchan <- nil
		return
	}

	sf.Tree = tree
	fchan <- sf
}

// logSourceError logs an error produced while lexing or parsing a file
func logSourceError(sf *deps.SourceFile, err error) {
	var pe *syntax.PreprocessorError
	var parseErr *parser.ParseError

	switch {
	case errors.As(err, &pe):
		logging.LogCompileError(sf.LogContext, pe.Message, logging.LMKToken, pe.Position(sf.Text))
	case errors.As(err, &parseErr):
		logging.LogCompileError(sf.LogContext, parseErr.Message, logging.LMKSyntax, parseErr.Position)
	default:
		// the standard passes and the engine only produce the two errors above
		logging.LogFatal("unexpected error parsing %s: %s", sf.FilePath, err.Error())
	}
}

// resolveImports reads the imports of each parsed file and records a link for
// every file import.  It returns the paths of imported files that are not yet
// in the graph.
func (c *Compiler) resolveImports(files []*deps.SourceFile) []string {
	if c.language.ImportGlobal == "" {
		return nil
	}

	var next []string
	queued := make(map[string]bool)

	for _, sf := range files {
		imports, err := FindImports(sf.Tree, sf.Text, c.language.ImportGlobal)
		if err != nil {
			ie := err.(*ImportError)
			logging.LogCompileError(sf.LogContext, ie.Message, logging.LMKImport, ie.Position)
			continue
		}

		for _, imp := range imports {
			if imp.Kind == ImportRuntime {
				sf.RuntimeImports = append(sf.RuntimeImports, imp.Path)

				if common.RuparsePath != "" {
					if _, ok := mods.ResolveRuntimeImport(imp.Path); !ok {
						logging.LogCompileWarning(
							sf.LogContext,
							fmt.Sprintf("runtime module `%s` was not found in %s", imp.Path, common.RuparsePath),
							logging.LMKImport,
							imp.Position,
						)
					}
				}

				continue
			}

			path, ok := c.project.ResolveImport(filepath.Dir(sf.FilePath), imp.Path)
			if !ok {
				logging.LogCompileError(sf.LogContext, fmt.Sprintf("unable to locate imported file `%s`", imp.Path), logging.LMKImport, imp.Position)
				continue
			}

			path = filepath.Clean(path)
			c.links = append(c.links, importLink{from: sf, path: path})

			if _, parsed := c.graph.Get(common.GenerateIDFromPath(path)); !parsed && !queued[path] {
				queued[path] = true
				next = append(next, path)
			}
		}
	}

	return next
}

// linkImports connects every importing file to the files it imports.  Links
// to files that failed to parse are skipped since an error has already been
// logged for them.
func (c *Compiler) linkImports() {
	for _, l := range c.links {
		if dep, ok := c.graph.Get(common.GenerateIDFromPath(l.path)); ok && dep.Tree != nil {
			l.from.DependsOn[dep.ID] = dep
		}
	}
}
