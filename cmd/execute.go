package cmd

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"ruparse/build"
	"ruparse/common"
	"ruparse/lang"
	"ruparse/logging"
	"ruparse/mods"
	"ruparse/parser"
	"ruparse/syntax"

	"github.com/ComedicChimera/olive"
)

// Execute runs the main `ruparse` application
func Execute() {
	// the runtime namespace is optional: without it runtime imports are
	// recorded but never checked
	if !initRuparsePath() {
		return
	}

	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("ruparse", "ruparse runs data-driven grammars over source text", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	lexCmd := cli.AddSubcommand("lex", "print the tokens of a file", true)
	lexCmd.AddPrimaryArg("file", "the file to lex", true)
	lexCmd.AddStringArg("grammar", "g", "the grammar file to use", false)

	checkCmd := cli.AddSubcommand("check", "validate a grammar file", true)
	checkCmd.AddPrimaryArg("grammar", "the grammar file to check", true)
	checkCmd.AddFlag("docs", "d", "print the nodes of the grammar along with their docs")

	parseCmd := cli.AddSubcommand("parse", "parse a file and print its tree", true)
	parseCmd.AddPrimaryArg("file", "the file to parse", true)
	parseCmd.AddStringArg("grammar", "g", "the grammar file to use", false)
	parseCmd.AddStringArg("entry", "e", "the node to start parsing from", false)

	buildCmd := cli.AddSubcommand("build", "parse every file in a project", true)
	buildCmd.AddPrimaryArg("project-path", "the path to the project directory", true)

	initCmd := cli.AddSubcommand("init", "initialize a project", true)
	initCmd.AddPrimaryArg("name", "the name of the project", true)
	initCmd.AddStringArg("grammar", "g", "the grammar file of the project", false)
	initCmd.AddFlag("caching", "ch", "indicate whether grammar caching should be enabled for this project")

	cli.AddSubcommand("version", "print the ruparse version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return
	}

	loglevel := result.Arguments["loglevel"].(string)

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "lex":
		execLexCommand(subResult, loglevel)
	case "check":
		execCheckCommand(subResult)
	case "parse":
		execParseCommand(subResult, loglevel)
	case "build":
		execBuildCommand(subResult, loglevel)
	case "init":
		execInitCommand(subResult)
	case "version":
		logging.PrintInfoMessage("Ruparse Version", common.RuparseVersion)
	}
}

// execLexCommand executes the lex subcommand: it prints one token per line
func execLexCommand(result *olive.ArgParseResult, loglevel string) {
	sf, language, _, ok := loadInput(result)
	if !ok {
		return
	}

	logging.Initialize(loglevel)

	tokens, err := language.Lexer.Lex(sf.Text)
	if err != nil {
		var pe *syntax.PreprocessorError
		if errors.As(err, &pe) {
			logging.LogCompileError(sf.LogContext, pe.Message, logging.LMKToken, pe.Position(sf.Text))
		} else {
			logging.LogConfigError("Lex", err.Error())
		}

		logging.LogFinished()
		return
	}

	for _, tok := range tokens {
		fmt.Printf("%4d:%-4d %-24s %q\n", tok.Line, tok.Col, tok.Kind, tok.Text(sf.Text))
	}
}

// execCheckCommand executes the check subcommand: it reports every problem
// with a grammar file and optionally prints its nodes
func execCheckCommand(result *olive.ArgParseResult) {
	grammarPath, _ := result.PrimaryArg()

	language, err := lang.LoadFile(grammarPath)
	if err != nil {
		var vf *lang.ValidationFailure
		if !errors.As(err, &vf) {
			logging.PrintErrorMessage("Grammar Load Error", err)
			return
		}

		for _, w := range vf.Result.Warnings {
			logging.PrintWarningMessage("Grammar Warning", w.String())
		}

		for _, ve := range vf.Result.Errors {
			logging.PrintErrorMessage("Grammar Error", ve)
		}

		return
	}

	for _, w := range language.Warnings {
		logging.PrintWarningMessage("Grammar Warning", w.String())
	}

	if result.HasFlag("docs") {
		for _, name := range language.Grammar.NodeNames() {
			n, _ := language.Grammar.Node(name)
			if n.Docs == "" {
				fmt.Println(name)
			} else {
				fmt.Printf("%s: %s\n", name, n.Docs)
			}
		}

		for _, name := range language.Grammar.EnumeratorNames() {
			e, _ := language.Grammar.Enumerator(name)

			values := make([]string, len(e.Values))
			for i, v := range e.Values {
				values[i] = v.String()
			}

			fmt.Printf("%s: one of %s\n", name, strings.Join(values, ", "))
		}
	}

	logging.PrintInfoMessage("Grammar OK", fmt.Sprintf("`%s` is valid", language.Name))
}

// execParseCommand executes the parse subcommand: it prints the parse tree
// and globals of a single file
func execParseCommand(result *olive.ArgParseResult, loglevel string) {
	sf, language, entry, ok := loadInput(result)
	if !ok {
		return
	}

	if entryArg, ok := result.Arguments["entry"]; ok {
		entry = entryArg.(string)
	}

	logging.Initialize(loglevel)

	language.Parser.SetDiagnostics(func(d *parser.Diagnostic) {
		pos := "start"
		if d.Token != nil {
			pos = fmt.Sprintf("%d:%d", d.Token.Line, d.Token.Col)
		}

		switch d.Kind {
		case parser.PrintDiagnostic:
			logging.PrintInfoMessage("Print", fmt.Sprintf("[%s %s] %s", d.Node, pos, d.Message))
		case parser.DebugDiagnostic:
			logging.PrintInfoMessage("Debug", fmt.Sprintf("[%s %s] %s = %s", d.Node, pos, d.Message, parser.Format(d.Value, sf.Text)))
		}
	})

	tree, _, err := language.Parse(sf.Text, entry)
	if err != nil {
		var pe *syntax.PreprocessorError
		var parseErr *parser.ParseError

		switch {
		case errors.As(err, &pe):
			logging.LogCompileError(sf.LogContext, pe.Message, logging.LMKToken, pe.Position(sf.Text))
		case errors.As(err, &parseErr):
			logging.LogCompileError(sf.LogContext, parseErr.Message, logging.LMKSyntax, parseErr.Position)
		default:
			logging.LogConfigError("Parse", err.Error())
		}

		logging.LogFinished()
		return
	}

	fmt.Println(parser.Format(tree.Root, sf.Text))

	for _, name := range language.Grammar.Globals() {
		values := tree.Global(name)
		if len(values) > 0 {
			fmt.Printf("global %s: %s\n", name, parser.Format(values, sf.Text))
		}
	}
}

// execBuildCommand executes the build subcommand and handles all errors
func execBuildCommand(result *olive.ArgParseResult, loglevel string) {
	// extract CLI data
	projectRelPath, _ := result.PrimaryArg()

	projectPath, err := filepath.Abs(projectRelPath)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return
	}

	// attempt to load the project
	project, err := mods.LoadProject(projectPath)
	if err != nil {
		logging.PrintErrorMessage("Project Load Error", err)
		return
	}

	// the command line log level only overrides the project's when it was set
	// to something other than the default
	if project.LogLevel != "" && loglevel == "verbose" {
		loglevel = project.LogLevel
	}

	// initialize the logger
	logging.Initialize(loglevel)
	logging.LogHeader(project.GrammarPath, project.ShouldCache)

	c := build.NewCompiler(project)
	if c.Analyze() {
		for _, sf := range c.Files() {
			logging.LogInfo("Parsed", sf.FilePath)
		}
	}

	logging.LogFinished()
}

// execInitCommand executes the init subcommand.  It handles all errors related
// to this command
func execInitCommand(result *olive.ArgParseResult) {
	workDir, err := os.Getwd()
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return
	}

	name, _ := result.PrimaryArg()

	grammarPath := ""
	if grammarArg, ok := result.Arguments["grammar"]; ok {
		grammarPath = grammarArg.(string)
	}

	if err := mods.InitProject(name, workDir, grammarPath, result.HasFlag("caching")); err != nil {
		logging.PrintErrorMessage("Project Init Error", err)
	}
}

// -----------------------------------------------------------------------------

// loadInput reads the file named by the primary argument and loads the
// language to process it with.  The grammar comes from the `grammar` argument
// or, if it is missing, from the project enclosing the file.  It also returns
// the project's entry node when there is one.
func loadInput(result *olive.ArgParseResult) (*inputFile, *lang.Language, string, bool) {
	fileRelPath, _ := result.PrimaryArg()

	filePath, err := filepath.Abs(fileRelPath)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return nil, nil, "", false
	}

	buff, err := ioutil.ReadFile(filePath)
	if err != nil {
		logging.PrintErrorMessage("File Error", err)
		return nil, nil, "", false
	}

	grammarPath, entry, cacheDir := "", "", ""
	if grammarArg, ok := result.Arguments["grammar"]; ok {
		grammarPath = grammarArg.(string)
	} else if root, ok := mods.FindProjectRoot(filepath.Dir(filePath)); ok {
		project, err := mods.LoadProject(root)
		if err != nil {
			logging.PrintErrorMessage("Project Load Error", err)
			return nil, nil, "", false
		}

		grammarPath, entry = project.GrammarPath, project.Entry
		if project.ShouldCache {
			cacheDir = project.CacheDirectory
		}
	} else {
		logging.PrintErrorMessage("CLI Usage Error", errors.New("no grammar given and no project encloses the file"))
		return nil, nil, "", false
	}

	language, _, err := lang.Load(grammarPath, cacheDir)
	if err != nil {
		logging.PrintErrorMessage("Grammar Load Error", err)
		return nil, nil, "", false
	}

	text := string(buff)
	return &inputFile{
		Text:       text,
		LogContext: &logging.LogContext{FilePath: filePath, Text: text},
	}, language, entry, true
}

// inputFile is a single file given on the command line
type inputFile struct {
	Text       string
	LogContext *logging.LogContext
}

// initRuparsePath checks for a valid runtime namespace path and initializes
// its global value.
func initRuparsePath() bool {
	if ruparsePath, ok := os.LookupEnv("RUPARSE_PATH"); ok {
		finfo, err := os.Stat(ruparsePath)

		if err != nil {
			logging.PrintErrorMessage("Config Error", fmt.Errorf("error loading RUPARSE_PATH: %s", err.Error()))
			return false
		}

		if !finfo.IsDir() {
			logging.PrintErrorMessage("Config Error", errors.New("error loading RUPARSE_PATH: must point to a directory"))
			return false
		}

		common.RuparsePath = ruparsePath
	}

	return true
}
