package build

import (
	"strings"

	"ruparse/common"
	"ruparse/logging"
	"ruparse/parser"
)

// ImportKind distinguishes runtime imports from file imports
type ImportKind int

// Enumeration of import kinds
const (
	ImportRuntime ImportKind = iota // a module in the runtime namespace
	ImportFile                      // another source file
)

// Import is a single import found in a parse tree
type Import struct {
	Kind ImportKind

	// Path is the import path with its quotes and runtime marker removed
	Path string

	Position *logging.TextPosition
}

// ImportError is returned when an import path is malformed
type ImportError struct {
	Message  string
	Position *logging.TextPosition
}

func (ie *ImportError) Error() string {
	return ie.Message
}

// FindImports reads the imports accumulated in the given global of a parse
// tree.  Values other than string literals are skipped; a leading `#` in the
// literal selects the runtime namespace.
func FindImports(tree *parser.ParseTree, text, global string) ([]*Import, error) {
	var imports []*Import

	for _, node := range tree.Global(global) {
		content, ok := parser.StringContent(node, text)
		if !ok {
			continue
		}

		imp := &Import{Kind: ImportFile, Path: content, Position: node.Position(text)}
		if strings.HasPrefix(content, string(common.RuntimeImportMarker)) {
			imp.Kind = ImportRuntime
			imp.Path = content[1:]
		}

		if imp.Path == "" {
			return nil, &ImportError{Message: "import path must not be empty", Position: imp.Position}
		}

		imports = append(imports, imp)
	}

	return imports, nil
}
