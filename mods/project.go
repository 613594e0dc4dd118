package mods

// Project represents a ruparse project: a grammar and the source files that
// should be parsed with it.  All paths are absolute.
type Project struct {
	// Name is the name of the project
	Name string

	// Root is the directory containing the project file
	Root string

	// GrammarPath is the path to the grammar definition file
	GrammarPath string

	// Entry is the node each source file is parsed from.  If it is empty, the
	// grammar's default entry is used.
	Entry string

	// Sources are the files parsing starts from; the files they import are
	// found and parsed as well
	Sources []string

	// ImportDirs is a list of additional directories searched for file
	// imports after the importing file's directory and the project root
	ImportDirs []string

	// PathReplacements maps import paths to the paths that should be loaded
	// instead.  Replacements are relative to the project root.
	PathReplacements map[string]string

	// ShouldCache indicates whether the decoded grammar should be cached
	ShouldCache bool

	// CacheDirectory is the directory grammar caches are stored in
	CacheDirectory string

	// LogLevel is the log level used when none is given on the command line
	LogLevel string
}

// IsValidIdentifier returns whether or not a given string would be a valid
// identifier (project name, variable name, etc.)
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}
