package common

const (
	GrammarFileExtension = ".toml"
	ProjectFileName      = "ruparse.toml"
	CacheFileExtension   = ".rpcache"
	RuparseVersion       = "0.1.0"

	// RuntimeImportMarker prefixes import paths that resolve against the host
	// runtime's built-in namespace instead of the filesystem
	RuntimeImportMarker = '#'
)

// RuparsePath is the path to the runtime namespace root (set from the
// RUPARSE_PATH environment variable by the CLI, may be empty)
var RuparsePath = ""
