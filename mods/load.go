package mods

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"ruparse/common"

	"github.com/pelletier/go-toml"
)

// tomlProject represents the project file as it is encoded in TOML
type tomlProject struct {
	Name             string            `toml:"name"`
	Grammar          string            `toml:"grammar"`
	Entry            string            `toml:"entry,omitempty"`
	Sources          []string          `toml:"sources"`
	ImportDirs       []string          `toml:"import-dirs,omitempty"`
	PathReplacements map[string]string `toml:"path-replacements,omitempty"`
	ShouldCache      bool              `toml:"caching"`
	CacheDirectory   string            `toml:"cache-directory,omitempty"`
	LogLevel         string            `toml:"log-level,omitempty"`
	Version          string            `toml:"ruparse-version,omitempty"`
}

var logLevels = map[string]struct{}{
	"":        {},
	"silent":  {},
	"error":   {},
	"warn":    {},
	"warning": {},
	"verbose": {},
}

// LoadProject loads and validates the project in the given directory
func LoadProject(path string) (*Project, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// open file
	f, err := os.Open(filepath.Join(root, common.ProjectFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// unmarshal the contents
	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tp := &tomlProject{}
	if err := toml.Unmarshal(buff, tp); err != nil {
		return nil, err
	}

	if err := validateProject(root, tp); err != nil {
		return nil, err
	}

	project := &Project{
		Name:             tp.Name,
		Root:             root,
		GrammarPath:      joinRoot(root, tp.Grammar),
		Entry:            tp.Entry,
		ShouldCache:      tp.ShouldCache,
		PathReplacements: tp.PathReplacements,
		LogLevel:         tp.LogLevel,
	}

	for _, src := range tp.Sources {
		project.Sources = append(project.Sources, joinRoot(root, src))
	}

	for _, dir := range tp.ImportDirs {
		project.ImportDirs = append(project.ImportDirs, joinRoot(root, dir))
	}

	if tp.ShouldCache {
		if tp.CacheDirectory == "" {
			project.CacheDirectory = filepath.Join(root, ".ruparse")
		} else {
			project.CacheDirectory = joinRoot(root, tp.CacheDirectory)
		}
	}

	return project, nil
}

// validateProject checks that the project file contents are valid
func validateProject(root string, tp *tomlProject) error {
	if tp.Name == "" {
		return fmt.Errorf("missing project name for project at %s", root)
	}

	if !IsValidIdentifier(tp.Name) {
		return fmt.Errorf("project name `%s` must be a valid identifier", tp.Name)
	}

	if tp.Grammar == "" {
		return errors.New("project must specify a grammar file")
	}

	if len(tp.Sources) == 0 {
		return errors.New("project must specify at least one source file")
	}

	if _, ok := logLevels[tp.LogLevel]; !ok {
		return fmt.Errorf("invalid log level `%s`", tp.LogLevel)
	}

	if tp.Version != "" && tp.Version != common.RuparseVersion {
		return fmt.Errorf("project requires ruparse version %s but this is version %s", tp.Version, common.RuparseVersion)
	}

	return nil
}

// joinRoot makes a project-relative path absolute
func joinRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(root, path)
}
