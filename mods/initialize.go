package mods

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ruparse/common"

	"github.com/pelletier/go-toml"
)

// InitProject creates a new project file with the given name at the given path
func InitProject(name, path, grammarPath string, enableCaching bool) error {
	// convert the project directory to the path to project file
	projFilePath := filepath.Join(path, common.ProjectFileName)

	// check to see if a project already exists
	_, err := os.Stat(projFilePath)
	if err == nil {
		return errors.New("project file already exists")
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("project file error: %s", err.Error())
	}

	// validate project name
	if !IsValidIdentifier(name) {
		return errors.New("project name must be a valid identifier")
	}

	if grammarPath == "" {
		grammarPath = name + common.GrammarFileExtension
	}

	tp := &tomlProject{
		Name:        name,
		Grammar:     grammarPath,
		Sources:     []string{"main.txt"},
		ShouldCache: enableCaching,
		LogLevel:    "verbose",
		Version:     common.RuparseVersion,
	}

	if enableCaching {
		tp.CacheDirectory = ".ruparse"
	}

	// encode and save project to file
	f, err := os.Create(projFilePath)
	if err != nil {
		return fmt.Errorf("error creating project file: %s", err.Error())
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(tp); err != nil {
		return fmt.Errorf("error encoding TOML %s", err.Error())
	}

	return nil
}
