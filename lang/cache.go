package lang

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"ruparse/common"
)

// Load loads a language from a grammar file.  If cacheDir is not empty, the
// decoded definition is cached there and reused for as long as the cache is
// newer than the grammar file.  The second return value reports whether the
// cache was used.
func Load(path, cacheDir string) (*Language, bool, error) {
	abspath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	if cacheDir != "" {
		if gf, ok := loadCachedGrammar(abspath, cacheDir); ok {
			language, err := gf.build()
			return language, true, err
		}
	}

	gf, err := readGrammarFile(abspath)
	if err != nil {
		return nil, false, err
	}

	language, err := gf.build()
	if err != nil {
		return nil, false, err
	}

	// only valid grammars are cached
	if cacheDir != "" {
		if err := saveCachedGrammar(gf, abspath, cacheDir); err != nil {
			return nil, false, err
		}
	}

	return language, false, nil
}

// CachePath returns the path of the cache file for a grammar file
func CachePath(abspath, cacheDir string) string {
	return filepath.Join(cacheDir, common.CacheFileName(abspath))
}

// loadCachedGrammar loads a cached grammar definition if one exists and is up
// to date.  Unreadable caches are treated as missing.
func loadCachedGrammar(abspath, cacheDir string) (*grammarFile, bool) {
	srcInfo, err := os.Stat(abspath)
	if err != nil {
		return nil, false
	}

	cachePath := CachePath(abspath, cacheDir)
	cacheInfo, err := os.Stat(cachePath)
	if err != nil || cacheInfo.ModTime().Before(srcInfo.ModTime()) {
		return nil, false
	}

	f, err := os.Open(cachePath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	gf := &grammarFile{}
	if err := gob.NewDecoder(f).Decode(gf); err != nil {
		return nil, false
	}

	return gf, true
}

// saveCachedGrammar dumps a decoded grammar definition into the cache
func saveCachedGrammar(gf *grammarFile, abspath, cacheDir string) error {
	if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
		return err
	}

	// we want to truncate the original file or create a new one
	f, err := os.Create(CachePath(abspath, cacheDir))
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(gf)
}
