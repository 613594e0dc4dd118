package common

import (
	"hash/fnv"
	"strconv"
)

// GenerateIDFromPath takes an absolute path and converts it into a numeric ID;
// this is used by source files and grammar caches to generate their unique IDs
func GenerateIDFromPath(abspath string) uint {
	h := fnv.New32a()
	h.Write([]byte(abspath))
	return uint(h.Sum32())
}

// CacheFileName returns the name of the cache file for the given absolute path
func CacheFileName(abspath string) string {
	return strconv.FormatUint(uint64(GenerateIDFromPath(abspath)), 16) + CacheFileExtension
}
