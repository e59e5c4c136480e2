package util

import (
	"fmt"
	"hash/fnv"
)

func ContainsStr(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

// Hash returns a short stable hex digest of the given string.
// Used to flatten arbitrary text (e.g. search terms) into cache key segments.
func Hash(s string) string {
	hasher := fnv.New64a()
	hasher.Write([]byte(s))
	return fmt.Sprintf("%x", hasher.Sum64())
}
