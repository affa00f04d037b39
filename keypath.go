package lexicon

import "strings"

// ValidPath reports whether path is a syntactically valid dotted path:
// non-empty, no leading or trailing dot, no empty segment.
func ValidPath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// keySplit is one (ancestor namespace, suffix key) decomposition of a full key.
type keySplit struct {
	namespace string
	key       string
}

// keySplits enumerates every decomposition of fullKey into a non-empty
// namespace and a non-empty suffix key, shortest namespace first. Single
// segment paths produce no splits.
func keySplits(fullKey string) []keySplit {
	var splits []keySplit
	for i := 0; i < len(fullKey); i++ {
		if fullKey[i] == '.' {
			splits = append(splits, keySplit{namespace: fullKey[:i], key: fullKey[i+1:]})
		}
	}
	return splits
}

// pathPrefixes returns every cumulative dotted prefix of path, shortest
// first, ending with path itself.
func pathPrefixes(path string) []string {
	var prefixes []string
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			prefixes = append(prefixes, path[:i])
		}
	}
	return append(prefixes, path)
}

// joinKey joins a namespace path and a key into a full key. An empty
// namespace yields the bare key.
func joinKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + "." + key
}

// headSegment splits path into its first segment and the remainder after the
// first dot. The remainder is empty for single segment paths.
func headSegment(path string) (string, string) {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}
