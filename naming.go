package blobstore

import "strings"

// NormalizeName converts a user-provided object name to canonical form.
//
// It performs the following transformations:
//   - Trims surrounding whitespace
//   - Converts backslashes to forward slashes: `a\b` → "a/b"
//   - Collapses consecutive slashes: "a//b" → "a/b"
//   - Strips leading and trailing slashes: "/a/b/" → "a/b"
//
// NormalizeName is idempotent.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, `\`, "/")

	parts := strings.Split(name, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return strings.Join(result, "/")
}

// SplitKey splits a canonical name of the form "<key>/<path>" into the
// backend key and the relative path. Names without a separator are treated
// as bare keys with an empty path.
func SplitKey(name string) (key, path string) {
	key, path, _ = strings.Cut(name, "/")
	return key, path
}

// JoinKey builds the canonical name for an object committed under key with
// the given relative path.
func JoinKey(key, path string) string {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return key
	}
	return key + "/" + path
}
