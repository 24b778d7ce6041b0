package data

import (
	"path/filepath"
	"strings"

	"github.com/mwantia/tarbuild/data/errs"
)

// CleanPath canonicalizes a path: redundant separators and "." segments
// collapsed, trailing separators removed. Empty paths are rejected so the
// traversal engine never operates on an unnamed root.
func CleanPath(path string) (string, error) {
	if len(path) == 0 {
		return "", errs.InvalidPath(nil, path)
	}

	return filepath.Clean(path), nil
}

// ToMemberKey normalizes a logical member name for use as an archive-internal
// key: separators become forward slashes and the leading slash is dropped,
// matching how tar headers name their members.
func ToMemberKey(name string) string {
	key := filepath.ToSlash(name)
	return strings.TrimPrefix(key, "/")
}
