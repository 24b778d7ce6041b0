// Package find implements the recursive filesystem traversal engine used by
// the archive builder. Traversal is iterative, pre-order and depth-first,
// driven by an explicit stack of open directory frames so arbitrarily deep
// trees never grow the call stack and teardown is a single stack destroy on
// every exit path.
package find

import "os"

// Flags is a bitset of traversal options. Unknown bits are reserved and
// ignored.
type Flags int

const (
	// FollowSymlinks stats through symbolic links. When clear, the stat
	// passed to the visitor reflects the link itself.
	FollowSymlinks Flags = 1 << iota
)

// statOf retrieves metadata for path, resolving symbolic links only when
// FollowSymlinks is set. The follow choice is a traversal-wide policy, so it
// lives here rather than with every call site.
func statOf(path string, flags Flags) (os.FileInfo, error) {
	if flags&FollowSymlinks != 0 {
		return os.Stat(path)
	}

	return os.Lstat(path)
}
