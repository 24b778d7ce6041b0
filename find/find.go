package find

import (
	"errors"
	"io/fs"
	"os"

	"github.com/mwantia/tarbuild/data"
	"github.com/mwantia/tarbuild/data/errs"
)

// Builder is the slice of the archive builder the traversal engine needs:
// access to its optional error accumulator. A nil accumulator is tolerated;
// the engine then skips recording descriptive errors and treats every
// visitor error as fatal.
type Builder interface {
	Errors() *errs.Accumulator
}

// Visitor is invoked once per reachable entry with the entry's on-disk path,
// its logical member name and its stat.
//
// The return value is tri-valued and interpreted by sign only:
//
//	> 0  accept the entry; if it is a directory, descend into it
//	= 0  skip the entry; if it is a directory, do not descend
//	< 0  error; the accumulator's fatality decides between skip and abort
type Visitor func(b Builder, diskPath, memberName string, info os.FileInfo) int

// Find walks every entry reachable from path in pre-order depth-first order
// and invokes visit for each. Entries are reported under memberName: when
// memberName differs from path, each entry's logical name is memberName plus
// the entry's path suffix after path. Both path and memberName are
// canonicalized before the first visitor call.
//
// Find returns nil on clean completion, including when the visitor prunes
// the root or the root is not a directory. It returns a non-nil error on any
// fatal abort; by then every frame opened during the walk has been closed.
func Find(b Builder, path, memberName string, visit Visitor, flags Flags) error {
	var acc *errs.Accumulator
	if b != nil {
		acc = b.Errors()
	}

	cleanPath, err := data.CleanPath(path)
	if err != nil {
		return err
	}

	cleanMemberName, err := data.CleanPath(memberName)
	if err != nil {
		return err
	}

	dirs := newFrameStack()
	dirs.setDestructor(func(frame *dirFrame) {
		frame.close()
	})
	defer dirs.destroy()

	st, err := statOf(cleanPath, flags)
	if err != nil {
		return errs.StatPath(err, cleanPath)
	}

	// If the root is not wanted by the visitor, or is not a directory, the
	// traversal machinery below is never engaged.
	res := visit(b, cleanPath, cleanMemberName, st)

	if res == 0 {
		return nil
	} else if res < 0 {
		return visitorError(acc, cleanPath)
	}

	if !st.IsDir() {
		return nil
	}

	root, err := openFrame(cleanPath)
	if err != nil {
		if acc != nil {
			acc.Set(errs.SeverityWarn, err, "Unable to open directory", cleanPath)
		}

		return errs.OpenDirectory(err, cleanPath)
	}

	dirs.push(root)

	for {
		cwd := dirs.top()
		if cwd == nil {
			break
		}

		item, err := cwd.read(flags)
		if err != nil {
			// Exhausted, or a failed read treated identically: the frame
			// is done.
			if old := dirs.pop(); old != nil {
				old.close()
			}

			continue
		}

		// Readdirnames never yields "." or "..", so every record read here
		// is a real child entry.

		// Report the entry under a substituted member name derived from the
		// real path, when one applies.
		res := visit(b, item.path, substMemberName(cleanPath, cleanMemberName, item.path), item.info)

		if res == 0 {
			continue
		} else if res < 0 {
			if acc != nil && !acc.IsFatal() {
				continue
			}

			return visitorError(acc, item.path)
		}

		if item.info.IsDir() {
			sub, err := openFrame(item.path)
			if err != nil {
				if acc != nil {
					acc.Set(errs.SeverityWarn, err, "Unable to open directory", item.path)
				}

				// Unreadable subtrees are common; tolerate them and keep
				// walking siblings. Anything else aborts.
				if errors.Is(err, fs.ErrPermission) {
					continue
				}

				return errs.OpenDirectory(err, item.path)
			}

			dirs.push(sub)
		}
	}

	return nil
}

// substMemberName rewrites current under memberName. When path and
// memberName are equal there is nothing to rewrite and the on-disk path is
// reported as-is. Both inputs are canonicalized, so path is a byte prefix of
// every descendant's on-disk path and the rewrite is a single splice.
func substMemberName(path, memberName, current string) string {
	if path == memberName {
		return current
	}

	return memberName + current[len(path):]
}

func visitorError(acc *errs.Accumulator, path string) error {
	if acc != nil {
		if last, ok := acc.Last(); ok {
			return errs.VisitorAborted(last, path)
		}
	}

	return errs.VisitorAborted(nil, path)
}
