package find

import (
	"io"
	"os"
)

// dirFrame bundles an open directory handle with an owned copy of the
// directory's absolute path. One frame exists per directory currently being
// enumerated; the frame stack is its single owner.
type dirFrame struct {
	dir  *os.File
	path string
}

// openFrame opens a directory for enumeration. On failure no resources
// remain acquired.
func openFrame(path string) (*dirFrame, error) {
	dir, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &dirFrame{
		dir:  dir,
		path: path,
	}, nil
}

// entryRecord is the value produced by one directory read: the entry's leaf
// name, its composed full path and its stat.
type entryRecord struct {
	name string
	path string
	info os.FileInfo
}

// read advances the frame's cursor by one entry and materializes its record.
// End-of-stream surfaces as io.EOF. A failed stat is reported as an error;
// the driver treats it the same as end-of-stream.
func (f *dirFrame) read(flags Flags) (*entryRecord, error) {
	names, err := f.dir.Readdirnames(1)
	if err != nil {
		// io.EOF on exhaustion, otherwise a real readdir failure.
		return nil, err
	}
	if len(names) == 0 {
		return nil, io.EOF
	}

	name := names[0]

	// If the current path is /, do not bother adding another slash.
	path := f.path
	if path != "/" {
		path += "/"
	}
	path += name

	info, err := statOf(path, flags)
	if err != nil {
		return nil, err
	}

	return &entryRecord{
		name: name,
		path: path,
		info: info,
	}, nil
}

// close releases the directory handle. Safe to call more than once.
func (f *dirFrame) close() {
	if f == nil || f.dir == nil {
		return
	}

	f.dir.Close()
	f.dir = nil
}
