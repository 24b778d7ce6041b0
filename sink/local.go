package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalSink writes archives as files under a root directory.
type LocalSink struct {
	root string
}

// NewLocal creates a sink rooted at the given directory. The directory is
// created on first use if it does not exist.
func NewLocal(root string) *LocalSink {
	return &LocalSink{
		root: filepath.Clean(root),
	}
}

// Name returns the identifier name defined for this sink.
func (*LocalSink) Name() string {
	return "local"
}

func (ls *LocalSink) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(ls.root, 0755); err != nil {
		return nil, err
	}

	return os.Create(filepath.Join(ls.root, filepath.Base(name)))
}
