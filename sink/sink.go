// Package sink provides destinations for built archive streams: a local
// directory, an S3 bucket or in-memory buffers for tests. A sink hands out
// one write stream per archive; the builder writes the tar stream through it
// and closes it when the build is done.
package sink

import (
	"context"
	"io"
)

// Sink creates named archive streams.
type Sink interface {
	// Name returns the identifier name defined for this sink.
	Name() string

	// Create opens a write stream for an archive with the given name.
	// The returned writer must be closed to finalize the archive; Close
	// reports any deferred storage error.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}
