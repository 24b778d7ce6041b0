package tarbuild

import (
	"context"

	"github.com/mwantia/tarbuild/data"
	"github.com/mwantia/tarbuild/sink"
)

// Tree pairs an on-disk starting path with the logical member name its
// entries are archived under.
type Tree struct {
	Path       string
	MemberName string
}

// BuildToSink archives the given trees into a named stream created on dest
// and returns the manifest of written members. The stream is closed even
// when a tree fails; the first error wins.
func BuildToSink(ctx context.Context, dest sink.Sink, name string, trees []Tree, opts ...BuilderOption) ([]*data.MemberRecord, error) {
	stream, err := dest.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	builder, err := New(stream, opts...)
	if err != nil {
		stream.Close()
		return nil, err
	}

	for _, tree := range trees {
		memberName := tree.MemberName
		if memberName == "" {
			memberName = tree.Path
		}

		if err := builder.ArchiveTree(ctx, tree.Path, memberName); err != nil {
			builder.Close()
			stream.Close()
			return nil, err
		}
	}

	if err := builder.Close(); err != nil {
		stream.Close()
		return nil, err
	}

	return builder.Manifest(), stream.Close()
}
