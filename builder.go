// Package tarbuild builds tar archives from on-disk trees. Each tree is
// walked by the find package's traversal engine and written member by member
// under a logical name that may differ from the on-disk path. Errors raised
// during a build are collected on an accumulator, so a single unreadable
// subtree does not have to fail the whole archive.
package tarbuild

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/mwantia/tarbuild/data"
	"github.com/mwantia/tarbuild/data/errs"
	"github.com/mwantia/tarbuild/find"
	"github.com/mwantia/tarbuild/log"
)

const copyBufSize = 32768

// Builder writes tar archives. It owns the error accumulator consulted by
// the traversal engine and keeps a sorted index of written members for
// duplicate suppression and manifest listing.
//
// A Builder is not safe for concurrent use; archive trees one at a time.
type Builder struct {
	mu sync.Mutex

	id   string
	opts *BuilderOptions
	log  *log.Logger
	acc  errs.Accumulator

	tw   *tar.Writer
	gz   *gzip.Writer
	bufw *bufio.Writer

	members *btree.Map[string, *data.MemberRecord]
	closed  bool
}

// New creates a Builder writing the archive stream to w.
func New(w io.Writer, opts ...BuilderOption) (*Builder, error) {
	options := newDefaultBuilderOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	b := &Builder{
		id:      uuid.NewString(),
		opts:    options,
		log:     options.Logger.Named("builder"),
		bufw:    bufio.NewWriterSize(nil, copyBufSize),
		members: btree.NewMap[string, *data.MemberRecord](0),
	}

	if options.Gzip {
		b.gz = gzip.NewWriter(w)
		b.tw = tar.NewWriter(b.gz)
	} else {
		b.tw = tar.NewWriter(w)
	}

	return b, nil
}

// ID returns the unique identifier of this build, used to key catalog
// records.
func (b *Builder) ID() string {
	return b.id
}

// Errors exposes the build's error accumulator. Warnings recorded during a
// build (unreadable directories, skipped members) are found here even when
// ArchiveTree returns nil.
func (b *Builder) Errors() *errs.Accumulator {
	return &b.acc
}

// Manifest lists all archived members in member key order.
func (b *Builder) Manifest() []*data.MemberRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := make([]*data.MemberRecord, 0, b.members.Len())
	b.members.Scan(func(key string, record *data.MemberRecord) bool {
		records = append(records, record)
		return true
	})

	return records
}

// ArchiveTree walks the tree rooted at diskPath and writes every accepted
// entry into the archive under memberName. When memberName differs from
// diskPath, members are recorded under the rewritten prefix; pass the same
// value for both to archive under on-disk names.
//
// Cancelling ctx aborts the walk at the next visited entry.
func (b *Builder) ArchiveTree(ctx context.Context, diskPath, memberName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errs.BuilderClosed(data.ErrClosed)
	}

	var flags find.Flags
	if b.opts.FollowSymlinks {
		flags |= find.FollowSymlinks
	}

	b.log.Debug("archiving tree '%s' as '%s'", diskPath, memberName)

	return find.Find(b, diskPath, memberName, b.visit(ctx), flags)
}

// visit returns the traversal visitor for one ArchiveTree call. The
// tri-valued return steers the engine: 1 descends, 0 prunes, -1 consults
// the accumulator's fatality.
func (b *Builder) visit(ctx context.Context) find.Visitor {
	return func(fb find.Builder, diskPath, memberName string, info os.FileInfo) int {
		if err := ctx.Err(); err != nil {
			b.acc.Set(errs.SeverityFatal, err, "Traversal cancelled", diskPath)
			return -1
		}

		key := data.ToMemberKey(memberName)
		if key == "" {
			// Archiving the filesystem root itself records no member,
			// but its children are still wanted.
			return 1
		}

		if b.excluded(key) {
			b.log.Debug("excluded member '%s'", key)
			return 0
		}

		if _, exists := b.members.Get(key); exists {
			b.log.Warn("duplicate member '%s' skipped", key)
			b.acc.Set(errs.SeverityWarn, errs.DuplicateMember(data.ErrExist, key), "Duplicate member skipped", diskPath)
			return 0
		}

		if err := b.writeMember(ctx, key, diskPath, info); err != nil {
			severity := errs.SeverityFatal
			if b.opts.IgnoreErrors {
				severity = errs.SeverityWarn
			}

			b.log.Error("unable to archive '%s': %v", diskPath, err)
			b.acc.Set(severity, err, "Unable to archive member", diskPath)
			return -1
		}

		return 1
	}
}

// excluded checks the member key and each of its leading directories
// against the configured patterns, so excluding "a/b" also prunes
// everything below it.
func (b *Builder) excluded(key string) bool {
	for _, pattern := range b.opts.Excludes {
		for probe := key; probe != "." && probe != "/"; probe = path.Dir(probe) {
			if ok, _ := path.Match(pattern, probe); ok {
				return true
			}
		}
	}

	return false
}

func (b *Builder) writeMember(ctx context.Context, key, diskPath string, info os.FileInfo) error {
	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(diskPath)
		if err != nil {
			return errs.WriteMember(err, key)
		}

		link = target
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return errs.WriteMember(err, key)
	}

	header.Name = key
	if info.IsDir() {
		header.Name += "/"
	}

	if err := b.tw.WriteHeader(header); err != nil {
		return errs.WriteMember(err, key)
	}

	if info.Mode().IsRegular() {
		if err := b.copyContent(diskPath); err != nil {
			return errs.WriteMember(err, key)
		}
	}

	record := data.NewMemberRecord(b.id, key, diskPath, info)
	record.ID = uuid.NewString()
	record.LinkTarget = link

	b.members.Set(key, record)

	if b.opts.Catalog != nil {
		if err := b.opts.Catalog.PutMember(ctx, record); err != nil {
			// The archive member is already written; a catalog miss is
			// only worth a warning.
			b.log.Warn("catalog put for '%s' failed: %v", key, err)
			b.acc.Set(errs.SeverityWarn, err, "Unable to catalog member", diskPath)
		}
	}

	return nil
}

func (b *Builder) copyContent(diskPath string) error {
	file, err := os.Open(diskPath)
	if err != nil {
		return err
	}
	defer file.Close()

	b.bufw.Reset(b.tw)
	defer b.bufw.Reset(nil)

	if _, err := io.Copy(b.bufw, file); err != nil {
		return err
	}

	return b.bufw.Flush()
}

// Close flushes and terminates the archive stream. The underlying writer
// passed to New is not closed.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errs.BuilderClosed(data.ErrClosed)
	}
	b.closed = true

	if err := b.tw.Close(); err != nil {
		return err
	}

	if b.gz != nil {
		return b.gz.Close()
	}

	return nil
}
