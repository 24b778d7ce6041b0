package tarbuild

import (
	"path"

	"github.com/mwantia/tarbuild/catalog"
	"github.com/mwantia/tarbuild/data/errs"
	"github.com/mwantia/tarbuild/log"
)

type BuilderOptions struct {
	Logger *log.Logger

	// FollowSymlinks archives symlink targets instead of the links
	FollowSymlinks bool

	// Gzip compresses the archive stream
	Gzip bool

	// Exclude patterns matched against member keys (path.Match syntax)
	Excludes []string

	// Catalog records every archived member when set
	Catalog catalog.Catalog

	// IgnoreErrors downgrades member write failures to warnings and keeps
	// the walk going
	IgnoreErrors bool
}

type BuilderOption func(*BuilderOptions) error

func newDefaultBuilderOptions() *BuilderOptions {
	return &BuilderOptions{
		Logger: log.Discard(),
	}
}

func WithLogger(logger *log.Logger) BuilderOption {
	return func(opts *BuilderOptions) error {
		opts.Logger = logger
		return nil
	}
}

func WithFollowSymlinks() BuilderOption {
	return func(opts *BuilderOptions) error {
		opts.FollowSymlinks = true
		return nil
	}
}

func WithGzip() BuilderOption {
	return func(opts *BuilderOptions) error {
		opts.Gzip = true
		return nil
	}
}

// WithExcludes registers member key patterns to prune from the archive.
// Patterns use path.Match syntax and are validated here.
func WithExcludes(patterns ...string) BuilderOption {
	return func(opts *BuilderOptions) error {
		for _, pattern := range patterns {
			if _, err := path.Match(pattern, ""); err != nil {
				return errs.InvalidPath(err, pattern)
			}
		}

		opts.Excludes = append(opts.Excludes, patterns...)
		return nil
	}
}

func WithCatalog(cat catalog.Catalog) BuilderOption {
	return func(opts *BuilderOptions) error {
		opts.Catalog = cat
		return nil
	}
}

func WithIgnoreErrors() BuilderOption {
	return func(opts *BuilderOptions) error {
		opts.IgnoreErrors = true
		return nil
	}
}
