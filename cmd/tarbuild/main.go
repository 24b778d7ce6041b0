package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mwantia/tarbuild"
	"github.com/mwantia/tarbuild/catalog"
	"github.com/mwantia/tarbuild/data/errs"
	"github.com/mwantia/tarbuild/log"
)

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	var excludes stringList

	output := flag.String("o", "", "output archive file (default: stdout)")
	member := flag.String("member", "", "logical member name for the tree root (default: the path itself)")
	follow := flag.Bool("follow", false, "follow symbolic links")
	gzipOut := flag.Bool("gzip", false, "gzip the archive stream")
	catalogPath := flag.String("catalog", "", "sqlite catalog database to record members into")
	logLevel := flag.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	flag.Var(&excludes, "x", "exclude member pattern (repeatable)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tarbuild [options] path...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := log.New("tarbuild", log.ParseLevel(*logLevel))
	if *output == "" {
		// Keep stdout clean for the archive stream.
		logger.SetOutput(os.Stderr)
	}

	if err := run(logger, *output, *member, *follow, *gzipOut, *catalogPath, excludes, flag.Args()); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger, output, member string, follow, gzipOut bool, catalogPath string, excludes, paths []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out io.Writer = os.Stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer file.Close()

		out = file
	}

	opts := []tarbuild.BuilderOption{
		tarbuild.WithLogger(logger),
		tarbuild.WithExcludes(excludes...),
	}
	if follow {
		opts = append(opts, tarbuild.WithFollowSymlinks())
	}
	if gzipOut {
		opts = append(opts, tarbuild.WithGzip())
	}

	if catalogPath != "" {
		cat, err := catalog.NewSQLiteCatalog(catalogPath)
		if err != nil {
			return err
		}
		if err := cat.Open(ctx); err != nil {
			return errs.CatalogUnavailable(err, cat.Name())
		}
		defer cat.Close(ctx)

		opts = append(opts, tarbuild.WithCatalog(cat))
	}

	builder, err := tarbuild.New(out, opts...)
	if err != nil {
		return err
	}

	for _, path := range paths {
		name := member
		if name == "" || len(paths) > 1 {
			name = path
		}

		if err := builder.ArchiveTree(ctx, path, name); err != nil {
			return err
		}
	}

	for _, warning := range builder.Errors().Warnings() {
		logger.Warn("%v", warning)
	}

	logger.Info("archived %d members (build %s)", len(builder.Manifest()), builder.ID())

	return builder.Close()
}
