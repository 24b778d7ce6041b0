package tarbuild

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/mwantia/tarbuild/sink"
)

func TestBuildToSink(t *testing.T) {
	ctx := t.Context()
	root := makeTree(t)

	ms := sink.NewMemory()

	manifest, err := BuildToSink(ctx, ms, "build.tar", []Tree{
		{Path: root, MemberName: "pkg"},
	})
	if err != nil {
		t.Fatalf("BuildToSink failed: %v", err)
	}

	if len(manifest) != 4 {
		t.Errorf("Expected 4 manifest records, got %d", len(manifest))
	}

	raw, exists := ms.Archive("build.tar")
	if !exists {
		t.Fatal("Archive missing from sink")
	}

	members := readArchive(t, bytes.NewReader(raw))
	if got := members["pkg/a.txt"]; got != "alpha" {
		t.Errorf("Member content %q, expected %q", got, "alpha")
	}
}

func TestBuildToSink_MissingTree(t *testing.T) {
	ctx := t.Context()

	ms := sink.NewMemory()

	_, err := BuildToSink(ctx, ms, "build.tar", []Tree{
		{Path: filepath.Join(t.TempDir(), "missing")},
	})
	if err == nil {
		t.Fatal("Expected error for missing tree root")
	}
}
