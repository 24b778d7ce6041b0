package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestMemorySink(t *testing.T) {
	ctx := t.Context()

	ms := NewMemory()

	stream, err := ms.Create(ctx, "build.tar")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	payload := []byte("archive bytes")
	if _, err := stream.Write(payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, exists := ms.Archive("build.tar")
	if !exists {
		t.Fatal("Archive missing from sink")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Expected %q, got %q", payload, got)
	}

	if _, exists := ms.Archive("unknown.tar"); exists {
		t.Error("Unexpected archive for unknown name")
	}
}

func TestLocalSink(t *testing.T) {
	ctx := t.Context()

	root := filepath.Join(t.TempDir(), "archives")
	ls := NewLocal(root)

	stream, err := ls.Create(ctx, "build.tar")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	payload := []byte("archive bytes")
	if _, err := stream.Write(payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "build.tar"))
	if err != nil {
		t.Fatalf("Archive not written to disk: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Expected %q, got %q", payload, got)
	}
}

// Sink names must not collide across nested directories in a name.
func TestLocalSink_StripsDirectories(t *testing.T) {
	ctx := t.Context()

	root := filepath.Join(t.TempDir(), "archives")
	ls := NewLocal(root)

	stream, err := ls.Create(ctx, "../escape.tar")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "escape.tar")); err != nil {
		t.Errorf("Expected archive inside the sink root: %v", err)
	}
}
