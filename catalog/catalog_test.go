package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwantia/tarbuild/data"
)

func testRecord(buildID, key string) *data.MemberRecord {
	return &data.MemberRecord{
		ID:         buildID + "-" + key,
		BuildID:    buildID,
		Key:        key,
		DiskPath:   "/src/" + key,
		Type:       data.MemberTypeFile,
		Mode:       0644,
		Size:       42,
		ModifyTime: time.Unix(1700000000, 0),
		CreateTime: time.Unix(1700000100, 0),
	}
}

// exerciseCatalog runs the shared contract against any backend.
func exerciseCatalog(t *testing.T, ctx context.Context, cat Catalog) {
	t.Helper()

	for _, key := range []string{"pkg/a", "pkg/b", "pkg/sub/c"} {
		if err := cat.PutMember(ctx, testRecord("build-1", key)); err != nil {
			t.Fatalf("PutMember %s failed: %v", key, err)
		}
	}
	if err := cat.PutMember(ctx, testRecord("build-2", "other/x")); err != nil {
		t.Fatalf("PutMember for second build failed: %v", err)
	}

	record, err := cat.GetMember(ctx, "build-1", "pkg/b")
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if record.DiskPath != "/src/pkg/b" {
		t.Errorf("Expected disk path %q, got %q", "/src/pkg/b", record.DiskPath)
	}
	if record.Size != 42 {
		t.Errorf("Expected size 42, got %d", record.Size)
	}

	if _, err := cat.GetMember(ctx, "build-1", "missing"); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected ErrNotExist for missing member, got %v", err)
	}

	// Overwrite updates in place.
	updated := testRecord("build-1", "pkg/b")
	updated.Size = 100
	if err := cat.PutMember(ctx, updated); err != nil {
		t.Fatalf("PutMember overwrite failed: %v", err)
	}

	record, err = cat.GetMember(ctx, "build-1", "pkg/b")
	if err != nil {
		t.Fatalf("GetMember after overwrite failed: %v", err)
	}
	if record.Size != 100 {
		t.Errorf("Expected overwritten size 100, got %d", record.Size)
	}

	records, err := cat.ListMembers(ctx, "build-1")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records for build-1, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].Key >= records[i].Key {
			t.Errorf("Listing out of key order: %q before %q", records[i-1].Key, records[i].Key)
		}
	}

	deleted, err := cat.DeleteBuild(ctx, "build-1")
	if err != nil {
		t.Fatalf("DeleteBuild failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted records, got %d", deleted)
	}

	records, err = cat.ListMembers(ctx, "build-1")
	if err != nil {
		t.Fatalf("ListMembers after delete failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records after delete, got %d", len(records))
	}

	// The other build is untouched.
	if _, err := cat.GetMember(ctx, "build-2", "other/x"); err != nil {
		t.Errorf("Record of another build lost: %v", err)
	}
}

func TestMemoryCatalog(t *testing.T) {
	ctx := t.Context()

	cat := NewMemoryCatalog()
	if err := cat.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cat.Close(ctx)

	exerciseCatalog(t, ctx, cat)
}

func TestSQLiteCatalog(t *testing.T) {
	ctx := t.Context()

	cat, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCatalog failed: %v", err)
	}
	if err := cat.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cat.Close(ctx)

	exerciseCatalog(t, ctx, cat)
}

// TestSQLiteCatalog_Persistence verifies records survive reopening the
// database file and that the key cache warms on Open.
func TestSQLiteCatalog_Persistence(t *testing.T) {
	ctx := t.Context()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	cat, err := NewSQLiteCatalog(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteCatalog failed: %v", err)
	}
	if err := cat.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := cat.PutMember(ctx, testRecord("build-1", "pkg/a")); err != nil {
		t.Fatalf("PutMember failed: %v", err)
	}
	if err := cat.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteCatalog(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteCatalog on existing file failed: %v", err)
	}
	if err := reopened.Open(ctx); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close(ctx)

	record, err := reopened.GetMember(ctx, "build-1", "pkg/a")
	if err != nil {
		t.Fatalf("GetMember after reopen failed: %v", err)
	}
	if record.Mode != 0644 {
		t.Errorf("Expected mode 0644, got %v", record.Mode)
	}
	if !record.ModifyTime.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Modify time not preserved: %v", record.ModifyTime)
	}
}
