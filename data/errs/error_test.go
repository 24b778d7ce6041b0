package errs

import (
	"errors"
	"io/fs"
	"testing"
)

func TestAccumulator_FatalityFollowsLastEntry(t *testing.T) {
	var acc Accumulator

	// No recorded downgrade means fatal.
	if !acc.IsFatal() {
		t.Error("Empty accumulator should report fatal")
	}

	acc.Set(SeverityWarn, nil, "tolerated", "/t/b")
	if acc.IsFatal() {
		t.Error("Warn entry should not be fatal")
	}

	acc.Set(SeverityFatal, nil, "giving up", "/t/c")
	if !acc.IsFatal() {
		t.Error("Fatal entry should be fatal")
	}

	acc.Set(SeverityWarn, nil, "tolerated again", "/t/d")
	if acc.IsFatal() {
		t.Error("Fatality should follow the most recent entry")
	}
}

func TestAccumulator_Entries(t *testing.T) {
	var acc Accumulator

	acc.Set(SeverityWarn, fs.ErrPermission, "Unable to open directory", "/t/b")
	acc.Set(SeverityFatal, nil, "visitor failed", "/t/c")

	entries := acc.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if !errors.Is(entries[0], fs.ErrPermission) {
		t.Errorf("Expected wrapped permission error, got %v", entries[0].Err)
	}
	if entries[0].Path != "/t/b" {
		t.Errorf("Expected path %q, got %q", "/t/b", entries[0].Path)
	}

	warnings := acc.Warnings()
	if len(warnings) != 1 || warnings[0].Message != "Unable to open directory" {
		t.Errorf("Unexpected warnings: %v", warnings)
	}

	if acc.Err() == nil {
		t.Error("Expected joined error for non-empty accumulator")
	}

	acc.Clear()
	if len(acc.Entries()) != 0 {
		t.Error("Expected no entries after Clear")
	}
	if acc.Err() != nil {
		t.Error("Expected nil joined error after Clear")
	}
}

func TestEntry_Error(t *testing.T) {
	entry := Entry{
		Severity: SeverityWarn,
		Err:      fs.ErrPermission,
		Message:  "Unable to open directory",
		Path:     "/t/b",
	}

	want := "Unable to open directory: /t/b: permission denied"
	if got := entry.Error(); got != want {
		t.Errorf("Entry.Error() = %q, expected %q", got, want)
	}
}
