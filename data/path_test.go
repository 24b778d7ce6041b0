package data

import "testing"

func TestCleanPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/t", "/t"},
		{"/t/", "/t"},
		{"/t//b/./c", "/t/b/c"},
		{"t/b", "t/b"},
		{".", "."},
	}

	for _, tc := range cases {
		got, err := CleanPath(tc.in)
		if err != nil {
			t.Errorf("CleanPath(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("CleanPath(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}

	if _, err := CleanPath(""); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestToMemberKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/pkg/a", "pkg/a"},
		{"pkg/a", "pkg/a"},
		{"/", ""},
	}

	for _, tc := range cases {
		if got := ToMemberKey(tc.in); got != tc.want {
			t.Errorf("ToMemberKey(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}
