package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain name", "plain name"},
		{"a/b\\c:d", "a-b-c-d"},
		{"what?<is>\"this\"|", "whatisthis"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Deep Sea: Life!"); got != "deep_sea__life" {
		t.Fatalf("unexpected token %q", got)
	}
	if got := SanitizeToken("   "); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestTruncateName(t *testing.T) {
	if got := TruncateName("short", 45); got != "short" {
		t.Fatalf("expected unchanged, got %q", got)
	}
	long := "This is a very long video title that keeps going on and on"
	got := TruncateName(long, 45)
	if len([]rune(got)) > 45 {
		t.Fatalf("expected at most 45 runes, got %d", len([]rune(got)))
	}
	if got != "This is a very long video title that keeps go"[:45] {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := TruncateName(long, 0); got != long {
		t.Fatalf("expected unchanged for zero max, got %q", got)
	}
}
