// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain title", "Attention Is All You Need", "Attention Is All You Need"},
		{"invalid characters dropped", `What: A "Question"? <Part 1/2>`, "What A Question Part 12"},
		{"whitespace collapsed", "  Spaced \t out\ntitle  ", "Spaced out title"},
		{"empty becomes untitled", `<>:"/\|?*`, "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := sanitizeFilename(long)
	if len(got) != maxStemLen {
		t.Errorf("len = %d, want %d", len(got), maxStemLen)
	}
}

func TestTargetPathAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()

	first := targetPath(dir, "Same Title")
	if filepath.Base(first) != "Same Title.pdf" {
		t.Fatalf("first = %q", first)
	}
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	second := targetPath(dir, "Same Title")
	if filepath.Base(second) != "Same Title_1.pdf" {
		t.Fatalf("second = %q", second)
	}
	if err := os.WriteFile(second, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	third := targetPath(dir, "Same Title")
	if filepath.Base(third) != "Same Title_2.pdf" {
		t.Fatalf("third = %q", third)
	}
}
