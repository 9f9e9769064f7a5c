// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxStemLen caps the filename stem so long paper titles stay inside
// filesystem name limits with room for a collision suffix.
const maxStemLen = 200

// sanitizeFilename turns a paper title into a safe PDF filename stem.
// Characters that are invalid on common filesystems are dropped and
// whitespace is collapsed to single spaces.
func sanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		default:
			b.WriteRune(r)
		}
	}
	stem := strings.Join(strings.Fields(b.String()), " ")
	if stem == "" {
		stem = "untitled"
	}
	if len(stem) > maxStemLen {
		stem = strings.TrimSpace(stem[:maxStemLen])
	}
	return stem
}

// targetPath returns a non-colliding path under dir for the given title,
// appending a numeric suffix when the plain name is already taken.
func targetPath(dir, title string) string {
	stem := sanitizeFilename(title)
	path := filepath.Join(dir, stem+".pdf")
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.pdf", stem, n))
	}
}
