// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/pdiddy/paperscout/pkg/types"
)

// Accepts reports whether the relevance filter keeps p. Pure function:
//
//   - a disabled filter passes everything;
//   - any excluded keyword match rejects immediately;
//   - when the required set is non-empty, at least one required keyword
//     must match.
//
// Keywords match as case-insensitive substrings of title plus abstract
// (title only when the abstract is empty). Blank keyword strings are
// ignored so a stray empty line in config never rejects or passes
// everything unconditionally.
func Accepts(p types.Paper, cfg types.FilterConfig) bool {
	if !cfg.Enabled {
		return true
	}

	haystack := strings.ToLower(p.Title)
	if p.Abstract != "" {
		haystack += " " + strings.ToLower(p.Abstract)
	}

	for _, kw := range cfg.Exclude {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, kw) {
			return false
		}
	}

	required := false
	matched := false
	for _, kw := range cfg.Require {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw == "" {
			continue
		}
		required = true
		if strings.Contains(haystack, kw) {
			matched = true
			break
		}
	}
	if required && !matched {
		return false
	}
	return true
}
