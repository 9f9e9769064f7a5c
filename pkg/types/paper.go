// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paperscout.
package types

import (
	"strings"
	"time"
)

// Paper is the normalized record for a single literature item, regardless
// of which source produced it. Source adapters build Papers from their
// provider-specific responses; downstream components never branch on
// source-specific shapes.
type Paper struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// URL is the primary landing-page link for the paper.
	URL string `json:"url" yaml:"url"`

	// PDFURL is the direct PDF link, when the source provides one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Published is the publication or preprint date.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// Source identifies which adapter found this paper
	// (e.g. "arxiv", "openreview", "google_scholar").
	Source string `json:"source" yaml:"source"`
}

// DedupKey returns the deterministic identifier used to detect repeat
// downloads across searches: the title lowercased with whitespace collapsed.
// Returns "" for records without a usable title; such records are dropped
// before they reach the download history.
//
// The normalization is deliberately conservative (no punctuation stripping,
// no fuzzy matching) so that genuinely different titles never merge.
func (p Paper) DedupKey() string {
	return NormalizeTitle(p.Title)
}

// HasPDF reports whether the record carries a resolvable PDF link.
func (p Paper) HasPDF() bool {
	return strings.TrimSpace(p.PDFURL) != ""
}

// NormalizeTitle lowercases a title and collapses runs of whitespace into
// single spaces. Two titles that differ only in case or spacing map to the
// same key.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
