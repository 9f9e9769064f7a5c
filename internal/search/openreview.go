// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paperscout/internal/httputil"
	"github.com/pdiddy/paperscout/pkg/types"
)

// openReviewAPIBase is the OpenReview V2 note search endpoint. Declared as
// a var so tests can substitute an httptest server.
var openReviewAPIBase = "https://api2.openreview.net/notes/search"

// openReviewSite is the public site used to build forum and PDF links.
var openReviewSite = "https://openreview.net"

// OpenReviewAdapter queries the OpenReview V2 API.
type OpenReviewAdapter struct {
	Client *http.Client

	// Token is an optional OpenReview API token (the openreview-token
	// secret). Anonymous search works but is rate-limited harder.
	Token string
}

// Name returns the adapter identifier.
func (a *OpenReviewAdapter) Name() string { return "openreview" }

// Search queries OpenReview and returns submissions with a usable title.
// Notes without one (reviews, comments, withdrawn placeholders) are skipped.
func (a *OpenReviewAdapter) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	term := strings.TrimSpace(query.Keywords)
	if term == "" {
		return nil, fmt.Errorf("empty OpenReview query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	// The search endpoint caps limit at 100.
	limit := maxResults
	if limit > 100 {
		limit = 100
	}

	params := url.Values{
		"term":   {term},
		"limit":  {fmt.Sprintf("%d", limit)},
		"offset": {"0"},
	}
	reqURL := openReviewAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenReview API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenReview API returned HTTP %d", resp.StatusCode)
	}

	var sr openReviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing OpenReview response: %w", err)
	}

	var papers []types.Paper
	for _, note := range sr.Notes {
		if len(papers) >= maxResults {
			break
		}

		title := note.Content.stringField("title")
		if title == "" || title == "No Title" {
			continue
		}

		p := types.Paper{
			Title:  title,
			URL:    openReviewSite + "/forum?id=" + note.ID,
			PDFURL: openReviewSite + "/pdf?id=" + note.ID,
			Source: "openreview",
		}

		p.Abstract = note.Content.stringField("abstract")
		if p.Abstract == "" {
			p.Abstract = note.Content.stringField("summary")
		}
		p.Authors = note.Content.stringsField("authors")

		// cdate is epoch milliseconds.
		if note.CDate > 0 {
			p.Published = time.UnixMilli(note.CDate).UTC()
		}
		if !inDateRange(p.Published, query) {
			continue
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// OpenReview V2 API JSON structures. Content fields may be plain values or
// wrapped as {"value": ...} depending on the venue's schema version, so
// they are decoded lazily.
type openReviewResponse struct {
	Notes []openReviewNote `json:"notes"`
}

type openReviewNote struct {
	ID      string            `json:"id"`
	CDate   int64             `json:"cdate"`
	Content openReviewContent `json:"content"`
}

type openReviewContent map[string]json.RawMessage

// stringField extracts a string field, unwrapping a {"value": ...} object
// when present.
func (c openReviewContent) stringField(name string) string {
	raw, ok := c[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return strings.TrimSpace(wrapped.Value)
	}
	return ""
}

// stringsField extracts a string-list field, unwrapping a {"value": [...]}
// object when present.
func (c openReviewContent) stringsField(name string) []string {
	raw, ok := c[name]
	if !ok {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var wrapped struct {
		Value []string `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Value
	}
	return nil
}
