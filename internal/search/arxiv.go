// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paperscout/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivAdapter queries the arXiv API.
type ArxivAdapter struct {
	Client *http.Client
}

// Name returns the adapter identifier.
func (a *ArxivAdapter) Name() string { return "arxiv" }

// Search queries the arXiv API, newest submissions first, and post-filters
// by the query's date range (the arXiv search API has no date parameter).
func (a *ArxivAdapter) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	terms := strings.Fields(query.Keywords)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	reqURL := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(strings.Join(terms, " ")), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		p := types.Paper{
			Title:    cleanWhitespace(entry.Title),
			Abstract: cleanWhitespace(entry.Summary),
			URL:      strings.TrimSpace(entry.ID),
			Source:   "arxiv",
		}
		if p.Title == "" {
			continue
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Published = t
		}
		if !inDateRange(p.Published, query) {
			continue
		}

		for _, au := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(au.Name))
		}

		// Prefer the feed's PDF link; derive one from the abstract URL
		// otherwise.
		for _, l := range entry.Links {
			if l.Type == "application/pdf" || l.Title == "pdf" {
				p.PDFURL = l.Href
				break
			}
		}
		if p.PDFURL == "" {
			p.PDFURL = strings.Replace(p.URL, "/abs/", "/pdf/", 1)
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// inDateRange reports whether t falls inside the query's inclusive date
// range. A zero date passes only when the query has no range, since undated
// records cannot be placed.
func inDateRange(t time.Time, q Query) bool {
	if q.DateFrom.IsZero() && q.DateTo.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if !q.DateFrom.IsZero() && t.Before(q.DateFrom) {
		return false
	}
	if !q.DateTo.IsZero() && t.After(q.DateTo.Add(24*time.Hour-time.Nanosecond)) {
		return false
	}
	return true
}

// cleanWhitespace trims a field and collapses the newlines arXiv inserts
// into long titles and abstracts.
func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}
