// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paperscout/internal/httputil"
	"github.com/pdiddy/paperscout/pkg/types"
)

// scholarBase is the Google Scholar search page. Declared as a var so
// tests can substitute an httptest server.
var scholarBase = "https://scholar.google.com/scholar"

// ScholarAdapter scrapes Google Scholar result pages. Scholar has no
// public API; this is a best-effort source that degrades to the year
// granularity Scholar exposes for date filtering, and yields PDF links
// only when the result carries a sidebar file link.
type ScholarAdapter struct {
	Client *http.Client

	// ProxyKey is an optional scraping-proxy API key (the scholar-proxy-key
	// secret), sent as X-Api-Key for deployments that point scholarBase at a
	// proxy gateway instead of scholar.google.com directly.
	ProxyKey string
}

// Name returns the adapter identifier.
func (a *ScholarAdapter) Name() string { return "google_scholar" }

// Search fetches one Scholar result page and extracts paper records.
func (a *ScholarAdapter) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	term := strings.TrimSpace(query.Keywords)
	if term == "" {
		return nil, fmt.Errorf("empty Scholar query")
	}

	params := url.Values{
		"q":      {term},
		"hl":     {"en"},
		"as_sdt": {"0,5"},
	}
	// Scholar only filters by year.
	if !query.DateFrom.IsZero() {
		params.Set("as_ylo", fmt.Sprintf("%d", query.DateFrom.Year()))
	}
	if !query.DateTo.IsZero() {
		params.Set("as_yhi", fmt.Sprintf("%d", query.DateTo.Year()))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scholarBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if a.ProxyKey != "" {
		req.Header.Set("X-Api-Key", a.ProxyKey)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Scholar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Scholar returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing Scholar page: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	var papers []types.Paper
	doc.Find("div.gs_r").Each(func(_ int, sel *goquery.Selection) {
		if len(papers) >= maxResults {
			return
		}

		body := sel.Find("div.gs_ri")
		if body.Length() == 0 {
			return
		}

		titleEl := body.Find("h3.gs_rt")
		if titleEl.Length() == 0 {
			return
		}
		title := cleanScholarTitle(titleEl.Text())
		if title == "" {
			return
		}

		p := types.Paper{
			Title:    title,
			Abstract: cleanWhitespace(body.Find("div.gs_rs").Text()),
			Source:   "google_scholar",
		}
		if href, ok := titleEl.Find("a").Attr("href"); ok {
			p.URL = href
		}
		p.Authors = parseScholarByline(body.Find("div.gs_a").Text())

		// Sidebar file link ("[PDF] site.edu"), when present.
		if href, ok := sel.Find("div.gs_ggs a").Attr("href"); ok {
			p.PDFURL = href
		}

		papers = append(papers, p)
	})
	return papers, nil
}

// cleanScholarTitle strips the leading resource markers Scholar prepends
// to titles ("[PDF]", "[HTML]", "[BOOK]", ...).
func cleanScholarTitle(s string) string {
	s = cleanWhitespace(s)
	for strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			break
		}
		s = strings.TrimSpace(s[end+1:])
	}
	return s
}

// parseScholarByline extracts author names from a "gs_a" byline such as
// "J Smith, A Jones - Journal of Things, 2024 - publisher.com". Only the
// segment before the first " - " holds authors; ellipses mark truncation.
func parseScholarByline(s string) []string {
	s = cleanWhitespace(s)
	if s == "" {
		return nil
	}
	if idx := strings.Index(s, " - "); idx >= 0 {
		s = s[:idx]
	}
	var authors []string
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "…"))
		if name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
