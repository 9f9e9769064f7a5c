// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries literature sources and returns merged, filtered
// results annotated against the download history.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paperscout/pkg/types"
)

// Adapter searches a single literature platform. Each platform (arXiv,
// OpenReview, Google Scholar) implements this interface; the aggregator
// depends only on it.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error)
}

// Query holds the search parameters: free-text keywords and an inclusive
// date range.
type Query struct {
	Keywords string
	DateFrom time.Time
	DateTo   time.Time
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Keywords) == ""
}

// History answers "already downloaded?" for a dedup key. Implemented by
// the download-history ledger.
type History interface {
	Exists(key string) bool
}

// Result is one merged search result, tagged with whether its dedup key is
// already in the download history so callers can mark it without a second
// pass.
type Result struct {
	types.Paper `yaml:",inline"`

	AlreadyDownloaded bool `json:"already_downloaded" yaml:"already_downloaded"`
}

// Output holds the merged results and per-source statistics.
type Output struct {
	Results []Result
	// Dropped counts records discarded for lacking a usable title.
	Dropped int
	// SourceErrors records adapters that failed; their results are simply
	// absent from the merge.
	SourceErrors []string
}

// Aggregate fans the query out to all adapters, merges their results in
// adapter order, applies the relevance filter, caps the result count, and
// tags each survivor against the download history.
//
// Adapters run concurrently but each writes into its own slot, so the merge
// preserves the order the adapters were enabled in and, within one adapter,
// the source's own ordering. A failing adapter does not abort the search:
// its error is recorded and the merge proceeds with the rest.
//
// The cap is applied after filtering, so MaxResults is never spent on
// records the filter rejects.
func Aggregate(ctx context.Context, query Query, adapters []Adapter, cfg types.SearchConfig, filter types.FilterConfig, hist History, w io.Writer) (Output, error) {
	if query.IsEmpty() {
		return Output{}, fmt.Errorf("query is empty: provide search keywords")
	}
	if len(adapters) == 0 {
		return Output{}, fmt.Errorf("no sources enabled")
	}

	perSource := make([][]types.Paper, len(adapters))
	srcErrs := make([]error, len(adapters))

	var g errgroup.Group
	for i, a := range adapters {
		i, a := i, a
		g.Go(func() error {
			papers, err := a.Search(ctx, query, cfg)
			perSource[i] = papers
			srcErrs[i] = err
			return nil
		})
	}
	g.Wait()

	var out Output
	for i, a := range adapters {
		if srcErrs[i] != nil {
			msg := fmt.Sprintf("%s: %v", a.Name(), srcErrs[i])
			out.SourceErrors = append(out.SourceErrors, msg)
			fmt.Fprintf(w, "warning: source %s failed: %v\n", a.Name(), srcErrs[i])
			continue
		}
		for _, p := range perSource[i] {
			key := p.DedupKey()
			if key == "" {
				out.Dropped++
				continue
			}
			if !Accepts(p, filter) {
				continue
			}
			if cfg.MaxResults > 0 && len(out.Results) >= cfg.MaxResults {
				continue
			}
			r := Result{Paper: p}
			if hist != nil {
				r.AlreadyDownloaded = hist.Exists(key)
			}
			out.Results = append(out.Results, r)
		}
	}
	return out, nil
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-10s  %-14s  %s\n",
		"Rank", "Title", "Authors", "Date", "Source", "Downloaded")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range out.Results {
		title := truncate(r.Title, 60)
		date := ""
		if !r.Published.IsZero() {
			date = r.Published.Format("2006-01-02")
		}
		mark := ""
		if r.AlreadyDownloaded {
			mark = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-10s  %-14s  %s\n",
			i+1, title, formatAuthors(r.Authors), date, r.Source, mark)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.Dropped > 0 {
		fmt.Fprintf(w, " (%d untitled records dropped)", out.Dropped)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max display runes. Slicing runes rather than bytes
// keeps multibyte titles intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
