// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperscout/internal/ledger"
	"github.com/pdiddy/paperscout/internal/search"
	"github.com/pdiddy/paperscout/internal/searchlog"
	"github.com/pdiddy/paperscout/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "paperscout/0.1"
	dateFlagFmt      = "2006-01-02"
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search literature sources for papers",
	Long: `Search queries the enabled literature sources with one set of keywords,
merges the results in source order, applies the relevance filter, and marks
papers already present in the download history.

Pass --save to write the results to a YAML file that the download command
can consume later.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("keywords", "", "search keywords (alternative to positional args)")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of results to return")
	searchCmd.Flags().String("sources", "", "comma-separated sources: arxiv, openreview, google_scholar (default from config)")
	searchCmd.Flags().StringSlice("exclude", nil, "reject results containing this keyword (repeatable)")
	searchCmd.Flags().StringSlice("require", nil, "require at least one of these keywords (repeatable)")
	searchCmd.Flags().Bool("no-filter", false, "disable the relevance filter")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "write results to a YAML file for later download")
	searchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	keywords, _ := cmd.Flags().GetString("keywords")
	if keywords == "" {
		keywords = strings.Join(args, " ")
	}

	query := search.Query{Keywords: keywords}
	var err error
	if query.DateFrom, err = parseDateFlag(cmd, "from"); err != nil {
		return err
	}
	if query.DateTo, err = parseDateFlag(cmd, "to"); err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		MaxResults:       maxResults,
		EnableArxiv:      viper.GetBool("search.enable_arxiv"),
		EnableOpenReview: viper.GetBool("search.enable_openreview"),
		EnableScholar:    viper.GetBool("search.enable_scholar"),
	}

	sourcesFlag, _ := cmd.Flags().GetString("sources")
	adapters, sourceNames, err := buildAdapters(sourcesFlag, cfg)
	if err != nil {
		return err
	}

	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	require, _ := cmd.Flags().GetStringSlice("require")
	noFilter, _ := cmd.Flags().GetBool("no-filter")
	filter := types.FilterConfig{
		Enabled: !noFilter,
		Exclude: exclude,
		Require: require,
	}

	led := ledger.Open(ledgerPath(cmd), os.Stderr)

	out, err := search.Aggregate(context.Background(), query, adapters, cfg, filter, led, os.Stderr)
	if err != nil {
		return err
	}

	logSearch(query.Keywords, exclude)

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		rc := search.ResultConfig{
			MaxResults: maxResults,
			Sources:    sourceNames,
			Exclude:    exclude,
			Require:    require,
		}
		if err := search.WriteResultFile(savePath, query, rc, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results saved to %s\n", savePath)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}

// buildAdapters maps source names to adapters, preserving the order given.
// An empty selection falls back to the sources enabled in config.
func buildAdapters(sourcesFlag string, cfg types.SearchConfig) ([]search.Adapter, []string, error) {
	if strings.TrimSpace(sourcesFlag) == "" {
		sourcesFlag = enabledSources(cfg)
	}

	client := &http.Client{Timeout: cfg.Timeout}

	var adapters []search.Adapter
	var names []string
	for _, name := range strings.Split(sourcesFlag, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		switch name {
		case "arxiv":
			adapters = append(adapters, &search.ArxivAdapter{Client: client})
		case "openreview":
			adapters = append(adapters, &search.OpenReviewAdapter{
				Client: client,
				Token:  secret("openreview-token"),
			})
		case "google_scholar", "scholar":
			adapters = append(adapters, &search.ScholarAdapter{
				Client:   client,
				ProxyKey: secret("scholar-proxy-key"),
			})
			name = "google_scholar"
		default:
			return nil, nil, fmt.Errorf("unknown source %q: use arxiv, openreview, or google_scholar", name)
		}
		names = append(names, name)
	}
	if len(adapters) == 0 {
		return nil, nil, fmt.Errorf("no sources enabled")
	}
	return adapters, names, nil
}

func enabledSources(cfg types.SearchConfig) string {
	var names []string
	if cfg.EnableArxiv {
		names = append(names, "arxiv")
	}
	if cfg.EnableOpenReview {
		names = append(names, "openreview")
	}
	if cfg.EnableScholar {
		names = append(names, "google_scholar")
	}
	return strings.Join(names, ",")
}

// logSearch records the search parameters in the search log. Log failures
// warn but never fail the search itself.
func logSearch(keywords string, exclude []string) {
	store, err := searchlog.NewStore(searchDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening search log: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Add(context.Background(), keywords, exclude); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording search: %v\n", err)
	}
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFlagFmt, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: use YYYY-MM-DD", name, value)
	}
	return t, nil
}
