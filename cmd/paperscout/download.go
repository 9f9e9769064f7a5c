// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperscout/internal/download"
	"github.com/pdiddy/paperscout/internal/ledger"
	"github.com/pdiddy/paperscout/internal/search"
	"github.com/pdiddy/paperscout/pkg/types"
)

const defaultDownloadDelay = 1 * time.Second

var downloadCmd = &cobra.Command{
	Use:   "download [result-file]",
	Short: "Download paper PDFs from saved search results",
	Long: `Download reads a result file written by 'search --save' and fetches the
selected papers' PDFs into the destination directory. Each file is validated
as a PDF before it is kept, and every success is recorded in the download
history so later batches skip it.

Use --select to pick papers by their rank in the result table ("1,3,5" or
"2-4"); the default is every paper in the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("select", "", "ranks to download, e.g. \"1,3,5\" or \"2-4\" (default: all)")
	downloadCmd.Flags().String("dest", "", "destination directory (default: ~/Downloads/papers_YYYYMMDD)")
	downloadCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	downloadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	rf, err := search.ReadResultFile(args[0])
	if err != nil {
		return err
	}
	if len(rf.Results) == 0 {
		return fmt.Errorf("result file %s contains no papers", args[0])
	}

	selectFlag, _ := cmd.Flags().GetString("select")
	papers, err := selectPapers(rf.Results, selectFlag)
	if err != nil {
		return err
	}

	dest, _ := cmd.Flags().GetString("dest")
	if dest == "" {
		dest = download.DefaultDestDir(time.Now())
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDownloadDelay
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DestDir:       dest,
		DownloadDelay: delay,
	}

	led := ledger.Open(ledgerPath(cmd), os.Stderr)
	client := &http.Client{Timeout: cfg.Timeout}

	res, err := download.Batch(context.Background(), client, papers, cfg, led, os.Stdout)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to download", res.Failed)
	}
	return nil
}

// selectPapers resolves a rank selection ("1,3,5", "2-4", or combinations)
// against the result list. Ranks are 1-based, matching the search table.
func selectPapers(results []search.Result, selection string) ([]types.Paper, error) {
	if strings.TrimSpace(selection) == "" {
		papers := make([]types.Paper, len(results))
		for i, r := range results {
			papers[i] = r.Paper
		}
		return papers, nil
	}

	seen := make(map[int]bool)
	var papers []types.Paper
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if idx := strings.Index(part, "-"); idx > 0 {
			lo, hi = strings.TrimSpace(part[:idx]), strings.TrimSpace(part[idx+1:])
		}
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		if start < 1 || end > len(results) || start > end {
			return nil, fmt.Errorf("selection %q out of range 1-%d", part, len(results))
		}
		for rank := start; rank <= end; rank++ {
			if seen[rank] {
				continue
			}
			seen[rank] = true
			papers = append(papers, results[rank-1].Paper)
		}
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("selection %q matches no papers", selection)
	}
	return papers, nil
}
