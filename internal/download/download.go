// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches paper PDFs in batches, validates them, and
// records successes in the download history.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/paperscout/internal/httputil"
	"github.com/pdiddy/paperscout/internal/ledger"
	"github.com/pdiddy/paperscout/pkg/types"
)

// Status classifies one paper's batch outcome.
type Status string

const (
	StatusDownloaded        Status = "downloaded"
	StatusAlreadyDownloaded Status = "already_downloaded"
	StatusFailed            Status = "failed"
)

// Outcome is the per-paper result of a batch, in input order.
type Outcome struct {
	Title  string
	Status Status
	// Path is set for downloaded papers; for already-downloaded papers it
	// points at the previously saved file.
	Path string
	// Reason explains a failure or names the prior download date for a skip.
	Reason string
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Outcomes   []Outcome
	Downloaded int
	Skipped    int
	Failed     int
	DestDir    string
}

// validatePDF checks that a saved file is a readable PDF. A var so tests
// can substitute a stub instead of crafting full PDF bodies.
var validatePDF = func(path string) error {
	return api.ValidateFile(path, nil)
}

// Batch downloads the PDFs for papers into cfg.DestDir, skipping papers the
// ledger already records and continuing past individual failures. Each
// success is validated and recorded in the ledger before the next paper
// starts, so an interrupted batch loses nothing already fetched. Outcomes
// are reported in input order, with progress lines on w.
func Batch(ctx context.Context, client *http.Client, papers []types.Paper, cfg types.DownloadConfig, led *ledger.Ledger, w io.Writer) (BatchResult, error) {
	if len(papers) == 0 {
		return BatchResult{}, fmt.Errorf("no papers to download")
	}
	if err := os.MkdirAll(cfg.DestDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating download directory %s: %w", cfg.DestDir, err)
	}

	res := BatchResult{DestDir: cfg.DestDir}

	for i, p := range papers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if i > 0 && cfg.DownloadDelay > 0 {
			select {
			case <-time.After(cfg.DownloadDelay):
			case <-ctx.Done():
				return res, ctx.Err()
			}
		}

		key := p.DedupKey()
		if prior, ok := led.Get(key); key != "" && ok {
			fmt.Fprintf(w, "skipped    %s (downloaded %s)\n", p.Title, prior.DateOnly)
			res.Outcomes = append(res.Outcomes, Outcome{
				Title:  p.Title,
				Status: StatusAlreadyDownloaded,
				Path:   prior.FilePath,
				Reason: "downloaded " + prior.DateOnly,
			})
			res.Skipped++
			continue
		}

		path, err := fetchOne(ctx, client, p, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed     %s: %v\n", p.Title, err)
			res.Outcomes = append(res.Outcomes, Outcome{
				Title:  p.Title,
				Status: StatusFailed,
				Reason: err.Error(),
			})
			res.Failed++
			continue
		}

		if key != "" {
			entry := ledger.NewEntry(p.Title, path, p.PDFURL, time.Now())
			if err := led.Record(key, entry); err != nil {
				fmt.Fprintf(w, "warning: recording download history: %v\n", err)
			}
		}

		fmt.Fprintf(w, "downloaded %s -> %s\n", p.Title, path)
		res.Outcomes = append(res.Outcomes, Outcome{
			Title:  p.Title,
			Status: StatusDownloaded,
			Path:   path,
		})
		res.Downloaded++
	}

	fmt.Fprintf(w, "\ndownloaded: %d, skipped: %d, failed: %d\n",
		res.Downloaded, res.Skipped, res.Failed)
	return res, nil
}

// fetchOne downloads and validates a single PDF, writing to a temp file and
// renaming into place only after validation passes.
func fetchOne(ctx context.Context, client *http.Client, p types.Paper, cfg types.DownloadConfig) (string, error) {
	if !p.HasPDF() {
		return "", fmt.Errorf("no PDF link")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.PDFURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", p.PDFURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", p.PDFURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(cfg.DestDir, ".download-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing PDF: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := validatePDF(tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("not a valid PDF: %w", err)
	}

	path := targetPath(cfg.DestDir, p.Title)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("saving PDF: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// DefaultDestDir returns the default download directory for a batch run,
// a dated folder under the user's Downloads directory.
func DefaultDestDir(now time.Time) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "Downloads", "papers_"+now.Format("20060102"))
}
