// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperscout/internal/ledger"
	"github.com/pdiddy/paperscout/pkg/types"
)

// stubValidator replaces PDF validation for the duration of a test.
func stubValidator(t *testing.T, fn func(string) error) {
	t.Helper()
	saved := validatePDF
	validatePDF = fn
	t.Cleanup(func() { validatePDF = saved })
}

func acceptAll(string) error { return nil }

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	var warn bytes.Buffer
	return ledger.Open(filepath.Join(t.TempDir(), "history.json"), &warn)
}

func pdfServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprintf(w, "%%PDF-1.4 fake body for %s", r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testDownloadCfg(dir string) types.DownloadConfig {
	return types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		DestDir: dir,
	}
}

func TestBatchDownloadsAndRecords(t *testing.T) {
	stubValidator(t, acceptAll)
	srv := pdfServer(t)
	led := testLedger(t)
	dir := t.TempDir()

	papers := []types.Paper{{
		Title:  "A Fresh Paper",
		PDFURL: srv.URL + "/fresh.pdf",
		Source: "arxiv",
	}}

	var buf bytes.Buffer
	res, err := Batch(context.Background(), srv.Client(), papers, testDownloadCfg(dir), led, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Downloaded != 1 || res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("counts = %+v", res)
	}

	out := res.Outcomes[0]
	if out.Status != StatusDownloaded {
		t.Errorf("Status = %q", out.Status)
	}
	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("saved file content = %q", data)
	}
	if filepath.Base(out.Path) != "A Fresh Paper.pdf" {
		t.Errorf("Path = %q", out.Path)
	}

	// Success must land in the ledger immediately.
	entry, ok := led.Get("a fresh paper")
	if !ok {
		t.Fatal("download not recorded in ledger")
	}
	if entry.FilePath != out.Path || entry.PDFURL != papers[0].PDFURL {
		t.Errorf("entry = %+v", entry)
	}
}

func TestBatchSkipsAlreadyDownloaded(t *testing.T) {
	stubValidator(t, acceptAll)
	srv := pdfServer(t)
	led := testLedger(t)

	prior := ledger.NewEntry("Seen Paper", "/tmp/seen.pdf", "http://x/seen.pdf",
		time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	if err := led.Record("seen paper", prior); err != nil {
		t.Fatal(err)
	}

	papers := []types.Paper{{Title: "Seen   PAPER", PDFURL: srv.URL + "/seen.pdf"}}

	var buf bytes.Buffer
	res, err := Batch(context.Background(), srv.Client(), papers, testDownloadCfg(t.TempDir()), led, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 || res.Downloaded != 0 {
		t.Fatalf("counts = %+v", res)
	}
	out := res.Outcomes[0]
	if out.Status != StatusAlreadyDownloaded || out.Path != "/tmp/seen.pdf" {
		t.Errorf("outcome = %+v", out)
	}
	if !strings.Contains(out.Reason, "2026-03-14") {
		t.Errorf("Reason = %q, want prior download date", out.Reason)
	}
}

func TestBatchContinuesPastFailures(t *testing.T) {
	stubValidator(t, acceptAll)
	srv := pdfServer(t)
	led := testLedger(t)

	papers := []types.Paper{
		{Title: "First OK", PDFURL: srv.URL + "/a.pdf"},
		{Title: "Broken Link", PDFURL: srv.URL + "/missing.pdf"},
		{Title: "Second OK", PDFURL: srv.URL + "/b.pdf"},
	}

	var buf bytes.Buffer
	res, err := Batch(context.Background(), srv.Client(), papers, testDownloadCfg(t.TempDir()), led, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Downloaded != 2 || res.Failed != 1 {
		t.Fatalf("counts = %+v", res)
	}

	want := []Status{StatusDownloaded, StatusFailed, StatusDownloaded}
	for i, s := range want {
		if res.Outcomes[i].Status != s {
			t.Errorf("Outcomes[%d].Status = %q, want %q", i, res.Outcomes[i].Status, s)
		}
	}
	if !strings.Contains(res.Outcomes[1].Reason, "HTTP 404") {
		t.Errorf("Reason = %q", res.Outcomes[1].Reason)
	}

	// The failure must not pollute the ledger.
	if led.Exists("broken link") {
		t.Error("failed download recorded in ledger")
	}
	if !led.Exists("first ok") || !led.Exists("second ok") {
		t.Error("successes missing from ledger")
	}
}

func TestBatchMissingPDFLink(t *testing.T) {
	stubValidator(t, acceptAll)
	srv := pdfServer(t)
	led := testLedger(t)

	papers := []types.Paper{{Title: "Linkless", URL: "http://example.org/paper"}}

	var buf bytes.Buffer
	res, err := Batch(context.Background(), srv.Client(), papers, testDownloadCfg(t.TempDir()), led, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 {
		t.Fatalf("counts = %+v", res)
	}
	if !strings.Contains(res.Outcomes[0].Reason, "no PDF link") {
		t.Errorf("Reason = %q", res.Outcomes[0].Reason)
	}
}

func TestBatchRejectsInvalidPDF(t *testing.T) {
	stubValidator(t, func(string) error { return fmt.Errorf("xref table missing") })
	srv := pdfServer(t)
	led := testLedger(t)
	dir := t.TempDir()

	papers := []types.Paper{{Title: "Actually HTML", PDFURL: srv.URL + "/page.pdf"}}

	var buf bytes.Buffer
	res, err := Batch(context.Background(), srv.Client(), papers, testDownloadCfg(dir), led, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 {
		t.Fatalf("counts = %+v", res)
	}
	if !strings.Contains(res.Outcomes[0].Reason, "not a valid PDF") {
		t.Errorf("Reason = %q", res.Outcomes[0].Reason)
	}

	// Neither the final file nor the temp file may remain.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
	if led.Exists("actually html") {
		t.Error("invalid download recorded in ledger")
	}
}

func TestBatchCollidingTitles(t *testing.T) {
	stubValidator(t, acceptAll)
	srv := pdfServer(t)
	led := testLedger(t)
	dir := t.TempDir()

	// Same sanitized name, different dedup keys is impossible for identical
	// titles, so pre-create the plain file to force the collision path.
	if err := os.WriteFile(filepath.Join(dir, "Shared Name.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	papers := []types.Paper{{Title: "Shared Name", PDFURL: srv.URL + "/x.pdf"}}

	var buf bytes.Buffer
	res, err := Batch(context.Background(), srv.Client(), papers, testDownloadCfg(dir), led, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(res.Outcomes[0].Path) != "Shared Name_1.pdf" {
		t.Errorf("Path = %q", res.Outcomes[0].Path)
	}
}

func TestBatchEmptyInput(t *testing.T) {
	led := testLedger(t)
	var buf bytes.Buffer
	if _, err := Batch(context.Background(), http.DefaultClient, nil, testDownloadCfg(t.TempDir()), led, &buf); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestBatchHonorsContextCancellation(t *testing.T) {
	stubValidator(t, acceptAll)
	srv := pdfServer(t)
	led := testLedger(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	papers := []types.Paper{{Title: "Never Fetched", PDFURL: srv.URL + "/x.pdf"}}

	var buf bytes.Buffer
	res, err := Batch(ctx, srv.Client(), papers, testDownloadCfg(t.TempDir()), led, &buf)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(res.Outcomes) != 0 {
		t.Errorf("Outcomes = %+v", res.Outcomes)
	}
}

func TestDefaultDestDir(t *testing.T) {
	dir := DefaultDestDir(time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC))
	if filepath.Base(dir) != "papers_20260823" {
		t.Errorf("dir = %q", dir)
	}
}
