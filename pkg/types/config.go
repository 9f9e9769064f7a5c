package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperscout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results to return (default 20).
	// Applied after relevance filtering, so the cap is never spent on
	// records the filter would have rejected.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableArxiv controls whether the arXiv adapter is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableOpenReview controls whether the OpenReview adapter is used.
	EnableOpenReview bool `json:"enable_openreview" yaml:"enable_openreview"`

	// EnableScholar controls whether the Google Scholar adapter is used.
	// Off by default: Scholar is scraped, not queried through an API, and
	// rate-limits aggressively.
	EnableScholar bool `json:"enable_scholar" yaml:"enable_scholar"`
}

// FilterConfig holds the relevance-filter keyword sets. Matching is
// case-insensitive substring matching against title plus abstract.
type FilterConfig struct {
	// Enabled turns the filter on. When false every record passes.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Exclude lists keywords that reject a record on first match.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// Require lists keywords of which at least one must match, when the
	// list is non-empty.
	Require []string `json:"require,omitempty" yaml:"require,omitempty"`
}

// DownloadConfig holds settings for the download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// DestDir is the directory PDFs are written to.
	DestDir string `json:"dest_dir" yaml:"dest_dir"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// HistoryConfig holds the locations of the persistent history stores.
type HistoryConfig struct {
	// LedgerPath is the JSON file recording successfully downloaded papers.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`

	// SearchDBPath is the SQLite database recording past searches.
	SearchDBPath string `json:"search_db_path" yaml:"search_db_path"`
}
