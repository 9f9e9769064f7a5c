// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// ResultFile is the on-disk representation of a search and its results.
// A search can be saved, inspected, and later fed to the download command
// without re-querying the sources.
type ResultFile struct {
	Query   QueryParams   `yaml:"query"`
	Config  ResultConfig  `yaml:"config"`
	Results []Result      `yaml:"results"`
	Summary ResultSummary `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Keywords string `yaml:"keywords"`
	DateFrom string `yaml:"date_from,omitempty"`
	DateTo   string `yaml:"date_to,omitempty"`
}

// ResultConfig stores the settings that produced the results.
type ResultConfig struct {
	MaxResults int      `yaml:"max_results"`
	Sources    []string `yaml:"sources,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"`
	Require    []string `yaml:"require,omitempty"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Total        int       `yaml:"total"`
	Dropped      int       `yaml:"dropped,omitempty"`
	SourceErrors []string  `yaml:"source_errors,omitempty"`
	Timestamp    time.Time `yaml:"timestamp"`
}

const dateFmt = "2006-01-02"

// WriteResultFile saves query parameters and results to a YAML file.
func WriteResultFile(path string, query Query, cfg ResultConfig, out Output) error {
	rf := ResultFile{
		Query:   QueryParams{Keywords: query.Keywords},
		Config:  cfg,
		Results: out.Results,
		Summary: ResultSummary{
			Total:        len(out.Results),
			Dropped:      out.Dropped,
			SourceErrors: out.SourceErrors,
			Timestamp:    time.Now(),
		},
	}
	if !query.DateFrom.IsZero() {
		rf.Query.DateFrom = query.DateFrom.Format(dateFmt)
	}
	if !query.DateTo.IsZero() {
		rf.Query.DateTo = query.DateTo.Format(dateFmt)
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
