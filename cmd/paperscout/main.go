// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperscout CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperscout/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds source credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secret returns the loaded credential for key, or "" when absent.
func secret(key string) string {
	return loadedSecrets[key]
}

// truncate shortens s to max display runes for table columns.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// rootCmd is the base command for the paperscout CLI.
var rootCmd = &cobra.Command{
	Use:   "paperscout",
	Short: "Discover and fetch academic papers across literature sources",
	Long: `paperscout searches academic literature sources (arXiv, OpenReview,
Google Scholar) with one query, filters the merged results by keyword
relevance, and downloads selected PDFs.

Downloads are tracked in a persistent history keyed by normalized title, so
repeated searches mark papers you already have and batches never fetch the
same paper twice. Past search parameters are logged for recall.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperscout.yaml or ~/.config/paperscout/config.yaml)")
	rootCmd.PersistentFlags().String("history", "", "download history file (default: paper_search_history.json)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperscout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperscout"))
		}
	}

	viper.SetDefault("history.ledger_path", "paper_search_history.json")
	viper.SetDefault("history.search_db_path", "search_history.db")
	viper.SetDefault("search.enable_arxiv", true)
	viper.SetDefault("search.enable_openreview", true)
	viper.SetDefault("search.enable_scholar", false)

	viper.SetEnvPrefix("PAPERSCOUT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ledgerPath resolves the download history file: the --history flag wins,
// then the config file, then the default.
func ledgerPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("history"); path != "" {
		return path
	}
	return viper.GetString("history.ledger_path")
}

// searchDBPath resolves the search log database path from config.
func searchDBPath() string {
	return viper.GetString("history.search_db_path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
