// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperscout/internal/searchlog"
)

var searchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "Recall past search parameters",
	Long: `Searches lists the query log: what was searched, how often, and which
exclude keywords were used. Repeating a logged search is a matter of copying
its keywords back into 'paperscout search'.`,
}

// --- recent subcommand ---

var searchesRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List past searches, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return listSearches(func(ctx context.Context, s *searchlog.Store) ([]searchlog.Entry, error) {
			return s.Recent(ctx, limit)
		})
	},
}

// --- popular subcommand ---

var searchesPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List past searches, most repeated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return listSearches(func(ctx context.Context, s *searchlog.Store) ([]searchlog.Entry, error) {
			return s.Popular(ctx, limit)
		})
	},
}

// --- excludes subcommand ---

var searchesExcludesCmd = &cobra.Command{
	Use:   "excludes",
	Short: "List the most used exclude keywords",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := searchlog.NewStore(searchDBPath())
		if err != nil {
			return err
		}
		defer store.Close()

		excludes, err := store.PopularExcludes(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(excludes) == 0 {
			fmt.Println("No exclude keywords logged.")
			return nil
		}
		for _, kw := range excludes {
			fmt.Println(kw)
		}
		return nil
	},
}

// --- remove subcommand ---

var searchesRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove one logged search by its id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid search id %q", args[0])
		}

		store, err := searchlog.NewStore(searchDBPath())
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Remove(context.Background(), id)
	},
}

// --- clear subcommand ---

var searchesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase the search log",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := searchlog.NewStore(searchDBPath())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("Search log cleared.")
		return nil
	},
}

func listSearches(query func(context.Context, *searchlog.Store) ([]searchlog.Entry, error)) error {
	store, err := searchlog.NewStore(searchDBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := query(context.Background(), store)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No searches logged.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-40s  %-25s  %-6s  %s\n",
		"ID", "Keywords", "Excludes", "Count", "Last searched")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-5d  %-40s  %-25s  %-6d  %s\n",
			e.ID, truncate(e.Keywords, 40),
			truncate(strings.Join(e.ExcludeKeywords, ","), 25),
			e.SearchCount, e.LastSearchTime.Format("2006-01-02 15:04"))
	}
	return nil
}

func init() {
	searchesRecentCmd.Flags().Int("limit", 20, "maximum entries to list")
	searchesPopularCmd.Flags().Int("limit", 20, "maximum entries to list")
	searchesExcludesCmd.Flags().Int("limit", 10, "maximum keywords to list")

	searchesCmd.AddCommand(searchesRecentCmd)
	searchesCmd.AddCommand(searchesPopularCmd)
	searchesCmd.AddCommand(searchesExcludesCmd)
	searchesCmd.AddCommand(searchesRemoveCmd)
	searchesCmd.AddCommand(searchesClearCmd)
	rootCmd.AddCommand(searchesCmd)
}
