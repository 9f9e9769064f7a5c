// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperscout/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the download history",
	Long: `History manages the persistent download record. Every successfully
downloaded paper is stored under its normalized title; search marks these
papers and download skips them.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recorded downloads",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	led := ledger.Open(ledgerPath(cmd), os.Stderr)

	if led.Count() == 0 {
		fmt.Println("No downloads recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-60s  %-19s  %s\n", "Title", "Downloaded", "File")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, key := range led.Keys() {
		e, _ := led.Get(key)
		fmt.Fprintf(os.Stdout, "%-60s  %-19s  %s\n", truncate(e.Title, 60), e.DownloadDate, e.FilePath)
	}
	fmt.Fprintf(os.Stdout, "\n%d downloads\n", led.Count())
	return nil
}

// --- clear subcommand ---

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase the download history",
	Long: `Clear erases every download record. Cleared papers will no longer be
marked in search results and will be downloaded again by future batches.
Prompts for confirmation unless --yes is given.`,
	RunE: runHistoryClear,
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	led := ledger.Open(ledgerPath(cmd), os.Stderr)
	if led.Count() == 0 {
		fmt.Println("Download history is already empty.")
		return nil
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Printf("Erase %d download record(s)? [y/N] ", led.Count())
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if a := strings.TrimSpace(strings.ToLower(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := led.Clear(); err != nil {
		return err
	}
	fmt.Println("Download history cleared.")
	return nil
}

func init() {
	historyClearCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
