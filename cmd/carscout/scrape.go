package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"carscout/internal/session"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <brand> <model> <max-mileage>",
	Short: "Extract listings and save them as CSV",
	Long: `Scrape detects the number of result pages, then extracts pages 1..N through
Firecrawl in order and prints the combined listings. N defaults to every
detected page; --pages lowers it. Any failing page abandons the run.

Completed runs are written to the output directory and recorded in the cache.`,
	Example: `  carscout scrape Perodua Myvi 50000 --pages 3`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")
		quiet, _ := cmd.Flags().GetBool("quiet")
		in := inputFromArgs(args)

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		st := session.NewState()
		detected, err := a.Service.DetectPages(ctx, st, in)
		if err != nil {
			return err
		}
		if pages == 0 {
			pages = detected
		}

		out, err := a.Service.Scrape(ctx, st, in, pages)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if out.NoResults {
			fmt.Fprintln(w, "No results found matching your criteria.")
			return nil
		}
		if !quiet {
			renderRows(w, out.Results.Rows)
		}
		fmt.Fprintf(w, "Found %d total listings across %d of %d page(s)\n", out.Results.Len(), out.Pages, detected)
		fmt.Fprintf(w, "Saved: %s\n", filepath.Join(a.Files.Dir(), out.Filename))
		if out.CacheErr != nil {
			fmt.Fprintf(w, "Warning: results were not recorded in the cache: %v\n", out.CacheErr)
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().Int("pages", 0, "number of pages to scrape (default all detected pages)")
	scrapeCmd.Flags().BoolP("quiet", "q", false, "do not print the listings table")
	rootCmd.AddCommand(scrapeCmd)
}
