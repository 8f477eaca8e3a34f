package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect cached scrape results",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded scrapes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.DB.ListEntries(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
			return nil
		}
		renderEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:     "show <brand> <model> <max-mileage>",
	Short:   "Print the most recent cached result for a search",
	Example: `  carscout cache show perodua myvi 50000`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		cached, err := a.Service.Cached(cmd.Context(), inputFromArgs(args))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cached == nil {
			fmt.Fprintln(w, "No cached results for this search.")
			return nil
		}

		e := cached.Entry
		fmt.Fprintf(w, "Cached results for %s %s up to %s, last extracted %s (%s)\n",
			e.Brand, e.Model, formatMileage(e.MaxMileage), e.Timestamp, e.Filename)
		renderRows(w, cached.Results.Rows)
		return nil
	},
}

func init() {
	cacheListCmd.Flags().Int("limit", 20, "maximum number of entries to show (0 for all)")
	cacheCmd.AddCommand(cacheListCmd, cacheShowCmd)
	rootCmd.AddCommand(cacheCmd)
}
