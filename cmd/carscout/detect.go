package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"carscout/internal/session"
)

var detectCmd = &cobra.Command{
	Use:   "detect <brand> <model> <max-mileage>",
	Short: "Detect how many result pages a search has",
	Long: `Detect opens the search in a headless browser (or fetches it directly with
--discoverer static), applies the mileage filter and prints the number of
result pages. No Firecrawl credits are used.`,
	Example: `  carscout detect Perodua Myvi 50,000`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		pages, err := a.Service.DetectPages(ctx, session.NewState(), inputFromArgs(args))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Max pages available: %d\n", pages)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
