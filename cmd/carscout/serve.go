package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"carscout/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser UI and JSON API",
	Long: `Serve starts the HTTP server with the search UI at / and the JSON API
under /api. Swagger documentation is available at /swagger/index.html.

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			viper.Set("port", port)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if a.Config.FirecrawlAPIKey == "" {
			a.Log.Warn().Msg("FIRECRAWL_API_KEY is not set, scraping will fail")
		}
		if a.Config.AccessKeyHash == "" {
			a.Log.Warn().Msg("No access key configured, detect and scrape are open to anyone")
		}

		if err := server.New(ctx, a).Run(ctx); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}
