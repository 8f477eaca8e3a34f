package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"carscout/internal/app"
	"carscout/internal/config"
	"carscout/internal/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
	cfgFile string
	// set by initConfig, reported by the first command that needs the config
	initErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "carscout",
	Short: "Used car listing search with cached CSV results",
	Long: `CarScout searches used car listings by brand, model and maximum mileage.
It detects how many result pages a search has with a headless browser,
extracts the listings of each page through Firecrawl and saves the combined
result as a CSV file that is recorded in a local SQLite cache.

Run "carscout serve" for the browser UI, or use the detect, scrape and cache
commands directly.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default info)")
	rootCmd.PersistentFlags().String("database-path", "", "SQLite cache database (default data/car_cache.db)")
	rootCmd.PersistentFlags().String("output-dir", "", "directory for result CSV files (default data/exports)")
	rootCmd.PersistentFlags().String("discoverer", "", "page discoverer: 'browser' or 'static' (default browser)")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("database-path"))
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("discoverer", rootCmd.PersistentFlags().Lookup("discoverer"))
}

// initConfig reads .env, the config file and CARSCOUT_* variables.
func initConfig() {
	initErr = config.Init(viper.GetViper(), cfgFile)
	if initErr == nil && viper.ConfigFileUsed() != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	if initErr != nil {
		return nil, zerolog.Nop(), initErr
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func newApp() (*app.App, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, nil
}
