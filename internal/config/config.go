package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Discoverer adapters.
const (
	DiscovererBrowser = "browser"
	DiscovererStatic  = "static"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	SiteURL string

	FirecrawlAPIKey  string
	FirecrawlURL     string
	FirecrawlRPS     float64
	FirecrawlTimeout time.Duration

	DatabasePath string
	OutputDir    string

	Discoverer     string
	BrowserTimeout time.Duration
	ChromeBin      string
	Headless       bool

	AccessKeyHash string
	APIRPS        float64
	APIBurst      int
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("log_level", "info")
	v.SetDefault("site_url", "https://www.carsome.my")
	v.SetDefault("firecrawl_url", "https://api.firecrawl.dev")
	v.SetDefault("firecrawl_rps", 1.0)
	v.SetDefault("firecrawl_timeout", 2*time.Minute)
	v.SetDefault("database_path", "data/car_cache.db")
	v.SetDefault("output_dir", "data/exports")
	v.SetDefault("discoverer", DiscovererBrowser)
	v.SetDefault("browser_timeout", 10*time.Second)
	v.SetDefault("headless", true)
	v.SetDefault("api_rps", 2.0)
	v.SetDefault("api_burst", 5)
}

// Init loads .env (if present), an optional config file and the environment
// into v. Variables are read as CARSCOUT_<KEY>; a few common ones are also
// accepted without the prefix.
func Init(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)

	v.SetEnvPrefix("CARSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("firecrawl_api_key", "CARSCOUT_FIRECRAWL_API_KEY", "FIRECRAWL_API_KEY")
	_ = v.BindEnv("port", "CARSCOUT_PORT", "PORT")
	_ = v.BindEnv("gin_mode", "CARSCOUT_GIN_MODE", "GIN_MODE")
	_ = v.BindEnv("chrome_bin", "CARSCOUT_CHROME_BIN", "CHROME_BIN")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetString("port"),
		GinMode:          v.GetString("gin_mode"),
		LogLevel:         v.GetString("log_level"),
		SiteURL:          strings.TrimRight(v.GetString("site_url"), "/"),
		FirecrawlAPIKey:  v.GetString("firecrawl_api_key"),
		FirecrawlURL:     strings.TrimRight(v.GetString("firecrawl_url"), "/"),
		FirecrawlRPS:     v.GetFloat64("firecrawl_rps"),
		FirecrawlTimeout: v.GetDuration("firecrawl_timeout"),
		DatabasePath:     v.GetString("database_path"),
		OutputDir:        v.GetString("output_dir"),
		Discoverer:       strings.ToLower(v.GetString("discoverer")),
		BrowserTimeout:   v.GetDuration("browser_timeout"),
		ChromeBin:        v.GetString("chrome_bin"),
		Headless:         v.GetBool("headless"),
		AccessKeyHash:    v.GetString("access_key_hash"),
		APIRPS:           v.GetFloat64("api_rps"),
		APIBurst:         v.GetInt("api_burst"),
	}

	if cfg.Discoverer != DiscovererBrowser && cfg.Discoverer != DiscovererStatic {
		return nil, fmt.Errorf("invalid discoverer: %s (must be '%s' or '%s')", cfg.Discoverer, DiscovererBrowser, DiscovererStatic)
	}
	if cfg.SiteURL == "" {
		return nil, fmt.Errorf("site_url is required")
	}
	if cfg.DatabasePath == "" || cfg.OutputDir == "" {
		return nil, fmt.Errorf("database_path and output_dir are required")
	}
	if cfg.BrowserTimeout <= 0 {
		return nil, fmt.Errorf("browser_timeout must be positive")
	}
	if cfg.FirecrawlRPS <= 0 {
		return nil, fmt.Errorf("firecrawl_rps must be positive")
	}

	return cfg, nil
}
