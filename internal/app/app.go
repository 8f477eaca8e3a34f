package app

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"carscout/internal/config"
	"carscout/internal/database"
	"carscout/internal/extract"
	"carscout/internal/scraper"
	"carscout/internal/storage"
	"carscout/internal/workflow"
)

// App holds the process-lifetime components shared by the server and the
// CLI commands.
type App struct {
	Config  *config.Config
	DB      *database.Database
	Files   *storage.CSVStore
	Site    *scraper.Carsome
	Service *workflow.Service
	Log     zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	db, err := database.NewDatabase(cfg.DatabasePath, log)
	if err != nil {
		return nil, errors.Wrap(err, "could not open cache database")
	}

	site := scraper.NewCarsome(cfg.SiteURL)
	counter, err := scraper.New(cfg, site, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	files := storage.NewCSVStore(cfg.OutputDir, log)
	extractor := extract.NewClient(extract.Options{
		BaseURL: cfg.FirecrawlURL,
		APIKey:  cfg.FirecrawlAPIKey,
		RPS:     cfg.FirecrawlRPS,
		Timeout: cfg.FirecrawlTimeout,
	}, log)

	svc := workflow.NewService(workflow.Deps{
		Counter:   counter,
		Extractor: extractor,
		Cache:     db,
		Results:   files,
		URLs:      site,
	}, log)

	return &App{
		Config:  cfg,
		DB:      db,
		Files:   files,
		Site:    site,
		Service: svc,
		Log:     log,
	}, nil
}

// Close releases the cache database.
func (a *App) Close() error {
	return a.DB.Close()
}
