package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"carscout/internal/config"
	"carscout/internal/models"
)

// PageCounter detects how many result pages a search has. Adapters hold all
// site markup knowledge so the workflow never sees selectors.
type PageCounter interface {
	CountPages(ctx context.Context, q models.Query) (int, error)
}

var (
	ErrFilterNotFound     = errors.New("mileage filter not found")
	ErrMaxInputNotFound   = errors.New("max mileage input not found")
	ErrApplyNotFound      = errors.New("apply button not found")
	ErrPaginationNotFound = errors.New("pagination not found")
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// New returns the page counter selected in the config.
func New(cfg *config.Config, site *Carsome, log zerolog.Logger) (PageCounter, error) {
	switch cfg.Discoverer {
	case config.DiscovererBrowser:
		return NewBrowserCounter(site, BrowserOptions{
			Timeout:   cfg.BrowserTimeout,
			ChromeBin: cfg.ChromeBin,
			Headless:  cfg.Headless,
		}, log), nil
	case config.DiscovererStatic:
		return NewStaticCounter(site, cfg.BrowserTimeout, log), nil
	default:
		return nil, fmt.Errorf("unknown discoverer %q", cfg.Discoverer)
	}
}
