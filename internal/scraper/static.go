package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly"
	"github.com/rs/zerolog"

	"carscout/internal/models"
)

// StaticCounter reads the pagination list from the server-rendered search
// page, relying on the mileage range in the URL instead of the filter panel.
// It needs no browser but only works while the site renders pagination on
// the server.
type StaticCounter struct {
	site    *Carsome
	timeout time.Duration
	log     zerolog.Logger
}

func NewStaticCounter(site *Carsome, timeout time.Duration, log zerolog.Logger) *StaticCounter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StaticCounter{
		site:    site,
		timeout: timeout,
		log:     log.With().Str("module", "static").Logger(),
	}
}

func (s *StaticCounter) CountPages(ctx context.Context, q models.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(s.timeout)

	var (
		found  bool
		labels []string
	)
	c.OnHTML(paginationNavSelector+" ul.v-pagination", func(e *colly.HTMLElement) {
		found = true
		labels = append(labels, pageLabels(e.DOM)...)
	})

	searchURL := s.site.SearchURL(q)
	s.log.Info().Str("url", searchURL).Msg("Fetching search page")
	if err := c.Visit(searchURL); err != nil {
		return 0, fmt.Errorf("fetch failed: %w", err)
	}
	c.Wait()

	if !found {
		return 0, ErrPaginationNotFound
	}

	pages := MaxPageNumber(labels)
	s.log.Info().Strs("labels", labels).Int("pages", pages).Msg("Pagination read")
	return pages, nil
}
