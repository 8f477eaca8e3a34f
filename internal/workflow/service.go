package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"carscout/internal/models"
	"carscout/internal/scraper"
	"carscout/internal/session"
	"carscout/internal/validation"
)

// Extractor returns the listings found on one result page.
type Extractor interface {
	ExtractListings(ctx context.Context, pageURL string) ([]models.ListingRecord, error)
}

type CacheStore interface {
	LatestEntry(ctx context.Context, brand, model string, maxMileage int) (*models.CacheEntry, error)
	InsertEntry(ctx context.Context, entry models.CacheEntry) error
}

type ResultStore interface {
	Write(rs *models.ResultSet) (string, error)
	Read(name string) (*models.ResultSet, error)
}

type URLBuilder interface {
	PageURL(q models.Query, n int) string
}

type Deps struct {
	Counter   scraper.PageCounter
	Extractor Extractor
	Cache     CacheStore
	Results   ResultStore
	URLs      URLBuilder
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service runs the user actions: validate, show cached results, detect
// pages and scrape. Each call runs to completion; callers serialize them.
type Service struct {
	counter   scraper.PageCounter
	extractor Extractor
	cache     CacheStore
	results   ResultStore
	urls      URLBuilder
	now       func() time.Time
	log       zerolog.Logger
}

// Cached is the most recent stored result for a query.
type Cached struct {
	Entry   models.CacheEntry
	Results *models.ResultSet
}

// Outcome is the result of a completed scrape. When NoResults is set no
// file or cache entry was written.
type Outcome struct {
	Query     models.Query
	Pages     int
	NoResults bool
	Results   *models.ResultSet
	Filename  string
	// CacheErr is set when the file was saved but the cache row was not.
	CacheErr error
}

func NewService(d Deps, log zerolog.Logger) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		counter:   d.Counter,
		extractor: d.Extractor,
		cache:     d.Cache,
		results:   d.Results,
		urls:      d.URLs,
		now:       now,
		log:       log.With().Str("module", "workflow").Logger(),
	}
}

// Validate checks raw input without side effects.
func (s *Service) Validate(in validation.Input) validation.Result {
	return validation.Check(in)
}

func (s *Service) query(in validation.Input) (models.Query, error) {
	res := validation.Check(in)
	if !res.Ready() {
		return models.Query{}, &ValidationError{Hint: res.Hint(), Invalid: res.Invalid}
	}
	return res.Query(), nil
}

// Cached returns the latest stored result for the input, or nil when the
// query was never scraped.
func (s *Service) Cached(ctx context.Context, in validation.Input) (*Cached, error) {
	q, err := s.query(in)
	if err != nil {
		return nil, err
	}

	entry, err := s.cache.LatestEntry(ctx, q.Brand, q.Model, q.MaxMileage)
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	rs, err := s.results.Read(entry.Filename)
	if err != nil {
		return nil, &CacheReadError{Filename: entry.Filename, Err: err}
	}
	rs.Query = entry.Query()

	return &Cached{Entry: *entry, Results: rs}, nil
}

// DetectPages counts the result pages for the input and records the count
// in st. On failure the count in st is reset to unknown.
func (s *Service) DetectPages(ctx context.Context, st *session.State, in validation.Input) (int, error) {
	q, err := s.query(in)
	if err != nil {
		return 0, err
	}

	start := s.now()
	pages, err := s.counter.CountPages(ctx, q)
	if err != nil {
		st.ResetPageCount()
		return 0, &DiscoveryError{Err: err}
	}
	if pages < 1 {
		pages = 1
	}

	st.SetPageCount(q, pages)
	s.log.Info().
		Str("brand", q.Brand).
		Str("model", q.Model).
		Str("max_mileage", humanize.Comma(int64(q.MaxMileage))).
		Int("pages", pages).
		Dur("took", s.now().Sub(start)).
		Msg("Pages detected")
	return pages, nil
}

// Scrape extracts pages 1..pages sequentially. The first failing page
// abandons the run and nothing is written. A run with zero listings returns
// an Outcome with NoResults set.
func (s *Service) Scrape(ctx context.Context, st *session.State, in validation.Input, pages int) (*Outcome, error) {
	q, err := s.query(in)
	if err != nil {
		return nil, err
	}

	known := st.PageCount(q)
	if known == 0 {
		return nil, ErrPagesUnknown
	}
	if pages < 1 || pages > known {
		return nil, &PageRangeError{Requested: pages, Max: known}
	}

	batches := make([][]models.ListingRecord, 0, pages)
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, &ExtractionError{Page: n, Err: err}
		}
		records, err := s.extractor.ExtractListings(ctx, s.urls.PageURL(q, n))
		if err != nil {
			return nil, &ExtractionError{Page: n, Err: err}
		}
		s.log.Debug().Int("page", n).Int("records", len(records)).Msg("Page done")
		batches = append(batches, records)
	}

	out := &Outcome{Query: q, Pages: pages}

	rs, err := Aggregate(q, batches, s.now())
	if errors.Is(err, ErrNoResults) {
		out.NoResults = true
		s.log.Info().Int("pages", pages).Msg("Scrape finished without listings")
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	name, err := s.results.Write(rs)
	if err != nil {
		return nil, fmt.Errorf("could not save results: %w", err)
	}
	out.Results = rs
	out.Filename = name
	st.SetLastFile(name)

	entry := models.CacheEntry{
		Brand:      q.Brand,
		Model:      q.Model,
		MinMileage: q.MinMileage,
		MaxMileage: q.MaxMileage,
		Timestamp:  rs.ExtractedAt.Format(models.TimestampLayout),
		Filename:   name,
	}
	if err := s.cache.InsertEntry(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("Cache insert failed")
		out.CacheErr = err
	}

	s.log.Info().
		Int("pages", pages).
		Int("listings", rs.Len()).
		Str("file", name).
		Msg("Scrape finished")
	return out, nil
}
