package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResults means every requested page was extracted but none held a
	// listing. Nothing is written.
	ErrNoResults = errors.New("no results found matching your criteria")

	// ErrPagesUnknown means Scrape ran before pages were detected for the
	// same query.
	ErrPagesUnknown = errors.New("detect pages before scraping")
)

// ValidationError blocks an action until the input is corrected.
type ValidationError struct {
	Hint    string
	Invalid []string
}

func (e *ValidationError) Error() string {
	return e.Hint
}

// PageRangeError rejects a page count outside 1..Max.
type PageRangeError struct {
	Requested int
	Max       int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("pages to scrape must be between 1 and %d, got %d", e.Max, e.Requested)
}

// DiscoveryError wraps a page-count detection failure. The session's page
// count is reset when one is returned.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to detect pages: %v", e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ExtractionError reports the page whose extraction failed. The whole run
// is abandoned.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("scraping failed on page %d: %v", e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// CacheReadError reports a cached result file that could not be loaded.
type CacheReadError struct {
	Filename string
	Err      error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("could not load cached results from %s: %v", e.Filename, e.Err)
}

func (e *CacheReadError) Unwrap() error {
	return e.Err
}
