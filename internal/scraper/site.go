package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"carscout/internal/models"
)

// Carsome builds search URLs for carsome.my style sites.
type Carsome struct {
	BaseURL string
}

func NewCarsome(baseURL string) *Carsome {
	return &Carsome{BaseURL: strings.TrimRight(baseURL, "/")}
}

// SearchURL returns the listing search for q, filtered by mileage.
func (c *Carsome) SearchURL(q models.Query) string {
	return fmt.Sprintf("%s/buy-car/%s/%s?mileage=%d,%d",
		c.BaseURL, pathSegment(q.Brand), pathSegment(q.Model), q.MinMileage, q.MaxMileage)
}

// PageURL returns result page n (1-based) of the search for q.
func (c *Carsome) PageURL(q models.Query, n int) string {
	return fmt.Sprintf("%s&pageNo=%d", c.SearchURL(q), n)
}

func pathSegment(s string) string {
	return url.PathEscape(strings.Join(strings.Fields(strings.ToLower(s)), "-"))
}
