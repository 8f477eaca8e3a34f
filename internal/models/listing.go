package models

import (
	"strings"
	"time"
)

// Query identifies one scrape and one cache unit.
type Query struct {
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	MinMileage int    `json:"minMileage"`
	MaxMileage int    `json:"maxMileage"`
}

// Equal reports whether two queries address the same search. Brand and model
// are compared case-insensitively, the same way the cache looks them up.
func (q Query) Equal(other Query) bool {
	return strings.EqualFold(q.Brand, other.Brand) &&
		strings.EqualFold(q.Model, other.Model) &&
		q.MinMileage == other.MinMileage &&
		q.MaxMileage == other.MaxMileage
}

// ListingRecord is one used-car listing as returned by the extraction service.
type ListingRecord struct {
	Brand   string  `json:"brand"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Mileage int     `json:"mileage"` // km
	Price   float64 `json:"price"`   // RM
}

// ResultRow is a listing with its 1-based position in the result set.
type ResultRow struct {
	No int `json:"no"`
	ListingRecord
}

// ResultSet is the combined output of one completed scrape. It is never
// mutated after Aggregate builds it.
type ResultSet struct {
	Query       Query       `json:"query"`
	ExtractedAt time.Time   `json:"extractedAt"`
	Rows        []ResultRow `json:"rows"`
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// CacheEntry points at the CSV file written by a previous scrape.
type CacheEntry struct {
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	MinMileage int    `json:"minMileage"`
	MaxMileage int    `json:"maxMileage"`
	Timestamp  string `json:"timestamp"`
	Filename   string `json:"filename"`
}

// TimestampLayout is the format of CacheEntry.Timestamp and of the timestamp
// embedded in result file names. It sorts lexically in time order.
const TimestampLayout = "2006-01-02_15-04-05"

// Query returns the query the entry was recorded for.
func (e CacheEntry) Query() Query {
	return Query{
		Brand:      e.Brand,
		Model:      e.Model,
		MinMileage: e.MinMileage,
		MaxMileage: e.MaxMileage,
	}
}
