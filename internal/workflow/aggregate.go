package workflow

import (
	"time"

	"carscout/internal/models"
)

// Aggregate concatenates per-page records in page order and numbers the rows
// from 1. All rows share the UTC capture time at. An empty concatenation
// returns ErrNoResults.
func Aggregate(q models.Query, pages [][]models.ListingRecord, at time.Time) (*models.ResultSet, error) {
	total := 0
	for _, page := range pages {
		total += len(page)
	}
	if total == 0 {
		return nil, ErrNoResults
	}

	rows := make([]models.ResultRow, 0, total)
	for _, page := range pages {
		for _, rec := range page {
			rows = append(rows, models.ResultRow{No: len(rows) + 1, ListingRecord: rec})
		}
	}

	return &models.ResultSet{
		Query:       q,
		ExtractedAt: at.UTC(),
		Rows:        rows,
	}, nil
}
