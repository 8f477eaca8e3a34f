package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carscout/internal/models"
	"carscout/internal/scraper"
	"carscout/internal/session"
	"carscout/internal/validation"
)

type fakeCounter struct {
	pages int
	err   error
	calls int
}

func (f *fakeCounter) CountPages(_ context.Context, _ models.Query) (int, error) {
	f.calls++
	return f.pages, f.err
}

// fakeExtractor serves pages by URL and fails on failURL.
type fakeExtractor struct {
	pages   map[string][]models.ListingRecord
	failURL string
	calls   []string
}

func (f *fakeExtractor) ExtractListings(_ context.Context, pageURL string) ([]models.ListingRecord, error) {
	f.calls = append(f.calls, pageURL)
	if pageURL == f.failURL {
		return nil, errors.New("service unavailable")
	}
	return f.pages[pageURL], nil
}

type fakeCache struct {
	entries []models.CacheEntry
	err     error
}

func (f *fakeCache) LatestEntry(_ context.Context, brand, model string, maxMileage int) (*models.CacheEntry, error) {
	var latest *models.CacheEntry
	for i := range f.entries {
		e := f.entries[i]
		if e.Brand == brand && e.Model == model && e.MaxMileage == maxMileage {
			if latest == nil || e.Timestamp > latest.Timestamp {
				latest = &e
			}
		}
	}
	return latest, nil
}

func (f *fakeCache) InsertEntry(_ context.Context, entry models.CacheEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeResults struct {
	files map[string]*models.ResultSet
}

func (f *fakeResults) Write(rs *models.ResultSet) (string, error) {
	name := fmt.Sprintf("listings_%d.csv", len(f.files)+1)
	f.files[name] = rs
	return name, nil
}

func (f *fakeResults) Read(name string) (*models.ResultSet, error) {
	rs, ok := f.files[name]
	if !ok {
		return nil, errors.New("file does not exist")
	}
	copied := *rs
	return &copied, nil
}

var (
	testInput = validation.Input{Brand: " Perodua ", Model: "Myvi", MaxMileage: "50,000"}
	testQuery = models.Query{Brand: "Perodua", Model: "Myvi", MaxMileage: 50000}
	testNow   = time.Date(2025, 3, 4, 9, 30, 15, 0, time.UTC)
)

type harness struct {
	svc       *Service
	counter   *fakeCounter
	extractor *fakeExtractor
	cache     *fakeCache
	results   *fakeResults
	site      *scraper.Carsome
}

func newHarness() *harness {
	h := &harness{
		counter:   &fakeCounter{pages: 3},
		extractor: &fakeExtractor{pages: map[string][]models.ListingRecord{}},
		cache:     &fakeCache{},
		results:   &fakeResults{files: map[string]*models.ResultSet{}},
		site:      scraper.NewCarsome("https://www.carsome.my"),
	}
	h.svc = NewService(Deps{
		Counter:   h.counter,
		Extractor: h.extractor,
		Cache:     h.cache,
		Results:   h.results,
		URLs:      h.site,
		Now:       func() time.Time { return testNow },
	}, zerolog.Nop())
	return h
}

func (h *harness) setPage(n int, records ...models.ListingRecord) {
	h.extractor.pages[h.site.PageURL(testQuery, n)] = records
}

func listing(model string, year int) models.ListingRecord {
	return models.ListingRecord{Brand: "Perodua", Model: model, Year: year, Mileage: 10000, Price: 40000}
}

func TestAggregatePreservesOrder(t *testing.T) {
	pages := [][]models.ListingRecord{
		{listing("a", 2018), listing("b", 2019)},
		{},
		{listing("c", 2020)},
	}

	rs, err := Aggregate(testQuery, pages, testNow.In(time.FixedZone("MYT", 8*3600)))
	require.NoError(t, err)

	want := []models.ResultRow{
		{No: 1, ListingRecord: listing("a", 2018)},
		{No: 2, ListingRecord: listing("b", 2019)},
		{No: 3, ListingRecord: listing("c", 2020)},
	}
	if diff := cmp.Diff(want, rs.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, time.UTC, rs.ExtractedAt.Location())
	assert.True(t, rs.ExtractedAt.Equal(testNow))
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(testQuery, [][]models.ListingRecord{{}, {}}, testNow)
	require.ErrorIs(t, err, ErrNoResults)

	_, err = Aggregate(testQuery, nil, testNow)
	require.ErrorIs(t, err, ErrNoResults)
}

func TestDetectPages(t *testing.T) {
	h := newHarness()
	st := session.NewState()

	pages, err := h.svc.DetectPages(context.Background(), st, testInput)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, st.PageCount(testQuery))
}

func TestDetectPagesFailureResetsCount(t *testing.T) {
	h := newHarness()
	st := session.NewState()
	st.SetPageCount(testQuery, 5)

	h.counter.err = scraper.ErrPaginationNotFound
	_, err := h.svc.DetectPages(context.Background(), st, testInput)

	var discoveryErr *DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
	assert.ErrorIs(t, err, scraper.ErrPaginationNotFound)
	assert.Zero(t, st.PageCount(testQuery))
}

func TestActionsRequireValidInput(t *testing.T) {
	h := newHarness()
	st := session.NewState()
	bad := validation.Input{Brand: "Perodua", Model: "", MaxMileage: "lots"}

	_, err := h.svc.DetectPages(context.Background(), st, bad)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []string{validation.FieldModel, validation.FieldMaxMileage}, validationErr.Invalid)
	assert.Zero(t, h.counter.calls)

	_, err = h.svc.Scrape(context.Background(), st, bad, 1)
	require.ErrorAs(t, err, &validationErr)

	_, err = h.svc.Cached(context.Background(), bad)
	require.ErrorAs(t, err, &validationErr)
}

func TestScrapeRequiresDetectedPages(t *testing.T) {
	h := newHarness()
	st := session.NewState()

	_, err := h.svc.Scrape(context.Background(), st, testInput, 1)
	require.ErrorIs(t, err, ErrPagesUnknown)

	// A count detected for another query does not carry over
	st.SetPageCount(models.Query{Brand: "Perodua", Model: "Axia", MaxMileage: 50000}, 4)
	_, err = h.svc.Scrape(context.Background(), st, testInput, 1)
	require.ErrorIs(t, err, ErrPagesUnknown)

	st.SetPageCount(testQuery, 2)
	for _, pages := range []int{0, 3} {
		_, err = h.svc.Scrape(context.Background(), st, testInput, pages)
		var rangeErr *PageRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, 2, rangeErr.Max)
	}
	assert.Empty(t, h.extractor.calls)
}

func TestScrapeWritesFileAndCache(t *testing.T) {
	h := newHarness()
	st := session.NewState()
	st.SetPageCount(testQuery, 3)
	h.setPage(1, listing("Myvi", 2018), listing("Myvi", 2019))
	h.setPage(2, listing("Myvi", 2020))
	h.setPage(3, listing("Myvi", 2021))

	out, err := h.svc.Scrape(context.Background(), st, testInput, 2)
	require.NoError(t, err)
	require.False(t, out.NoResults)

	assert.Equal(t, []string{h.site.PageURL(testQuery, 1), h.site.PageURL(testQuery, 2)}, h.extractor.calls)
	assert.Equal(t, 3, out.Results.Len())
	assert.Equal(t, 3, out.Results.Rows[2].No)
	assert.Nil(t, out.CacheErr)

	require.Len(t, h.cache.entries, 1)
	assert.Equal(t, models.CacheEntry{
		Brand:      "Perodua",
		Model:      "Myvi",
		MaxMileage: 50000,
		Timestamp:  "2025-03-04_09-30-15",
		Filename:   out.Filename,
	}, h.cache.entries[0])
	assert.Contains(t, h.results.files, out.Filename)
	assert.Equal(t, out.Filename, st.Snapshot().LastFile)
}

func TestScrapeFailureWritesNothing(t *testing.T) {
	h := newHarness()
	st := session.NewState()
	st.SetPageCount(testQuery, 3)
	h.setPage(1, listing("Myvi", 2018))
	h.setPage(3, listing("Myvi", 2021))
	h.extractor.failURL = h.site.PageURL(testQuery, 2)

	_, err := h.svc.Scrape(context.Background(), st, testInput, 3)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, 2, extractionErr.Page)
	assert.Len(t, h.extractor.calls, 2, "pages after the failure must not be fetched")
	assert.Empty(t, h.results.files)
	assert.Empty(t, h.cache.entries)
}

func TestScrapeNoResultsWritesNothing(t *testing.T) {
	h := newHarness()
	st := session.NewState()
	st.SetPageCount(testQuery, 2)

	out, err := h.svc.Scrape(context.Background(), st, testInput, 2)
	require.NoError(t, err)
	assert.True(t, out.NoResults)
	assert.Nil(t, out.Results)
	assert.Empty(t, h.results.files)
	assert.Empty(t, h.cache.entries)
}

func TestScrapeKeepsResultsWhenCacheInsertFails(t *testing.T) {
	h := newHarness()
	st := session.NewState()
	st.SetPageCount(testQuery, 1)
	h.setPage(1, listing("Myvi", 2018))
	h.cache.err = errors.New("database is locked")

	out, err := h.svc.Scrape(context.Background(), st, testInput, 1)
	require.NoError(t, err)
	assert.Error(t, out.CacheErr)
	assert.NotEmpty(t, out.Filename)
}

func TestCached(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	cached, err := h.svc.Cached(ctx, testInput)
	require.NoError(t, err)
	assert.Nil(t, cached)

	st := session.NewState()
	st.SetPageCount(testQuery, 1)
	h.setPage(1, listing("Myvi", 2018))
	out, err := h.svc.Scrape(ctx, st, testInput, 1)
	require.NoError(t, err)

	cached, err = h.svc.Cached(ctx, testInput)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, out.Filename, cached.Entry.Filename)
	assert.Equal(t, 1, cached.Results.Len())
	assert.Equal(t, testQuery, cached.Results.Query)
}

func TestCachedMissingFile(t *testing.T) {
	h := newHarness()
	h.cache.entries = append(h.cache.entries, models.CacheEntry{
		Brand: "Perodua", Model: "Myvi", MaxMileage: 50000,
		Timestamp: "2024-06-01_12-00-00", Filename: "car_price_updated_2024-06-01_12-00-00.csv",
	})

	_, err := h.svc.Cached(context.Background(), testInput)
	var readErr *CacheReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "car_price_updated_2024-06-01_12-00-00.csv", readErr.Filename)
}
