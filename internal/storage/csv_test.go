package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"carscout/internal/models"
)

func sampleResultSet() *models.ResultSet {
	return &models.ResultSet{
		Query:       models.Query{Brand: "Perodua", Model: "Myvi", MaxMileage: 50000},
		ExtractedAt: time.Date(2025, 3, 4, 9, 30, 15, 0, time.UTC),
		Rows: []models.ResultRow{
			{No: 1, ListingRecord: models.ListingRecord{Brand: "Perodua", Model: "Myvi", Year: 2019, Mileage: 42000, Price: 38900}},
			{No: 2, ListingRecord: models.ListingRecord{Brand: "Perodua", Model: "Myvi, AV", Year: 2021, Mileage: 18500, Price: 51888.5}},
		},
	}
}

func TestFileName(t *testing.T) {
	rs := sampleResultSet()
	require.Equal(t, "listings_Perodua_Myvi_upto50000_2025-03-04_09-30-15.csv", FileName(rs.Query, rs.ExtractedAt))

	q := models.Query{Brand: "Mercedes Benz", Model: "C/200 ", MaxMileage: 1000}
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.FixedZone("MYT", 8*3600))
	require.Equal(t, "listings_Mercedes-Benz_C-200_upto1000_2024-12-31_16-00-00.csv", FileName(q, at))
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := NewCSVStore(t.TempDir(), zerolog.Nop())
	rs := sampleResultSet()

	name, err := store.Write(rs)
	require.NoError(t, err)
	require.Equal(t, FileName(rs.Query, rs.ExtractedAt), name)

	got, err := store.Read(name)
	require.NoError(t, err)
	require.True(t, got.ExtractedAt.Equal(rs.ExtractedAt))
	if diff := cmp.Diff(rs.Rows, got.Rows); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	// No temp files left behind
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteRejectsEmptyResultSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	store := NewCSVStore(dir, zerolog.Nop())

	_, err := store.Write(&models.ResultSet{})
	require.Error(t, err)

	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr), "no directory should be created for an empty result")
}

func TestReadLegacyExport(t *testing.T) {
	dir := t.TempDir()
	name := "car_price_updated_2024-06-01_12-00-00.csv"
	contents := "No.,brand,model,year,mileage,price,timestamp\n" +
		"1,Perodua,Myvi,2018,61000,33500.0,2024-06-01 12:00:00.123456+00:00\n" +
		"2,Perodua,Myvi,2020.0,25000,45900.0,2024-06-01 12:00:00.123456+00:00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))

	rs, err := NewCSVStore(dir, zerolog.Nop()).Read(name)
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())
	require.Equal(t, 2020, rs.Rows[1].Year)
	require.InDelta(t, 45900.0, rs.Rows[1].Price, 1e-9)
	require.Equal(t, 2024, rs.ExtractedAt.Year())
}

func TestReadMissingFile(t *testing.T) {
	store := NewCSVStore(t.TempDir(), zerolog.Nop())
	_, err := store.Read("listings_Perodua_Myvi_upto1_2025-01-01_00-00-00.csv")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestReadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	name := "listings_bad.csv"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("brand,model\nPerodua,Myvi\n"), 0o644))

	_, err := NewCSVStore(dir, zerolog.Nop()).Read(name)
	require.ErrorContains(t, err, "missing column")
}

func TestPathRejectsUnsafeNames(t *testing.T) {
	store := NewCSVStore("/srv/exports", zerolog.Nop())

	for _, name := range []string{"", "../listings_x.csv", "listings_x.txt", "secrets.csv", "sub/listings_x.csv", "/etc/listings_x.csv"} {
		_, err := store.Path(name)
		require.Truef(t, errors.Is(err, ErrInvalidName), "expected %q to be rejected, got %v", name, err)
	}

	path, err := store.Path("listings_ok.csv")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(path, "/srv/exports"))
}
