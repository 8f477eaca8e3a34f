package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"carscout/internal/models"
)

// Result files are named listings_<brand>_<model>_upto<max>_<timestamp>.csv.
// Files written by the first version of the tool used car_price_updated_<timestamp>.csv.
const (
	filePrefix       = "listings_"
	legacyFilePrefix = "car_price_updated_"
	fileExt          = ".csv"
)

// Header is the column layout of a result file.
var Header = []string{"No.", "brand", "model", "year", "mileage", "price", "timestamp"}

var (
	ErrInvalidName = errors.New("invalid result file name")
	ErrNotFound    = errors.New("result file not found")

	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9-]+`)
)

// CSVStore reads and writes result files in one directory.
type CSVStore struct {
	dir string
	log zerolog.Logger
}

func NewCSVStore(dir string, log zerolog.Logger) *CSVStore {
	return &CSVStore{
		dir: dir,
		log: log.With().Str("module", "storage").Logger(),
	}
}

// Dir returns the output directory.
func (s *CSVStore) Dir() string {
	return s.dir
}

// FileName returns the deterministic file name for a scrape of q at time at.
func FileName(q models.Query, at time.Time) string {
	return fmt.Sprintf("%s%s_%s_upto%d_%s%s",
		filePrefix, slug(q.Brand), slug(q.Model), q.MaxMileage, at.UTC().Format(models.TimestampLayout), fileExt)
}

func slug(s string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(s), "-"), "-")
}

// Write saves rs to its file and returns the file name (relative to the
// store directory). The file appears atomically.
func (s *CSVStore) Write(rs *models.ResultSet) (string, error) {
	if rs.Len() == 0 {
		return "", errors.New("refusing to write an empty result set")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errors.Wrap(err, "could not create output dir")
	}

	name := FileName(rs.Query, rs.ExtractedAt)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*"+fileExt)
	if err != nil {
		return "", errors.Wrap(err, "could not create file")
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, rs); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "could not close file")
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", errors.Wrap(err, "could not move file into place")
	}

	s.log.Info().Int("rows", rs.Len()).Str("file", name).Msg("Saved result file")
	return name, nil
}

// Encode writes rs as CSV to w.
func Encode(w io.Writer, rs *models.ResultSet) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return errors.Wrap(err, "csv write error")
	}

	ts := rs.ExtractedAt.UTC().Format(time.RFC3339)
	for _, row := range rs.Rows {
		err := writer.Write([]string{
			strconv.Itoa(row.No),
			row.Brand,
			row.Model,
			strconv.Itoa(row.Year),
			strconv.Itoa(row.Mileage),
			strconv.FormatFloat(row.Price, 'f', -1, 64),
			ts,
		})
		if err != nil {
			return errors.Wrap(err, "csv write error")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "csv write error")
}

// Path resolves a result file name inside the store directory. Only plain
// result file names are accepted.
func (s *CSVStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, fileExt) ||
		!(strings.HasPrefix(name, filePrefix) || strings.HasPrefix(name, legacyFilePrefix)) {
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	}

	return filepath.Join(s.dir, name), nil
}

// Read loads a result file written by Write or by the legacy exporter.
func (s *CSVStore) Read(name string) (*models.ResultSet, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not open result file")
	}
	defer f.Close()

	rs, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", name)
	}

	return rs, nil
}
