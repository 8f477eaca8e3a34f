package storage

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"carscout/internal/models"
)

// Layouts seen in the timestamp column: ours, then the legacy exporter's.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
}

// Decode parses a result file. Columns are matched by header name so files
// with extra or reordered columns still load.
func Decode(r io.Reader) (*models.ResultSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{"brand", "model", "year", "mileage", "price"} {
		if _, ok := index[required]; !ok {
			return nil, errors.Errorf("missing column %q", required)
		}
	}

	rs := &models.ResultSet{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		row, ts, err := decodeRow(record, index, len(rs.Rows)+1)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if rs.ExtractedAt.IsZero() && !ts.IsZero() {
			rs.ExtractedAt = ts
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, nil
}

func decodeRow(record []string, index map[string]int, position int) (models.ResultRow, time.Time, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := models.ResultRow{No: position}
	row.Brand = field("brand")
	row.Model = field("model")

	var err error
	if row.Year, err = parseWhole(field("year")); err != nil {
		return row, time.Time{}, errors.Wrap(err, "year")
	}
	if row.Mileage, err = parseWhole(field("mileage")); err != nil {
		return row, time.Time{}, errors.Wrap(err, "mileage")
	}
	if row.Price, err = strconv.ParseFloat(field("price"), 64); err != nil {
		return row, time.Time{}, errors.Wrap(err, "price")
	}
	if no := field("no."); no != "" {
		if row.No, err = parseWhole(no); err != nil {
			return row, time.Time{}, errors.Wrap(err, "row number")
		}
	}

	return row, parseTimestamp(field("timestamp")), nil
}

// parseWhole accepts "2019" as well as the "2019.0" legacy files contain for
// integer columns that went through a float.
func parseWhole(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
