package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"carscout/internal/models"
)

// SchemaVersion identifies the record shape requested from the extraction
// service. Bump it whenever listingSchema changes.
const SchemaVersion = "listings/v1"

const (
	extractionPrompt = "Extract used car listings (brand, model, year, mileage, price)"
	systemPrompt     = "You are a helpful assistant extracting used car data"
)

var requiredFields = []string{"brand", "model", "year", "mileage", "price"}

// listingSchema is the JSON schema sent with every request.
var listingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"listings": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"brand":   map[string]any{"type": "string"},
					"model":   map[string]any{"type": "string"},
					"year":    map[string]any{"type": "integer"},
					"mileage": map[string]any{"type": "integer"},
					"price":   map[string]any{"type": "number"},
				},
				"required": requiredFields,
			},
		},
	},
	"required": []string{"listings"},
}

var numberPattern = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// decodeListings validates the structured payload against the schema. A
// payload without a listings array is an error; individual records that do
// not conform are skipped and counted.
func decodeListings(raw json.RawMessage) ([]models.ListingRecord, int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, 0, fmt.Errorf("%w: no structured data", ErrMalformedResponse)
	}

	var payload struct {
		Listings *[]map[string]any `json:"listings"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Listings == nil {
		return nil, 0, fmt.Errorf("%w: missing listings", ErrMalformedResponse)
	}

	records := make([]models.ListingRecord, 0, len(*payload.Listings))
	dropped := 0
	for _, item := range *payload.Listings {
		rec, ok := toRecord(item)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

func toRecord(item map[string]any) (models.ListingRecord, bool) {
	var rec models.ListingRecord
	var ok bool

	if rec.Brand, ok = toText(item["brand"]); !ok {
		return rec, false
	}
	if rec.Model, ok = toText(item["model"]); !ok {
		return rec, false
	}
	if rec.Year, ok = toWhole(item["year"]); !ok {
		return rec, false
	}
	if rec.Mileage, ok = toWhole(item["mileage"]); !ok {
		return rec, false
	}
	if rec.Price, ok = toNumber(item["price"]); !ok {
		return rec, false
	}
	return rec, true
}

func toText(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// toNumber accepts JSON numbers and strings such as "RM 45,900".
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, n >= 0 && !math.IsInf(n, 0) && !math.IsNaN(n)
	case string:
		match := numberPattern.FindString(n)
		if match == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toWhole(v any) (int, bool) {
	f, ok := toNumber(v)
	if !ok || f > math.MaxInt32 {
		return 0, false
	}
	return int(math.Round(f)), true
}
