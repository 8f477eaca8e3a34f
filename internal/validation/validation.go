package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"carscout/internal/models"
)

// Field names used in hints.
const (
	FieldBrand      = "brand"
	FieldModel      = "model"
	FieldMaxMileage = "max mileage"
)

var (
	whitespace         = regexp.MustCompile(`\s+`)
	thousandSeparators = strings.NewReplacer(",", "", "_", "", " ", "", "\u00a0", "", "\u202f", "")
	digitsOnly         = regexp.MustCompile(`^[0-9]+$`)
)

// Input is the raw text the user typed.
type Input struct {
	Brand      string `json:"brand" form:"brand"`
	Model      string `json:"model" form:"model"`
	MaxMileage string `json:"maxMileage" form:"maxMileage"`
}

// Result is the outcome of checking an Input.
type Result struct {
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	MaxMileage   int      `json:"maxMileage"`
	MileageValid bool     `json:"mileageValid"`
	Invalid      []string `json:"invalid,omitempty"`
}

// ParseMileage parses a non-negative whole number of kilometres. Thousands
// separators are ignored. Empty or non-numeric text is invalid, never zero.
func ParseMileage(raw string) (int, bool) {
	s := thousandSeparators.Replace(strings.TrimSpace(raw))
	if !digitsOnly.MatchString(s) {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return n, true
}

// NormalizeName trims a brand or model and collapses inner whitespace.
func NormalizeName(raw string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// Check validates all three inputs and records which ones are missing.
func Check(in Input) Result {
	r := Result{
		Brand: NormalizeName(in.Brand),
		Model: NormalizeName(in.Model),
	}
	r.MaxMileage, r.MileageValid = ParseMileage(in.MaxMileage)

	if r.Brand == "" {
		r.Invalid = append(r.Invalid, FieldBrand)
	}
	if r.Model == "" {
		r.Invalid = append(r.Invalid, FieldModel)
	}
	if !r.MileageValid {
		r.Invalid = append(r.Invalid, FieldMaxMileage)
	}

	return r
}

// Ready reports whether actions may proceed.
func (r Result) Ready() bool {
	return len(r.Invalid) == 0
}

// Hint is the inline message shown while the input is not ready.
func (r Result) Hint() string {
	if r.Ready() {
		return ""
	}

	hint := "Please enter " + joinFields(r.Invalid)
	if !r.MileageValid {
		hint += " (max mileage must be a whole number, e.g. 50,000)"
	}
	return hint
}

// Query returns the canonical query. The minimum mileage is always 0.
func (r Result) Query() models.Query {
	return models.Query{
		Brand:      r.Brand,
		Model:      r.Model,
		MinMileage: 0,
		MaxMileage: r.MaxMileage,
	}
}

// Err returns nil when ready, otherwise an error carrying the hint.
func (r Result) Err() error {
	if r.Ready() {
		return nil
	}
	return errors.New(r.Hint())
}

func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
	}
}
