// Package normalizer converts raw recipe and interaction documents into the
// normalized recipe, ingredient, step and interaction relations.
package normalizer

import (
	"math"
	"strconv"
	"strings"

	"recipepipe/internal/models"
)

// Repair reasons.
const (
	ReasonDefaulted   = "defaulted"
	ReasonNegative    = "negative"
	ReasonInvalidEnum = "invalid_enum"
	ReasonRenumbered  = "renumbered"
	ReasonGenerated   = "generated"
	ReasonUnparsable  = "unparsable"
	ReasonLenient     = "lenient_parse"
	ReasonScalarEntry = "scalar_as_entries"
	ReasonRecomputed  = "recomputed"
)

// Repair records one substituted value.
type Repair struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

// Key groups repairs by field and reason.
func (r Repair) Key() string {
	return r.Field + "/" + r.Reason
}

// AsInt parses v as an integer. Numbers are truncated toward zero, strings are
// trimmed and parsed as base-10 integers. Booleans, lists and maps never parse.
func AsInt(v models.Value) (int, bool) {
	if v.Kind() != models.KindScalar {
		return 0, false
	}

	switch v.ScalarType() {
	case models.ScalarNumber:
		if n, err := strconv.Atoi(v.Text()); err == nil {
			return n, true
		}

		f, err := strconv.ParseFloat(v.Text(), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}

		return int(f), true
	case models.ScalarString:
		n, err := strconv.Atoi(strings.TrimSpace(v.Text()))
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

// AsString renders v as text; absent values become "".
func AsString(v models.Value) string {
	return v.Display()
}

// AsEntries turns a list-or-map field into an ordered sequence of entries.
// Map values are taken in document order. A lone truthy scalar becomes a single
// entry and scalar is reported true.
func AsEntries(v models.Value) (entries []models.Value, scalar bool) {
	if !v.Truthy() {
		return nil, false
	}

	switch v.Kind() {
	case models.KindList:
		return v.Items(), false
	case models.KindMap:
		return v.Doc().Values(), false
	default:
		return []models.Value{v}, true
	}
}

// AsTags coerces a tags field into an ordered list. A scalar becomes a
// one-element list; the tag separator is removed from every tag.
func AsTags(v models.Value) []string {
	if !v.Truthy() {
		return []string{}
	}

	if v.Kind() != models.KindList {
		return []string{models.CleanTag(v.Display())}
	}

	tags := make([]string, 0, len(v.Items()))
	for _, item := range v.Items() {
		tags = append(tags, models.CleanTag(item.Display()))
	}

	return tags
}
