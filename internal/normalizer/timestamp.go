package normalizer

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"recipepipe/internal/models"
)

// UnknownTimestamp marks an interaction whose timestamp could not be parsed.
const UnknownTimestamp = ""

// strictLayouts are the ISO 8601 shapes accepted by the strict parser.
// Zone-less values are read as UTC.
var strictLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseStrict parses s as an ISO 8601 timestamp.
func ParseStrict(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range strictLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseLenient parses free-form date strings.
func ParseLenient(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// ParseTimestamp tries the strict parser, then the lenient one. lenient reports
// whether the fallback was needed. Only string scalars are considered.
func ParseTimestamp(v models.Value) (t time.Time, lenient, ok bool) {
	if v.Kind() != models.KindScalar || v.ScalarType() != models.ScalarString {
		return time.Time{}, false, false
	}

	if t, ok := ParseStrict(v.Text()); ok {
		return t, false, true
	}

	if t, ok := ParseLenient(v.Text()); ok {
		return t, true, true
	}

	return time.Time{}, false, false
}

// FormatTimestamp renders t in the canonical UTC RFC 3339 form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
