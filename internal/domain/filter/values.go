package filter

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Value describes how a filter value is coerced and documented.
type Value[T any] struct {
	// Type and Format are the OpenAPI schema type and format.
	Type   string
	Format string
	// ErrType is reported on coercion failures.
	ErrType string
	Parse   func(raw string) (T, error)
}

// Coercion errors. Their text is what clients see in the msg field.
var (
	ErrInvalidDateTime = errors.New("invalid datetime format")
	ErrInvalidInteger  = errors.New("value is not a valid integer")
)

// Accepted date-time layouts, most specific first. Values without a zone are UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateTimeValue accepts ISO-8601 timestamps and integer unix seconds.
var DateTimeValue = Value[time.Time]{
	Type:    "string",
	Format:  "date-time",
	ErrType: "value_error.datetime",
	Parse:   parseDateTime,
}

// IntValue accepts base-10 integers.
var IntValue = Value[int]{
	Type:    "integer",
	ErrType: "type_error.integer",
	Parse:   parseInt,
}

// StringValue keeps the raw value.
var StringValue = Value[string]{
	Type:    "string",
	ErrType: "type_error.str",
	Parse:   func(raw string) (string, error) { return raw, nil },
}

func parseDateTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrInvalidDateTime
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}

func parseInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidInteger
	}
	return n, nil
}
