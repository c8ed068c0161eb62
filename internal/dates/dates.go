// Package dates parses the date and datetime values written in annotations.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical form of a date value.
const DateLayout = "2006-01-02"

// Precision records how much of a date was written.
type Precision int

const (
	PrecisionYear Precision = iota
	PrecisionMonth
	PrecisionDay
	PrecisionTime
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	case PrecisionTime:
		return "time"
	}
	return "unknown"
}

// Value is a parsed date with the precision it was written at.
type Value struct {
	Time      time.Time
	Precision Precision
}

// Canonical renders v at its own precision.
func (v Value) Canonical() string {
	switch v.Precision {
	case PrecisionYear:
		return strconv.Itoa(v.Time.Year())
	case PrecisionMonth:
		return v.Time.Format("2006-01")
	case PrecisionTime:
		return v.Time.Format(time.RFC3339)
	}
	return v.Time.Format(DateLayout)
}

var (
	dateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearRegex  = regexp.MustCompile(`^-?\d{1,4}$`)
	monthRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// Written forms accepted for day precision besides YYYY-MM-DD.
var dayLayouts = []string{
	"2 January 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

var monthLayouts = []string{
	"January 2006",
	"Jan 2006",
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValidDate(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse(DateLayout, s)
}

// ParseDatetime parses RFC3339, YYYY-MM-DDTHH:MM[:SS] or the same with a space.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid datetime: empty")
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", s)
}

// Parse reads a date as people write it in running text: a bare year, a month,
// a day in ISO or spelled-out form, or a full datetime.
func Parse(s string) (Value, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Value{}, fmt.Errorf("invalid date: empty")
	}

	if yearRegex.MatchString(s) {
		y, _ := strconv.Atoi(s)
		return Value{Time: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), Precision: PrecisionYear}, nil
	}
	if monthRegex.MatchString(s) {
		if t, err := time.Parse("2006-01", s); err == nil {
			return Value{Time: t, Precision: PrecisionMonth}, nil
		}
	}
	if t, err := ParseDate(s); err == nil {
		return Value{Time: t, Precision: PrecisionDay}, nil
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{Time: t, Precision: PrecisionDay}, nil
		}
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{Time: t, Precision: PrecisionMonth}, nil
		}
	}
	if t, err := ParseDatetime(s); err == nil {
		return Value{Time: t, Precision: PrecisionTime}, nil
	}
	return Value{}, fmt.Errorf("invalid date: %q", s)
}
