// Package dateutils provides common date and time operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutDisplay  = "02/01/2006"
	DateTimeLayout     = "02/01/2006 15:04:05"
	DateLayoutFolder   = "02-01-2006"
	DateTimeLayoutISO  = "2006-01-02T15:04:05"
	DateTimeLayoutZone = "2006-01-02T15:04:05Z07:00"
)

// EmissionFormats are tried in order when reading an invoice emission date.
var EmissionFormats = []string{
	DateLayoutDisplay,
	DateLayoutISO,
	DateLayoutFolder,
}

// AuthorizationFormats are tried in order when reading an authorization timestamp.
var AuthorizationFormats = []string{
	time.RFC3339Nano,
	DateTimeLayoutZone,
	DateTimeLayoutISO,
	DateTimeLayout,
	DateLayoutDisplay,
}

var spaces = regexp.MustCompile(`\s+`)

// ParseWithFormats tries each layout in order and returns the first match.
func ParseWithFormats(value string, layouts []string) (time.Time, error) {
	value = CleanDateString(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}

// ParseEmissionDate reads an emission date, returning the zero time when the
// value cannot be understood.
func ParseEmissionDate(value string) time.Time {
	t, err := ParseWithFormats(value, EmissionFormats)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseAuthorizationTime reads an authorization timestamp, returning the zero
// time when the value cannot be understood.
func ParseAuthorizationTime(value string) time.Time {
	t, err := ParseWithFormats(value, AuthorizationFormats)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseQueryDate reads a YYYY-MM-DD date given on the command line.
func ParseQueryDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayoutISO, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}

// FormatDisplayDate formats a date as dd/MM/yyyy, or "" for the zero time.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayoutDisplay)
}

// FormatDisplayDateTime formats a timestamp as dd/MM/yyyy HH:mm:ss, or "" for the zero time.
func FormatDisplayDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutISO)
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
