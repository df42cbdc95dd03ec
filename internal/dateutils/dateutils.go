// Package dateutils provides the date parsing and statement-period logic
// shared by the statement parsers.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts encountered in bank statements
const (
	LayoutSlashDMY      = "02/01/2006" // tabular statements and credit ledgers
	LayoutDashDMY       = "02-01-2006" // debit PDF table
	LayoutDashDMYShort  = "02-01-06"   // debit PDF table, two-digit year
	LayoutSlashDMYShort = "02/01/06"
	LayoutISO           = "2006-01-02"
)

// CommonFormats is the ordered list of layouts tried when parsing dates.
// Day-first layouts come first: all supported statements are day-first.
var CommonFormats = []string{
	LayoutSlashDMY,
	LayoutDashDMY,
	LayoutDashDMYShort,
	LayoutSlashDMYShort,
	LayoutISO,
	"02.01.2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// spacedSeparator matches whitespace around date separators, which PDF text
// extraction frequently inserts ("01- 03-24", "01 / 03 / 2024").
var spacedSeparator = regexp.MustCompile(`\s*([-/.])\s*`)

// leadingDate matches a day-first date at the start of a line, tolerant of
// embedded spaces around the separators.
var leadingDate = regexp.MustCompile(`^\s*(\d{2}\s*-\s*\d{2}\s*-\s*\d{2,4})\b`)

// CleanDateString collapses whitespace and removes spaces around separators
// so OCR-spaced tokens parse with the standard layouts.
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	dateStr = regexp.MustCompile(`\s+`).ReplaceAllString(dateStr, " ")
	return spacedSeparator.ReplaceAllString(dateStr, "$1")
}

// ParseDate attempts to parse a date string using the common statement
// layouts. Returns the parsed time and the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// LeadingDate extracts a day-first dashed date from the start of line. It
// returns the parsed date, the remainder of the line, and whether a date was
// found. Used by the debit PDF parser to detect the start of a transaction
// block.
func LeadingDate(line string) (time.Time, string, bool) {
	m := leadingDate.FindStringSubmatchIndex(line)
	if m == nil {
		return time.Time{}, "", false
	}
	token := line[m[2]:m[3]]
	t, _, err := ParseDate(token)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, strings.TrimSpace(line[m[1]:]), true
}

// HasLeadingDate reports whether line starts with a day-first dashed date.
func HasLeadingDate(line string) bool {
	_, _, ok := LeadingDate(line)
	return ok
}

// maxDeclaredDivergence is how far a declared statement period may diverge
// from the observed transaction dates before the declared bound is replaced
// by the transaction-derived one.
const maxDeclaredDivergence = 120 * 24 * time.Hour

// ReconcilePeriod resolves the final statement period from the declared
// bounds (zero time when absent or unparseable) and the actual transaction
// dates.
//
// With transactions present, each declared bound is kept unless it diverges
// from the corresponding observed bound by more than 120 days; invalid
// declared bounds are replaced outright. Without transactions, the declared
// period is used as-is (swapped if inverted), falling back to now.
func ReconcilePeriod(declaredFrom, declaredTo time.Time, txDates []time.Time) (time.Time, time.Time) {
	if len(txDates) == 0 {
		from, to := declaredFrom, declaredTo
		if from.IsZero() {
			from = time.Now()
		}
		if to.IsZero() {
			to = from
		}
		if to.Before(from) {
			from, to = to, from
		}
		return from, to
	}

	minDate, maxDate := txDates[0], txDates[0]
	for _, d := range txDates[1:] {
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	from := declaredFrom
	if from.IsZero() || absDuration(from.Sub(minDate)) > maxDeclaredDivergence {
		from = minDate
	}
	to := declaredTo
	if to.IsZero() || absDuration(to.Sub(maxDate)) > maxDeclaredDivergence {
		to = maxDate
	}
	if to.Before(from) {
		from, to = to, from
	}
	return from, to
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
