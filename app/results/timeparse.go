package results

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrUnparseableTimestamp is returned when a date-like text matches none of
// the accepted formats. Rows carrying such a timestamp are dropped, never
// guessed at.
var ErrUnparseableTimestamp = errors.New("timestamp matches no accepted format")

// timestampFormats is the ordered list of accepted shapes. ZwiftPower renders
// times without an offset, so every match is interpreted as UTC; that is an
// assumed convention, not something derived from the page. Order matters for
// strings that could match more than one pattern (date-only vs date+time).
//
// The non-padded verbs ("1", "2") accept both one- and two-digit fields, which
// keeps this list in sync with the date-shape regexes below: any text the
// extractor considers date-like must parse here.
var timestampFormats = []string{
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2 January 2006 15:04",
	"2 January 2006",
}

var (
	numericDateRe = regexp.MustCompile(`^(\d{4}-\d{1,2}-\d{1,2}|\d{4}/\d{1,2}/\d{1,2}|\d{1,2}/\d{1,2}/\d{4})( \d{1,2}:\d{2}(:\d{2})?)?$`)
	textualDateRe = regexp.MustCompile(`^\d{1,2} (January|February|March|April|May|June|July|August|September|October|November|December) \d{4}( \d{1,2}:\d{2})?$`)
)

// LooksLikeDate reports whether a cell text has one of the date shapes the
// extractor treats as a timestamp candidate. Kept next to timestampFormats so
// the two stay in sync: everything accepted here must be parseable below.
func LooksLikeDate(text string) bool {
	text = strings.TrimSpace(text)
	return numericDateRe.MatchString(text) || textualDateRe.MatchString(text)
}

// ParseTimestamp parses free-form date/time text against the accepted format
// list, first match wins, interpreted as UTC.
func ParseTimestamp(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, format := range timestampFormats {
		if t, err := time.ParseInLocation(format, text, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparseableTimestamp
}
