package listing

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01",
	"2006",
}

// ParseDate parses a fixture date as a calendar date. Unparseable dates
// return the zero time, so they sort as the oldest.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
