package dateparse

import (
	"regexp"
	"strings"
	"time"
)

// Overtime periods use a strict day-first datetime format.
var periodPattern = regexp.MustCompile(`(?i)from\s+(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}(?::\d{2})?)\s+to\s+(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}(?::\d{2})?)`)

var datetimeLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

// DateTime parses DD/MM/YYYY HH:MM[:SS] into "YYYY-MM-DD HH:MM:SS".
func DateTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt.Format("2006-01-02 15:04:05"), true
		}
	}
	return "", false
}

// Period extracts a "from <datetime> to <datetime>" span. Both values are
// empty when the phrase does not carry the expected format.
func Period(query string) (start, end string) {
	m := periodPattern.FindStringSubmatch(query)
	if m == nil {
		return "", ""
	}
	s, okS := DateTime(m[1])
	e, okE := DateTime(m[2])
	if !okS || !okE {
		return "", ""
	}
	return s, e
}
