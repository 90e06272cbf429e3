// Package dateparse turns natural-language date phrases, English or Arabic,
// into ISO dates. Numeric dates are always read day-first. Callers pass the
// reference time explicitly so behavior is reproducible.
package dateparse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Details holds whatever a free-form time off message yielded. Empty fields
// mean the phrase did not mention them.
type Details struct {
	LeaveType string
	DateFrom  string
	DateTo    string
}

const isoDate = "2006-01-02"

var months = map[string]time.Month{
	"january": 1, "jan": 1, "janu": 1,
	"february": 2, "feb": 2, "febru": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8, "agust": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var (
	ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
	dayFirstDate  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?$`)
	nextWeekday   = regexp.MustCompile(`next\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	bareWeekday   = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

type monthPattern struct {
	month      time.Month
	monthFirst *regexp.Regexp
	dayFirst   *regexp.Regexp
}

// monthPatterns holds one compiled pattern pair per month spelling, in
// deterministic name order.
var monthPatterns = compileMonthPatterns()

func compileMonthPatterns() []monthPattern {
	names := make([]string, 0, len(months))
	for name := range months {
		names = append(names, name)
	}
	sort.Strings(names)

	patterns := make([]monthPattern, 0, len(names))
	for _, name := range names {
		patterns = append(patterns, monthPattern{
			month:      months[name],
			monthFirst: regexp.MustCompile(fmt.Sprintf(`%s\s+(\d{1,2})(?:\s*,?\s*(\d{4}))?`, name)),
			dayFirst:   regexp.MustCompile(fmt.Sprintf(`(\d{1,2})\s+%s(?:\s*,?\s*(\d{4}))?`, name)),
		})
	}
	return patterns
}

// Single parses one date phrase and returns it as YYYY-MM-DD. The second
// return is false when nothing parseable was found; callers re-prompt
// instead of treating that as an error.
func Single(s string, now time.Time) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, " of ", " ")

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if d, ok := relativeDate(s, today); ok {
		return d.Format(isoDate), true
	}

	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				if year < 50 {
					year += 2000
				} else {
					year += 1900
				}
			}
		}
		if d, ok := buildDate(year, time.Month(month), day); ok {
			// A past date without a different explicit year means next year.
			if d.Before(today) && year == today.Year() {
				if next, okNext := buildDate(year+1, time.Month(month), day); okNext {
					return next.Format(isoDate), true
				}
			}
			return d.Format(isoDate), true
		}
	}

	if d, ok := writtenMonthDate(s, today); ok {
		return d.Format(isoDate), true
	}

	// Standard layouts as a last resort.
	for _, layout := range []string{"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006", "02-01-06", "02/01/06"} {
		if d, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return d.Format(isoDate), true
		}
	}

	return "", false
}

func relativeDate(s string, today time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(s, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(s, "today"):
		return today, true
	case strings.Contains(s, "yesterday"):
		return today.AddDate(0, 0, -1), true
	}

	if m := nextWeekday.FindStringSubmatch(s); m != nil {
		target := weekdays[m[1]]
		days := (int(target) - int(today.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return today.AddDate(0, 0, days), true
	}

	if m := bareWeekday.FindStringSubmatch(s); m != nil {
		target := weekdays[m[1]]
		days := (int(target) - int(today.Weekday()) + 7) % 7
		return today.AddDate(0, 0, days), true
	}

	return time.Time{}, false
}

func writtenMonthDate(s string, today time.Time) (time.Time, bool) {
	for _, mp := range monthPatterns {
		for _, p := range []*regexp.Regexp{mp.monthFirst, mp.dayFirst} {
			m := p.FindStringSubmatch(s)
			if m == nil {
				continue
			}
			day, _ := strconv.Atoi(m[1])
			year := today.Year()
			explicitYear := m[2] != ""
			if explicitYear {
				year, _ = strconv.Atoi(m[2])
			}
			d, ok := buildDate(year, mp.month, day)
			if !ok {
				continue
			}
			if d.Before(today) && !explicitYear {
				if next, okNext := buildDate(year+1, mp.month, day); okNext {
					return next, true
				}
			}
			return d, true
		}
	}
	return time.Time{}, false
}

// buildDate rejects normalized overflow such as day 32.
func buildDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}
