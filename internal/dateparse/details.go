package dateparse

import (
	"regexp"
	"strings"
	"time"
)

var arabicLeaveTypes = []struct {
	phrase string
	kind   string
}{
	{"إجازة سنوية", "annual"}, {"اجازة سنوية", "annual"}, {"سنوية", "annual"},
	{"إجازة مرضية", "sick"}, {"اجازة مرضية", "sick"}, {"مرضية", "sick"},
	{"إجازة بدون راتب", "unpaid"}, {"اجازة بدون راتب", "unpaid"}, {"بدون راتب", "unpaid"},
	{"إجازة شخصية", "personal"}, {"اجازة شخصية", "personal"}, {"شخصية", "personal"},
	{"إجازة عارضة", "casual"}, {"اجازة عارضة", "casual"}, {"عارضة", "casual"},
}

var singleRelativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(tomorrow|today|yesterday)\b`),
	regexp.MustCompile(`\b(next\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`),
	regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
}

// Range connectors: to, till, until, through, hyphen, en dash.
const rangeSep = `\s*(?:to|till|until|through|-|–)\s*`

var dateRangePatterns = []*regexp.Regexp{
	// 20/7 to 21/7
	regexp.MustCompile(`(?:from\s+)?(\d{1,2}[/-]\d{1,2})` + rangeSep + `(\d{1,2}[/-]\d{1,2})`),
	// 20th of july till the 21st of july
	regexp.MustCompile(`(?:from\s+)?(\d{1,2}(?:st|nd|rd|th)?\s+of\s+\w+)` + rangeSep + `(?:the\s+)?(\d{1,2}(?:st|nd|rd|th)?\s+of\s+\w+)`),
	// august 2nd till august 9th
	regexp.MustCompile(`(?:from\s+)?(\w+\s+\d{1,2}(?:st|nd|rd|th)?)` + rangeSep + `(\w+\s+\d{1,2}(?:st|nd|rd|th)?)`),
	// august 2nd to 9th, 20/7 to august 9th
	regexp.MustCompile(`(?:from\s+)?(\w+\s+\d{1,2}(?:st|nd|rd|th)?)` + rangeSep + `(\d{1,2}(?:st|nd|rd|th)?)`),
	regexp.MustCompile(`(?:from\s+)?(\d{1,2}[/-]\d{1,2})` + rangeSep + `(\w+\s+\d{1,2}(?:st|nd|rd|th)?)`),
	// 2nd to 9th august (shared month)
	regexp.MustCompile(`(?:from\s+)?(\d{1,2}(?:st|nd|rd|th)?)` + rangeSep + `(\d{1,2}(?:st|nd|rd|th)?)\s+(\w+)`),
}

var singleDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)`),
	regexp.MustCompile(`(\w+\s+\d{1,2}(?:st|nd|rd|th)?)`),
	regexp.MustCompile(`(\d{1,2}(?:st|nd|rd|th)?\s+\w+)`),
	regexp.MustCompile(`(\d{1,2}(?:st|nd|rd|th)?\s+of\s+\w+)`),
}

// Extract pulls a leave type and date range out of a free-form time off
// message. Missing fields stay empty and the caller asks for them.
func Extract(query string, now time.Time) Details {
	var details Details
	lower := strings.ToLower(query)

	for _, lt := range arabicLeaveTypes {
		if strings.Contains(query, lt.phrase) {
			details.LeaveType = lt.kind
			break
		}
	}
	if details.LeaveType == "" {
		switch {
		case strings.Contains(lower, "sick"):
			details.LeaveType = "sick"
		case strings.Contains(lower, "vacation"), strings.Contains(lower, "holiday"), strings.Contains(lower, "annual"):
			details.LeaveType = "annual"
		case strings.Contains(lower, "personal"):
			details.LeaveType = "personal"
		case strings.Contains(lower, "unpaid"):
			details.LeaveType = "unpaid"
		}
	}

	if hasArabic(query) {
		if d, ok := Arabic(query, now); ok {
			details.DateFrom = d
			details.DateTo = d
			return details
		}
		lower = strings.ToLower(ConvertArabicNumerals(query))
	}

	for _, p := range singleRelativePatterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if d, ok := Single(m[1], now); ok {
			details.DateFrom = d
			details.DateTo = d
			return details
		}
	}

	for _, p := range dateRangePatterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		fromStr := strings.TrimSpace(m[1])
		toStr := strings.TrimSpace(m[2])
		if len(m) == 4 && m[3] != "" {
			month := strings.TrimSpace(m[3])
			fromStr += " " + month
			toStr += " " + month
		}
		from, okFrom := Single(fromStr, now)
		to, okTo := Single(toStr, now)
		if okFrom && okTo {
			details.DateFrom = from
			details.DateTo = to
			return details
		}
	}

	for _, p := range singleDatePatterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if d, ok := Single(strings.TrimSpace(m[1]), now); ok {
			details.DateFrom = d
			details.DateTo = d
			return details
		}
	}

	return details
}

func hasArabic(s string) bool {
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}
