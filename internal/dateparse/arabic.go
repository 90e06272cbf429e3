package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Arabic month names, standard and Levantine.
var arabicMonths = map[string]time.Month{
	"يناير": 1, "كانون الثاني": 1,
	"فبراير": 2, "شباط": 2,
	"مارس": 3, "آذار": 3,
	"أبريل": 4, "ابريل": 4, "نيسان": 4,
	"مايو": 5, "أيار": 5,
	"يونيو": 6, "حزيران": 6,
	"يوليو": 7, "تموز": 7,
	"أغسطس": 8, "اغسطس": 8, "آب": 8,
	"سبتمبر": 9, "أيلول": 9,
	"أكتوبر": 10, "اكتوبر": 10, "تشرين الأول": 10,
	"نوفمبر": 11, "تشرين الثاني": 11,
	"ديسمبر": 12, "كانون الأول": 12,
}

var arabicNumerals = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

var arabicDayDigits = regexp.MustCompile(`(\d+)`)

// ConvertArabicNumerals rewrites Arabic-Indic digits as ASCII digits.
func ConvertArabicNumerals(s string) string {
	return arabicNumerals.Replace(s)
}

// Arabic parses an Arabic date expression. It handles the relative words
// (today, tomorrow, the day after) and "day + month name" phrases, rolling
// past dates into the next year.
func Arabic(s string, now time.Time) (string, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(s, "اليوم"):
		return today.Format(isoDate), true
	case strings.Contains(s, "بعد غد"):
		return today.AddDate(0, 0, 2).Format(isoDate), true
	case strings.Contains(s, "غدا"), strings.Contains(s, "غداً"),
		strings.Contains(s, "بكرة"), strings.Contains(s, "بكره"):
		return today.AddDate(0, 0, 1).Format(isoDate), true
	}

	converted := ConvertArabicNumerals(s)
	for name, month := range arabicMonths {
		if !strings.Contains(converted, name) {
			continue
		}
		m := arabicDayDigits.FindStringSubmatch(converted)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		d, ok := buildDate(today.Year(), month, day)
		if !ok {
			continue
		}
		if d.Before(today) {
			if next, okNext := buildDate(today.Year()+1, month, day); okNext {
				return next.Format(isoDate), true
			}
		}
		return d.Format(isoDate), true
	}

	return "", false
}
