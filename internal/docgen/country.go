package docgen

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// countries is the official name list used for embassy letters.
var countries = []string{
	"Afghanistan", "Albania", "Algeria", "Andorra", "Angola", "Antigua and Barbuda",
	"Argentina", "Armenia", "Australia", "Austria", "Azerbaijan", "Bahamas", "Bahrain",
	"Bangladesh", "Barbados", "Belarus", "Belgium", "Belize", "Benin", "Bhutan", "Bolivia",
	"Bosnia and Herzegovina", "Botswana", "Brazil", "Brunei", "Bulgaria", "Burkina Faso",
	"Burundi", "Cabo Verde", "Cambodia", "Cameroon", "Canada", "Central African Republic",
	"Chad", "Chile", "China", "Colombia", "Comoros", "Congo", "Costa Rica",
	"Croatia", "Cuba", "Cyprus", "Czech Republic", "Democratic Republic of the Congo",
	"Denmark", "Djibouti", "Dominica", "Dominican Republic", "Ecuador", "Egypt", "El Salvador",
	"Equatorial Guinea", "Eritrea", "Estonia", "Ethiopia", "Fiji", "Finland", "France",
	"Gabon", "Gambia", "Georgia", "Germany", "Ghana", "Greece", "Grenada", "Guatemala",
	"Guinea", "Guinea-Bissau", "Guyana", "Haiti", "Honduras", "Hungary", "Iceland", "India",
	"Indonesia", "Iran", "Iraq", "Ireland", "Italy", "Jamaica", "Japan", "Jordan",
	"Kazakhstan", "Kenya", "Kiribati", "Kuwait", "Kyrgyzstan", "Laos", "Latvia", "Lebanon",
	"Lesotho", "Liberia", "Libya", "Liechtenstein", "Lithuania", "Luxembourg", "Madagascar",
	"Malawi", "Malaysia", "Maldives", "Mali", "Malta", "Marshall Islands", "Mauritania",
	"Mauritius", "Mexico", "Micronesia", "Moldova", "Monaco", "Mongolia", "Montenegro",
	"Morocco", "Mozambique", "Myanmar", "Namibia", "Nauru", "Nepal", "Netherlands",
	"New Zealand", "Nicaragua", "Niger", "Nigeria", "North Korea", "North Macedonia",
	"Norway", "Oman", "Pakistan", "Palau", "Palestine", "Panama", "Papua New Guinea",
	"Paraguay", "Peru", "Philippines", "Poland", "Portugal", "Qatar", "Romania", "Russia",
	"Rwanda", "Saint Kitts and Nevis", "Saint Lucia", "Saint Vincent and the Grenadines",
	"Samoa", "San Marino", "Sao Tome and Principe", "Saudi Arabia", "Senegal", "Serbia",
	"Seychelles", "Sierra Leone", "Singapore", "Slovakia", "Slovenia", "Solomon Islands",
	"Somalia", "South Africa", "South Korea", "South Sudan", "Spain", "Sri Lanka", "Sudan",
	"Suriname", "Sweden", "Switzerland", "Syria", "Tajikistan", "Tanzania", "Thailand",
	"Timor-Leste", "Togo", "Tonga", "Trinidad and Tobago", "Tunisia", "Turkey",
	"Turkmenistan", "Tuvalu", "Uganda", "Ukraine", "United Arab Emirates", "United Kingdom",
	"United States", "Uruguay", "Uzbekistan", "Vanuatu", "Venezuela", "Vietnam", "Yemen",
	"Zambia", "Zimbabwe",
}

// countryAliases maps abbreviations, nicknames and alternate spellings to
// official names. Geographic regions deliberately map to nothing: "south
// america" must not become the United States.
var countryAliases = []struct {
	pattern  *regexp.Regexp
	official string
}{
	{regexp.MustCompile(`(?i)\b(u\.\s?s\.\s?a\.?|u\.\s?s\.?|usa|us|united\s+states(?:\s+of\s+america)?|the\s+states)\b`), "United States"},
	{regexp.MustCompile(`(?i)\b(uk|u\.\s?k\.?|united\s+kingdom|great\s+britain|britain|england|scotland|wales|northern\s+ireland)\b`), "United Kingdom"},
	{regexp.MustCompile(`(?i)\b(uae|u\.\s?a\.\s?e\.?|united\s+arab\s+emirates)\b`), "United Arab Emirates"},
	{regexp.MustCompile(`(?i)\b(ksa|kingdom\s+of\s+saudi\s+arabia|saudi\s+arabia|saudi)\b`), "Saudi Arabia"},
	{regexp.MustCompile(`(?i)\b(south\s+korea|republic\s+of\s+korea|rok)\b`), "South Korea"},
	{regexp.MustCompile(`(?i)\b(north\s+korea|dprk|democratic\s+people'?s?\s+republic\s+of\s+korea)\b`), "North Korea"},
	{regexp.MustCompile(`(?i)\b(russian\s+federation|russia)\b`), "Russia"},
	{regexp.MustCompile(`(?i)\b(islamic\s+republic\s+of\s+iran|iran)\b`), "Iran"},
	{regexp.MustCompile(`(?i)\b(czechia|czech\s+republic)\b`), "Czech Republic"},
	{regexp.MustCompile(`(?i)\b(turkiye|turkey)\b`), "Turkey"},
}

// bareAmerica matches "america" not preceded by "south " or "north ".
var bareAmerica = regexp.MustCompile(`(?i)\bamerica\b`)
var regionAmerica = regexp.MustCompile(`(?i)\b(south|north)\s+america\b`)

// NormalizeCountry resolves a country mention in free text to an official
// name. Alias patterns run first, then exact names with word boundaries so
// "Oman" is not found inside "roman".
func NormalizeCountry(query string) string {
	text := strings.TrimSpace(query)
	if text == "" {
		return ""
	}

	for _, alias := range countryAliases {
		if alias.pattern.MatchString(text) {
			return alias.official
		}
	}

	// Bare "america" counts, but "south america" and "north america" are
	// regions, not a country.
	if bareAmerica.MatchString(text) && !regionAmerica.MatchString(text) {
		return "United States"
	}

	lower := strings.ToLower(text)
	for _, country := range longestFirst() {
		if matchWord(lower, strings.ToLower(country)) {
			return country
		}
	}
	return ""
}

// longestFirst orders the country list so multi-word names win over their
// substrings ("South Sudan" before "Sudan").
func longestFirst() []string {
	ordered := make([]string, len(countries))
	copy(ordered, countries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})
	return ordered
}

func matchWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// CountryNames returns the official country list.
func CountryNames() []string {
	return countries
}

// EmbassyDetails are the travel facts an embassy letter carries.
type EmbassyDetails struct {
	Country   string
	StartDate string // ISO 2006-01-02
	EndDate   string
}

var embassyDatePattern = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})(?:[/\-](\d{2,4}))?`)

// ParseEmbassyDetails picks a destination country and travel dates out of a
// free-text request. When two dates appear, the earlier one is the start.
func ParseEmbassyDetails(query string, now time.Time) EmbassyDetails {
	details := EmbassyDetails{Country: NormalizeCountry(query)}

	var parsed []time.Time
	for _, m := range embassyDatePattern.FindAllStringSubmatch(query, -1) {
		day := atoiSafe(m[1])
		month := atoiSafe(m[2])
		year := now.Year()
		if m[3] != "" {
			year = atoiSafe(m[3])
			if len(m[3]) == 2 {
				year += 2000
			}
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || int(t.Month()) != month {
			continue
		}
		parsed = append(parsed, t)
	}
	if len(parsed) > 0 {
		min, max := parsed[0], parsed[0]
		for _, t := range parsed[1:] {
			if t.Before(min) {
				min = t
			}
			if t.After(max) {
				max = t
			}
		}
		details.StartDate = min.Format("2006-01-02")
		details.EndDate = max.Format("2006-01-02")
	}
	return details
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
