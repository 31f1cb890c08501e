package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var trailingZipRe = regexp.MustCompile(`[\s,]*\b\d{5}(?:-\d{4})?$`)

// CanonicalCity title-cases a city name and collapses its whitespace.
func CanonicalCity(city string) string {
	city = strings.Trim(strings.TrimSpace(city), ",")
	city = multiSpaceRe.ReplaceAllString(strings.TrimSpace(city), " ")
	if city == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(city))
}

// CanonicalCityState converts free text such as "miami fl", "Miami,FL 33101"
// or "Miami, Florida" to "Miami, FL". It fails when no state can be found or
// nothing is left for the city.
func CanonicalCityState(raw string) (string, bool) {
	city, state, ok := SplitCityState(raw)
	if !ok {
		return "", false
	}
	return city + ", " + state, true
}

// SplitCityState is CanonicalCityState returning the parts separately.
func SplitCityState(raw string) (city, state string, ok bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "**", ""))
	s = trailingZipRe.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " ,.")
	if s == "" {
		return "", "", false
	}

	if i := strings.LastIndex(s, ","); i >= 0 {
		st, found := CanonicalState(s[i+1:])
		if !found {
			return "", "", false
		}
		city = CanonicalCity(s[:i])
		if !hasLetter(city) {
			return "", "", false
		}
		return city, st, true
	}

	// No comma: the state is the trailing one to three words.
	words := strings.Fields(s)
	for n := 3; n >= 1; n-- {
		if len(words) <= n {
			continue
		}
		st, found := CanonicalState(strings.Join(words[len(words)-n:], " "))
		if !found {
			continue
		}
		city = CanonicalCity(strings.Join(words[:len(words)-n], " "))
		if hasLetter(city) {
			return city, st, true
		}
	}
	return "", "", false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
