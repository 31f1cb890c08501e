package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// notesRatePatterns find a dollar amount in free text, most specific first.
var notesRatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)\s*dollars?\b`),
	regexp.MustCompile(`(?i)\b(?:rate|amount|total|pay)\s*[:=]?\s*\$?\s*(\d[\d,]*(?:\.\d+)?)`),
}

// RateFromNotes extracts a rate amount such as "$1,500", "1500 dollars" or
// "rate: 1500" from free text. It returns "" when no amount is found.
func RateFromNotes(notes string) string {
	for _, re := range notesRatePatterns {
		m := re.FindStringSubmatch(notes)
		if m == nil {
			continue
		}
		amount := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(amount, 64); err == nil && v > 0 {
			return amount
		}
	}
	return ""
}
