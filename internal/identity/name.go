package identity

import (
	"regexp"
	"strings"
)

// legalSuffixes lists legal entity suffixes stripped from broker names.
var legalSuffixes = []string{
	" LLC", " L.L.C.", " L.L.C",
	" INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION",
	" LTD", " LTD.", " LIMITED",
	" LP", " L.P.", " L.P",
	" LLP", " L.L.P.", " L.L.P",
	" CO", " CO.",
	" DBA", " D/B/A",
}

var (
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	nonDigitRe   = regexp.MustCompile(`\D`)
)

var namePunct = strings.NewReplacer(
	",", "",
	".", "",
	"'", "",
	"\"", "",
	"&", " and ",
	"-", " ",
	"/", " ",
	"(", "",
	")", "",
	"*", "",
)

// NormalizeCompanyName lower-cases a broker name and strips its legal suffix
// and punctuation. "Acme Logistics, LLC" becomes "acme logistics".
func NormalizeCompanyName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToUpper(multiSpaceRe.ReplaceAllString(name, " "))

	// A trailing comma before the suffix ("Acme, Inc.") is common.
	name = strings.TrimSuffix(name, ",")
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	name = strings.ToLower(namePunct.Replace(name))
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// NormalizeMC keeps only the digits of an MC number and drops leading zeros.
// "MC-012345" and "12345" normalize to "12345".
func NormalizeMC(mc string) string {
	return strings.TrimLeft(nonDigitRe.ReplaceAllString(mc, ""), "0")
}

// BrokerKey returns the broker identity: the normalized MC number when
// present, else the normalized company name. Empty when neither is usable.
func BrokerKey(mc, companyName string) string {
	if n := NormalizeMC(mc); n != "" {
		return "mc:" + n
	}
	if n := NormalizeCompanyName(companyName); n != "" {
		return "name:" + n
	}
	return ""
}
