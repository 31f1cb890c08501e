package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var equipmentAliases = map[string]string{
	"van":          "dry van",
	"dv":           "dry van",
	"v":            "dry van",
	"53 van":       "dry van",
	"53' van":      "dry van",
	"reefer":       "refrigerated",
	"r":            "refrigerated",
	"rf":           "refrigerated",
	"refer":        "refrigerated",
	"flat":         "flatbed",
	"f":            "flatbed",
	"fb":           "flatbed",
	"flat bed":     "flatbed",
	"sd":           "step deck",
	"stepdeck":     "step deck",
	"drop deck":    "step deck",
	"pwr only":     "power only",
	"po":           "power only",
	"hot shot":     "hotshot",
	"ltl":          "ltl",
	"box":          "box truck",
	"straight":     "box truck",
	"conestoga":    "conestoga",
	"lowboy":       "lowboy",
	"tanker":       "tanker",
	"container":    "container",
	"intermodal":   "container",
	"dry":          "dry van",
	"refrigerated": "refrigerated",
}

// NormalizeEquipment maps an equipment description to a canonical
// title-cased name ("reefer" → "Refrigerated"). Unknown types are title-cased
// as given.
func NormalizeEquipment(equipment string) string {
	e := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(equipment, "**", "")))
	e = multiSpaceRe.ReplaceAllString(e, " ")
	if e == "" {
		return ""
	}
	if alias, ok := equipmentAliases[e]; ok {
		e = alias
	}
	if e == "ltl" {
		return "LTL"
	}
	return cases.Title(language.English).String(e)
}
