package normalize

import (
	"regexp"
	"strings"

	"github.com/sells-group/loadmatch/internal/identity"
	"github.com/sells-group/loadmatch/internal/model"
)

var (
	zipRe        = regexp.MustCompile(`[\s,]*\b(\d{5}(?:-\d{4})?)\s*$`)
	addrSpacesRe = regexp.MustCompile(`\s+`)
)

// ParseAddress splits "123 Main St, Miami, FL 33101" into components. City
// and state are canonicalized; text that cannot be placed stays in Street.
// ParseAddress(a.String()) == a for any address it returns.
func ParseAddress(raw string) model.Address {
	s := strings.TrimSpace(addrSpacesRe.ReplaceAllString(raw, " "))
	if s == "" {
		return model.Address{}
	}

	var a model.Address
	if m := zipRe.FindStringSubmatchIndex(s); m != nil {
		a.Zip = s[m[2]:m[3]]
		s = s[:m[0]]
	}

	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return a
	}

	last := parts[len(parts)-1]
	if st, ok := identity.CanonicalState(last); ok {
		a.State = st
		parts = parts[:len(parts)-1]
		if len(parts) > 0 {
			a.City = identity.CanonicalCity(parts[len(parts)-1])
			parts = parts[:len(parts)-1]
		}
	} else if city, st, ok := identity.SplitCityState(last); ok {
		a.City, a.State = city, st
		parts = parts[:len(parts)-1]
	}

	a.Street = strings.Join(parts, ", ")
	return a
}
