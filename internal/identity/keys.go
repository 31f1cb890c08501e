package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LaneArrow separates origin and destination in a lane key.
const LaneArrow = " → "

// loadNamespace seeds derived load identities so they never collide with
// UUIDs generated elsewhere.
var loadNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("loadmatch:load"))

// LaneKey returns the identity of the ordered pair (origin, destination).
// Both endpoints are expected in canonical "City, ST" form.
func LaneKey(origin, destination string) string {
	if origin == "" || destination == "" {
		return ""
	}
	return origin + LaneArrow + destination
}

// ReverseLaneKey returns the key of the lane travelling the other way.
func ReverseLaneKey(origin, destination string) string {
	return LaneKey(destination, origin)
}

// NormalizeLoadID trims and upper-cases a carrier-provided load number.
func NormalizeLoadID(id string) string {
	id = strings.TrimSpace(strings.ReplaceAll(id, "**", ""))
	id = strings.TrimLeft(id, "#")
	id = multiSpaceRe.ReplaceAllString(strings.TrimSpace(id), " ")
	return strings.ToUpper(id)
}

// LoadKey derives a stable load identity from its broker, lane and date when
// the carrier gave no load number. The result is already in NormalizeLoadID
// form.
func LoadKey(brokerKey, laneKey string, date time.Time) string {
	if brokerKey == "" || laneKey == "" {
		return ""
	}
	var day string
	if !date.IsZero() {
		day = date.UTC().Format(time.DateOnly)
	}
	name := brokerKey + "|" + laneKey + "|" + day
	return strings.ToUpper(uuid.NewSHA1(loadNamespace, []byte(name)).String())
}

var tripSeparators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)\s+to\s+(.+)$`),
	regexp.MustCompile(`^(.+?)\s*(?:→|->|=>)\s*(.+)$`),
	regexp.MustCompile(`^(.+?)\s+[-–]\s+(.+)$`),
}

// SplitTrip splits "Miami, FL to Tampa, FL" style trip text into origin and
// destination. Accepted separators are "to", "→", "->", "=>" and a spaced dash.
func SplitTrip(trip string) (origin, destination string, ok bool) {
	trip = strings.TrimSpace(strings.ReplaceAll(trip, "**", ""))
	for _, re := range tripSeparators {
		if m := re.FindStringSubmatch(trip); m != nil {
			o, d := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			if o != "" && d != "" {
				return o, d, true
			}
		}
	}
	return "", "", false
}
