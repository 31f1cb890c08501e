package enrich

import (
	"math"
	"time"
)

// effectiveConfidence decays a confidence by the age of the data it was
// derived from: max(floor, raw * 2^(-ageDays/halfLifeDays)). Data without a
// date, or dated in the future, keeps its raw confidence.
func effectiveConfidence(raw float64, asOf, now time.Time, halfLifeDays int, floor float64) float64 {
	if raw <= 0 {
		return 0
	}
	if asOf.IsZero() {
		return raw
	}

	ageDays := now.Sub(asOf).Hours() / 24
	if ageDays <= 0 {
		return raw
	}

	halfLife := float64(halfLifeDays)
	if halfLife <= 0 {
		halfLife = 180
	}

	decayed := raw * math.Pow(2, -ageDays/halfLife)
	if decayed < floor {
		return floor
	}
	return decayed
}
