package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// EnrichmentSource is the closed set of places an enrichment value can come
// from. Adding a source requires a matching entry in enrichmentSourceNames or
// the package fails to compile.
type EnrichmentSource int

const (
	EnrichUnresolved EnrichmentSource = iota
	EnrichHeuristic
	EnrichInternal
	EnrichTruckstop
	EnrichDAT

	// NumEnrichmentSources must stay last.
	NumEnrichmentSources
)

var enrichmentSourceNames = [...]string{
	EnrichUnresolved: "unresolved",
	EnrichHeuristic:  "heuristic",
	EnrichInternal:   "internal",
	EnrichTruckstop:  "truckstop",
	EnrichDAT:        "dat",
}

var _ = [1]struct{}{}[int(NumEnrichmentSources)-len(enrichmentSourceNames)]

func (s EnrichmentSource) String() string {
	if s < 0 || s >= NumEnrichmentSources {
		return "unknown"
	}
	return enrichmentSourceNames[s]
}

// IsBenchmark reports whether s is market benchmark data rather than an estimate.
func (s EnrichmentSource) IsBenchmark() bool {
	return s == EnrichInternal || s == EnrichTruckstop || s == EnrichDAT
}

// ParseEnrichmentSource maps a provider name to its source.
func ParseEnrichmentSource(name string) (EnrichmentSource, error) {
	for i, n := range enrichmentSourceNames {
		if n == name {
			return EnrichmentSource(i), nil
		}
	}
	return EnrichUnresolved, eris.Errorf("model: unknown enrichment source %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s EnrichmentSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *EnrichmentSource) UnmarshalText(b []byte) error {
	v, err := ParseEnrichmentSource(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// EnrichedData holds estimated lane fields with a confidence in [0, 1].
type EnrichedData struct {
	LaneKey       string           `json:"lane_key"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	DistanceMiles *float64         `json:"distance_miles,omitempty"`
	RatePerMile   *float64         `json:"rate_per_mile,omitempty"`
	RateAmount    *float64         `json:"rate_amount,omitempty"`
	TransitHours  *float64         `json:"transit_hours,omitempty"`
	MarketLow     *float64         `json:"market_low,omitempty"`
	MarketHigh    *float64         `json:"market_high,omitempty"`
	Confidence    float64          `json:"confidence"`
	Source        EnrichmentSource `json:"source"`
	ComputedAt    time.Time        `json:"computed_at,omitzero"`
}

// Clone returns a deep copy so callers cannot mutate shared values.
func (e EnrichedData) Clone() EnrichedData {
	e.DistanceMiles = cloneFloat(e.DistanceMiles)
	e.RatePerMile = cloneFloat(e.RatePerMile)
	e.RateAmount = cloneFloat(e.RateAmount)
	e.TransitHours = cloneFloat(e.TransitHours)
	e.MarketLow = cloneFloat(e.MarketLow)
	e.MarketHigh = cloneFloat(e.MarketHigh)
	return e
}

// Benchmark is a stored market reference for a lane. Zero values are unknown.
type Benchmark struct {
	LaneKey       string           `json:"lane_key"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	Provider      EnrichmentSource `json:"provider"`
	DistanceMiles float64          `json:"distance_miles"`
	RatePerMile   float64          `json:"rate_per_mile"`
	TransitHours  float64          `json:"transit_hours"`
	AsOf          time.Time        `json:"as_of"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
