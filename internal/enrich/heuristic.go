package enrich

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/identity"
)

const earthRadiusMiles = 3958.8

// Estimate is a heuristic lane estimate. CityLevel is false when either
// endpoint was located by its state centroid only.
type Estimate struct {
	DistanceMiles float64
	RatePerMile   float64
	TransitHours  float64
	CityLevel     bool
}

// Estimator approximates lane fields when no benchmark exists. Endpoints are
// canonical "City, ST" strings.
type Estimator interface {
	Estimate(origin, destination string) (Estimate, bool)
}

// Heuristic estimates distance as great-circle miles between gazetteer
// points times a road circuity factor. Rate-per-mile follows a distance band
// and transit time an average speed.
type Heuristic struct {
	circuity  float64
	speedMPH  float64
	minMiles  float64
	cities    map[string]*geom.Point
	centroids map[string]*geom.Point
}

// NewHeuristic builds a Heuristic from the enrichment settings.
func NewHeuristic(cfg config.EnrichConfig) *Heuristic {
	return &Heuristic{
		circuity:  cfg.CircuityFactor,
		speedMPH:  cfg.AverageSpeedMPH,
		minMiles:  cfg.MinDistanceMiles,
		cities:    cityPoints,
		centroids: stateCentroids,
	}
}

// Estimate implements Estimator.
func (h *Heuristic) Estimate(origin, destination string) (Estimate, bool) {
	o, oCity, ok := h.locate(origin)
	if !ok {
		return Estimate{}, false
	}
	d, dCity, ok := h.locate(destination)
	if !ok {
		return Estimate{}, false
	}

	miles := greatCircleMiles(o, d) * h.circuity
	if miles < h.minMiles {
		miles = h.minMiles
	}
	miles = math.Round(miles*10) / 10

	return Estimate{
		DistanceMiles: miles,
		RatePerMile:   bandRatePerMile(miles),
		TransitHours:  math.Round(miles/h.speedMPH*10) / 10,
		CityLevel:     oCity && dCity,
	}, true
}

// locate finds a point for a canonical place, falling back to its state's
// centroid.
func (h *Heuristic) locate(place string) (*geom.Point, bool, bool) {
	city, state, ok := identity.SplitCityState(place)
	if !ok {
		return nil, false, false
	}
	if p, ok := h.cities[city+", "+state]; ok {
		return p, true, true
	}
	if p, ok := h.centroids[state]; ok {
		return p, false, true
	}
	return nil, false, false
}

// bandRatePerMile prices short hauls higher per mile than long hauls.
func bandRatePerMile(miles float64) float64 {
	switch {
	case miles < 100:
		return 2.50
	case miles < 500:
		return 2.00
	default:
		return 1.75
	}
}

// greatCircleMiles is the haversine distance between two lon/lat points.
func greatCircleMiles(a, b *geom.Point) float64 {
	lat1, lat2 := a.Y()*math.Pi/180, b.Y()*math.Pi/180
	dLat := lat2 - lat1
	dLon := (b.X() - a.X()) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(s)))
}

func lonLat(lon, lat float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
}
