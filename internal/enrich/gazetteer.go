package enrich

import "github.com/twpayne/go-geom"

// cityPoints locates major freight markets.
var cityPoints = map[string]*geom.Point{
	"Albuquerque, NM":    lonLat(-106.651, 35.084),
	"Atlanta, GA":        lonLat(-84.388, 33.749),
	"Baltimore, MD":      lonLat(-76.612, 39.290),
	"Birmingham, AL":     lonLat(-86.810, 33.519),
	"Boston, MA":         lonLat(-71.059, 42.360),
	"Charleston, SC":     lonLat(-79.931, 32.776),
	"Charlotte, NC":      lonLat(-80.843, 35.227),
	"Chicago, IL":        lonLat(-87.630, 41.878),
	"Cincinnati, OH":     lonLat(-84.512, 39.103),
	"Cleveland, OH":      lonLat(-81.694, 41.499),
	"Columbus, OH":       lonLat(-82.999, 39.961),
	"Dallas, TX":         lonLat(-96.797, 32.777),
	"Denver, CO":         lonLat(-104.990, 39.739),
	"Detroit, MI":        lonLat(-83.046, 42.331),
	"El Paso, TX":        lonLat(-106.485, 31.762),
	"Fort Worth, TX":     lonLat(-97.331, 32.755),
	"Houston, TX":        lonLat(-95.370, 29.760),
	"Indianapolis, IN":   lonLat(-86.158, 39.768),
	"Jacksonville, FL":   lonLat(-81.656, 30.332),
	"Kansas City, MO":    lonLat(-94.579, 39.100),
	"Laredo, TX":         lonLat(-99.480, 27.531),
	"Las Vegas, NV":      lonLat(-115.140, 36.170),
	"Los Angeles, CA":    lonLat(-118.244, 34.052),
	"Louisville, KY":     lonLat(-85.759, 38.253),
	"Memphis, TN":        lonLat(-90.049, 35.150),
	"Miami, FL":          lonLat(-80.192, 25.762),
	"Milwaukee, WI":      lonLat(-87.907, 43.039),
	"Minneapolis, MN":    lonLat(-93.265, 44.978),
	"Nashville, TN":      lonLat(-86.781, 36.163),
	"New Orleans, LA":    lonLat(-90.072, 29.951),
	"New York, NY":       lonLat(-74.006, 40.713),
	"Newark, NJ":         lonLat(-74.172, 40.736),
	"Oklahoma City, OK":  lonLat(-97.516, 35.468),
	"Omaha, NE":          lonLat(-95.935, 41.257),
	"Orlando, FL":        lonLat(-81.379, 28.538),
	"Philadelphia, PA":   lonLat(-75.165, 39.953),
	"Phoenix, AZ":        lonLat(-112.074, 33.448),
	"Pittsburgh, PA":     lonLat(-79.996, 40.441),
	"Portland, OR":       lonLat(-122.679, 45.515),
	"Raleigh, NC":        lonLat(-78.639, 35.780),
	"Richmond, VA":       lonLat(-77.436, 37.541),
	"Riverside, CA":      lonLat(-117.396, 33.953),
	"Sacramento, CA":     lonLat(-121.494, 38.582),
	"Salt Lake City, UT": lonLat(-111.891, 40.761),
	"San Antonio, TX":    lonLat(-98.494, 29.424),
	"San Diego, CA":      lonLat(-117.161, 32.716),
	"Savannah, GA":       lonLat(-81.091, 32.081),
	"Seattle, WA":        lonLat(-122.332, 47.606),
	"St. Louis, MO":      lonLat(-90.199, 38.627),
	"Tampa, FL":          lonLat(-82.457, 27.951),
}

// stateCentroids locates each state (and DC) by its geographic center.
var stateCentroids = map[string]*geom.Point{
	"AL": lonLat(-86.791, 32.806), "AK": lonLat(-152.404, 61.370),
	"AZ": lonLat(-111.431, 33.729), "AR": lonLat(-92.373, 34.970),
	"CA": lonLat(-119.682, 36.116), "CO": lonLat(-105.311, 39.060),
	"CT": lonLat(-72.756, 41.598), "DE": lonLat(-75.507, 39.319),
	"FL": lonLat(-81.687, 27.766), "GA": lonLat(-83.643, 33.040),
	"HI": lonLat(-157.498, 21.094), "ID": lonLat(-114.479, 44.240),
	"IL": lonLat(-88.986, 40.349), "IN": lonLat(-86.258, 39.849),
	"IA": lonLat(-93.211, 42.012), "KS": lonLat(-96.726, 38.527),
	"KY": lonLat(-84.670, 37.668), "LA": lonLat(-91.868, 31.170),
	"ME": lonLat(-69.382, 44.694), "MD": lonLat(-76.802, 39.064),
	"MA": lonLat(-71.530, 42.230), "MI": lonLat(-84.536, 43.327),
	"MN": lonLat(-93.900, 45.694), "MS": lonLat(-89.679, 32.742),
	"MO": lonLat(-92.288, 38.456), "MT": lonLat(-110.454, 46.922),
	"NE": lonLat(-98.268, 41.125), "NV": lonLat(-117.055, 38.314),
	"NH": lonLat(-71.564, 43.452), "NJ": lonLat(-74.521, 40.299),
	"NM": lonLat(-106.249, 34.841), "NY": lonLat(-74.948, 42.166),
	"NC": lonLat(-79.806, 35.630), "ND": lonLat(-99.784, 47.529),
	"OH": lonLat(-82.765, 40.389), "OK": lonLat(-96.929, 35.565),
	"OR": lonLat(-122.071, 44.572), "PA": lonLat(-77.210, 40.591),
	"RI": lonLat(-71.512, 41.681), "SC": lonLat(-80.945, 33.857),
	"SD": lonLat(-99.439, 44.300), "TN": lonLat(-86.692, 35.748),
	"TX": lonLat(-97.563, 31.054), "UT": lonLat(-111.862, 40.150),
	"VT": lonLat(-72.711, 44.046), "VA": lonLat(-78.170, 37.769),
	"WA": lonLat(-121.490, 47.401), "WV": lonLat(-80.954, 38.491),
	"WI": lonLat(-89.616, 44.268), "WY": lonLat(-107.302, 42.756),
	"DC": lonLat(-77.026, 38.897),
}
