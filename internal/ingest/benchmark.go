package ingest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/loadmatch/internal/identity"
	"github.com/sells-group/loadmatch/internal/model"
)

var benchmarkHeaders = map[string]string{
	"origin": "origin", "from": "origin",
	"destination": "destination", "to": "destination", "dest": "destination",
	"lane": "lane",
	"provider": "provider", "source": "provider",
	"distance": "distance", "miles": "distance", "distance miles": "distance",
	"rate per mile": "rpm", "rpm": "rpm", "$/mile": "rpm",
	"transit": "transit", "transit hours": "transit",
	"as of": "as_of", "date": "as_of", "updated": "as_of",
}

var benchmarkDateLayouts = []string{time.DateOnly, time.RFC3339, "01/02/2006", "1/2/2006"}

// ReadBenchmarks parses a benchmark CSV with columns origin, destination (or
// a single lane column such as "Miami, FL to Tampa, FL"), provider,
// distance, rate per mile, transit hours and as of. Rows with an unknown
// lane or provider are skipped with a validation warning. Rows without a
// date are stamped asOf.
func ReadBenchmarks(ctx context.Context, r io.Reader, asOf time.Time) ([]model.Benchmark, []model.Warning, error) {
	rows, err := collectRows(StreamCSV(ctx, r, ','))
	if err != nil {
		return nil, nil, eris.Wrap(err, "ingest: read benchmarks")
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		if name, ok := benchmarkHeaders[normalizeHeader(h)]; ok {
			if _, dup := idx[name]; !dup {
				idx[name] = i
			}
		}
	}
	_, hasLane := idx["lane"]
	_, hasOrigin := idx["origin"]
	_, hasDest := idx["destination"]
	if !hasLane && !(hasOrigin && hasDest) {
		return nil, nil, eris.New("ingest: benchmarks need origin and destination columns or a lane column")
	}
	if _, ok := idx["rpm"]; !ok {
		return nil, nil, eris.New("ingest: benchmarks need a rate per mile column")
	}

	get := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []model.Benchmark
	warnings := []model.Warning{}
	warn := func(row int, field, format string, args ...any) {
		warnings = append(warnings, model.Warning{
			Kind: model.WarnValidation, Record: row, Field: field, Message: fmt.Sprintf(format, args...),
		})
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}

		origin, dest := get(row, "origin"), get(row, "destination")
		if origin == "" && dest == "" {
			origin, dest, _ = identity.SplitTrip(get(row, "lane"))
		}
		o, okO := identity.CanonicalCityState(origin)
		d, okD := identity.CanonicalCityState(dest)
		if !okO || !okD {
			warn(rowNum, "lane", "cannot parse lane %q → %q", origin, dest)
			continue
		}

		provider := model.EnrichInternal
		if p := strings.ToLower(get(row, "provider")); p != "" {
			parsed, err := model.ParseEnrichmentSource(p)
			if err != nil || !parsed.IsBenchmark() {
				warn(rowNum, "provider", "unknown benchmark provider %q", p)
				continue
			}
			provider = parsed
		}

		rpm := parseNumber(get(row, "rpm"), 1)
		if rpm == nil || *rpm <= 0 {
			warn(rowNum, "rate_per_mile", "invalid rate per mile %q", get(row, "rpm"))
			continue
		}

		b := model.Benchmark{
			LaneKey:     identity.LaneKey(o, d),
			Origin:      o,
			Destination: d,
			Provider:    provider,
			RatePerMile: *rpm,
			AsOf:        asOf.UTC(),
		}
		if v := parseNumber(get(row, "distance"), 1); v != nil {
			b.DistanceMiles = *v
		}
		if v := parseNumber(get(row, "transit"), 1); v != nil {
			b.TransitHours = *v
		}
		if s := get(row, "as_of"); s != "" {
			t, ok := parseBenchmarkDate(s)
			if !ok {
				warn(rowNum, "as_of", "cannot parse date %q", s)
				continue
			}
			b.AsOf = t
		}
		out = append(out, b)
	}
	return out, warnings, nil
}

func parseBenchmarkDate(s string) (time.Time, bool) {
	for _, layout := range benchmarkDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil && unix > 0 {
		return time.Unix(unix, 0).UTC(), true
	}
	return time.Time{}, false
}
