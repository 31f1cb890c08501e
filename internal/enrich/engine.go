// Package enrich fills missing lane distance, rate and transit time from
// market benchmarks or, failing that, a heuristic estimate. Every value
// carries a confidence in [0, 1].
package enrich

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/identity"
	"github.com/sells-group/loadmatch/internal/model"
)

// BenchmarkSource looks up stored market benchmarks by lane key. A missing
// benchmark is (nil, nil).
type BenchmarkSource interface {
	GetBenchmark(ctx context.Context, laneKey string) (*model.Benchmark, error)
}

// providerDiscount lowers the confidence ceiling for less authoritative
// sources. One entry per enrichment source.
var providerDiscount = [...]float64{
	model.EnrichUnresolved: 0,
	model.EnrichHeuristic:  0,
	model.EnrichInternal:   0.08,
	model.EnrichTruckstop:  0.03,
	model.EnrichDAT:        0,
}

var _ = [1]struct{}{}[int(model.NumEnrichmentSources)-len(providerDiscount)]

// DefaultConfig returns the default confidence bands and estimator settings.
func DefaultConfig() config.EnrichConfig {
	return config.EnrichConfig{
		BenchmarkMaxConfidence: 0.95,
		BenchmarkMinConfidence: 0.70,
		BenchmarkHalfLifeDays:  180,
		CityConfidence:         0.35,
		StateConfidence:        0.25,
		AverageSpeedMPH:        50,
		CircuityFactor:         1.2,
		MinDistanceMiles:       10,
		MarketSpread:           0.15,
	}
}

// ValidateConfig checks that confidence bands are ordered and open at 0 and 1
// and that the estimator settings are usable.
func ValidateConfig(c config.EnrichConfig) error {
	var errs []string
	if c.BenchmarkMaxConfidence >= 1 {
		errs = append(errs, "benchmark_max_confidence must be < 1")
	}
	if c.BenchmarkMinConfidence <= 0 || c.BenchmarkMinConfidence > c.BenchmarkMaxConfidence {
		errs = append(errs, "benchmark_min_confidence must be > 0 and <= benchmark_max_confidence")
	}
	if c.CityConfidence >= c.BenchmarkMinConfidence {
		errs = append(errs, "city_confidence must be < benchmark_min_confidence")
	}
	if c.StateConfidence <= 0 || c.StateConfidence > c.CityConfidence {
		errs = append(errs, "state_confidence must be > 0 and <= city_confidence")
	}
	if c.BenchmarkHalfLifeDays <= 0 {
		errs = append(errs, "benchmark_half_life_days must be > 0")
	}
	if c.AverageSpeedMPH <= 0 {
		errs = append(errs, "average_speed_mph must be > 0")
	}
	if c.CircuityFactor < 1 {
		errs = append(errs, "circuity_factor must be >= 1")
	}
	if c.MinDistanceMiles < 0 {
		errs = append(errs, "min_distance_miles must be >= 0")
	}
	if c.MarketSpread < 0 || c.MarketSpread >= 1 {
		errs = append(errs, "market_spread must be in [0, 1)")
	}
	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidConfig, "enrich: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Engine enriches lanes. The cache is shared with whoever passed it in; the
// engine itself is safe for concurrent use.
type Engine struct {
	cfg        config.EnrichConfig
	cache      Cache
	benchmarks BenchmarkSource
	estimator  Estimator
	now        func() time.Time
	flight     singleflight.Group
}

// New validates cfg and wires the engine's collaborators. benchmarks may be
// nil, in which case every uncached lane is estimated.
func New(cfg config.EnrichConfig, cache Cache, benchmarks BenchmarkSource, estimator Estimator) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, eris.Wrap(model.ErrInvalidConfig, "enrich: cache is required")
	}
	if estimator == nil {
		estimator = NewHeuristic(cfg)
	}
	return &Engine{
		cfg:        cfg,
		cache:      cache,
		benchmarks: benchmarks,
		estimator:  estimator,
		now:        time.Now,
	}, nil
}

// WithNow sets a fixed time for testing.
func (e *Engine) WithNow(t time.Time) *Engine {
	e.now = func() time.Time { return t }
	return e
}

// Stats counts how each lane of a batch was resolved.
type Stats struct {
	Lanes      int `json:"lanes"`
	CacheHits  int `json:"cache_hits"`
	Benchmarks int `json:"benchmarks"`
	Estimated  int `json:"estimated"`
	Unresolved int `json:"unresolved"`
}

// Result is one EnrichedData per input lane, in input order.
type Result struct {
	Data     []model.EnrichedData `json:"data"`
	Warnings []model.Warning      `json:"warnings"`
	Stats    Stats                `json:"stats"`
}

// EnrichLanes enriches each lane. Unresolvable lanes come back with
// confidence 0 and an unresolved_enrichment warning; the batch always
// completes.
func (e *Engine) EnrichLanes(ctx context.Context, lanes []model.Lane) *Result {
	res := &Result{
		Data:     make([]model.EnrichedData, len(lanes)),
		Warnings: []model.Warning{},
		Stats:    Stats{Lanes: len(lanes)},
	}

	for i, lane := range lanes {
		ed, hit := e.EnrichLane(ctx, lane.Origin, lane.Destination)
		res.Data[i] = ed

		switch {
		case hit:
			res.Stats.CacheHits++
		case ed.Source.IsBenchmark():
			res.Stats.Benchmarks++
		case ed.Source == model.EnrichHeuristic:
			res.Stats.Estimated++
		}
		if ed.Source == model.EnrichUnresolved {
			res.Stats.Unresolved++
			res.Warnings = append(res.Warnings, model.Warning{
				Kind:    model.WarnUnresolved,
				Record:  i,
				Key:     ed.LaneKey,
				Message: fmt.Sprintf("lane %q could not be estimated", ed.LaneKey),
			})
		}
	}

	zap.L().Info("enrich: batch complete",
		zap.Int("lanes", res.Stats.Lanes),
		zap.Int("cache_hits", res.Stats.CacheHits),
		zap.Int("benchmarks", res.Stats.Benchmarks),
		zap.Int("estimated", res.Stats.Estimated),
		zap.Int("unresolved", res.Stats.Unresolved),
	)
	return res
}

// EnrichLane enriches a single origin/destination pair. hit reports whether
// the value came from the cache.
func (e *Engine) EnrichLane(ctx context.Context, origin, destination string) (ed model.EnrichedData, hit bool) {
	key, o, d, ok := laneKey(origin, destination)

	if cached, found := e.cache.Get(key); found {
		return cached, true
	}

	type outcome struct {
		ed  model.EnrichedData
		hit bool
	}
	v, _, _ := e.flight.Do(key, func() (any, error) {
		// Another caller may have finished while this one waited.
		if cached, found := e.cache.Get(key); found {
			return outcome{ed: cached, hit: true}, nil
		}
		var computed model.EnrichedData
		if ok {
			computed = e.compute(ctx, key, o, d)
		} else {
			computed = model.EnrichedData{LaneKey: key, Origin: origin, Destination: destination, Source: model.EnrichUnresolved}
		}
		computed.ComputedAt = e.now().UTC()
		e.cache.Put(key, computed)
		return outcome{ed: computed}, nil
	})
	out := v.(outcome)
	return out.ed.Clone(), out.hit
}

// Invalidate drops the cached enrichment for a lane so the next lookup
// recomputes it.
func (e *Engine) Invalidate(origin, destination string) bool {
	key, _, _, _ := laneKey(origin, destination)
	return e.cache.Invalidate(key)
}

// laneKey canonicalizes both endpoints. Unparseable endpoints still get a
// stable key built from the trimmed input.
func laneKey(origin, destination string) (key, o, d string, ok bool) {
	o, okO := identity.CanonicalCityState(origin)
	d, okD := identity.CanonicalCityState(destination)
	if okO && okD {
		return identity.LaneKey(o, d), o, d, true
	}
	return strings.TrimSpace(origin) + identity.LaneArrow + strings.TrimSpace(destination), "", "", false
}

func (e *Engine) compute(ctx context.Context, key, origin, destination string) model.EnrichedData {
	ed := model.EnrichedData{LaneKey: key, Origin: origin, Destination: destination}
	est, estOK := e.estimator.Estimate(origin, destination)

	if b := e.lookupBenchmark(ctx, key); b != nil {
		src := b.Provider
		if !src.IsBenchmark() {
			src = model.EnrichInternal
		}
		ed.Source = src
		ed.Confidence = e.confidence(src, b.AsOf, false)
		ed.DistanceMiles = firstPositive(b.DistanceMiles, est.DistanceMiles, estOK)
		ed.RatePerMile = firstPositive(b.RatePerMile, est.RatePerMile, estOK)
		ed.TransitHours = firstPositive(b.TransitHours, est.TransitHours, estOK)
	} else if estOK {
		ed.Source = model.EnrichHeuristic
		ed.Confidence = e.confidence(model.EnrichHeuristic, time.Time{}, est.CityLevel)
		ed.DistanceMiles = model.Float(est.DistanceMiles)
		ed.RatePerMile = model.Float(est.RatePerMile)
		ed.TransitHours = model.Float(est.TransitHours)
	} else {
		ed.Source = model.EnrichUnresolved
		return ed
	}

	if ed.DistanceMiles != nil && ed.RatePerMile != nil {
		amount := round2(*ed.DistanceMiles * *ed.RatePerMile)
		ed.RateAmount = model.Float(amount)
		ed.MarketLow = model.Float(round2(amount * (1 - e.cfg.MarketSpread)))
		ed.MarketHigh = model.Float(round2(amount * (1 + e.cfg.MarketSpread)))
	}
	return ed
}

func (e *Engine) lookupBenchmark(ctx context.Context, key string) *model.Benchmark {
	if e.benchmarks == nil {
		return nil
	}
	b, err := e.benchmarks.GetBenchmark(ctx, key)
	if err != nil {
		zap.L().Warn("enrich: benchmark lookup failed, estimating instead",
			zap.String("lane", key), zap.Error(err))
		return nil
	}
	// Zero fields are unknown; a row with none set carries no data.
	if b != nil && b.DistanceMiles <= 0 && b.RatePerMile <= 0 && b.TransitHours <= 0 {
		zap.L().Debug("enrich: empty benchmark ignored", zap.String("lane", key))
		return nil
	}
	return b
}

// confidence maps a source to its score. Benchmark scores decay with age
// inside [BenchmarkMinConfidence, ceiling]; heuristic scores are fixed.
func (e *Engine) confidence(src model.EnrichmentSource, asOf time.Time, cityLevel bool) float64 {
	switch src {
	case model.EnrichUnresolved:
		return 0
	case model.EnrichHeuristic:
		if cityLevel {
			return e.cfg.CityConfidence
		}
		return e.cfg.StateConfidence
	case model.EnrichInternal, model.EnrichTruckstop, model.EnrichDAT:
		ceiling := math.Max(e.cfg.BenchmarkMinConfidence, e.cfg.BenchmarkMaxConfidence-providerDiscount[src])
		c := effectiveConfidence(ceiling, asOf, e.now(), e.cfg.BenchmarkHalfLifeDays, e.cfg.BenchmarkMinConfidence)
		return math.Round(c*1000) / 1000
	default:
		panic(fmt.Sprintf("enrich: unhandled source %d", src))
	}
}

// FillMissingRates gives every load without a rate an enriched one built from
// its lane's enrichment. It returns the number of loads filled. Loads are
// modified in place.
func FillMissingRates(loads []model.Load, enrichment map[string]model.EnrichedData) int {
	filled := 0
	for i := range loads {
		if loads[i].Rate != nil {
			continue
		}
		ed, ok := enrichment[loads[i].LaneKey()]
		if !ok || ed.RateAmount == nil || ed.RatePerMile == nil {
			continue
		}
		rpm := *ed.RatePerMile
		loads[i].Rate = &model.Rate{
			Amount:   *ed.RateAmount,
			PerMile:  &rpm,
			Currency: "USD",
			Origin:   model.RateEnriched,
		}
		filled++
	}
	return filled
}

func firstPositive(v, fallback float64, fallbackOK bool) *float64 {
	if v > 0 {
		return model.Float(v)
	}
	if fallbackOK && fallback > 0 {
		return model.Float(fallback)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
