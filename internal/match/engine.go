// Package match ranks candidate loads for a carrier by how well they fit the
// carrier's booking history and preferences.
package match

import (
	"math"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/identity"
	"github.com/sells-group/loadmatch/internal/model"
)

// Reasons attached to a match, one per contributing signal.
const (
	ReasonPastBroker         = "Past broker match"
	ReasonExactLane          = "Exact lane match"
	ReasonReverseLane        = "Reverse lane match"
	ReasonPreferredLane      = "Preferred lane"
	ReasonPreferredBroker    = "Preferred broker"
	ReasonPreferredEquipment = "Preferred equipment"
	ReasonRateQuality        = "Rate quality"
	ReasonSparseBaseline     = "Sparse history baseline"
)

// ScoredMatch is a candidate load with its score and the signals behind it.
type ScoredMatch struct {
	Load       model.Load         `json:"load" yaml:"load"`
	Score      float64            `json:"score" yaml:"score"`
	Reasons    []string           `json:"reasons" yaml:"reasons"`
	Components map[string]float64 `json:"components" yaml:"components"`
}

// Engine scores candidates. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	cfg config.MatchConfig
}

// New validates cfg and returns an Engine.
func New(cfg config.MatchConfig) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's settings.
func (e *Engine) Config() config.MatchConfig {
	return e.cfg
}

// MatchLoads scores every candidate against profile and returns them by
// score descending, then load id ascending. limit <= 0 returns all.
// Neither profile nor candidates are modified.
func (e *Engine) MatchLoads(profile *model.CarrierProfile, candidates []model.Load, limit int) []ScoredMatch {
	idx := newHistory(profile)
	results := make([]ScoredMatch, len(candidates))

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i := range candidates {
		g.Go(func() error {
			results[i] = e.score(idx, candidates[i])
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(results, func(a, b ScoredMatch) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.Load.ID, b.Load.ID); c != 0 {
			return c
		}
		if c := strings.Compare(a.Load.BrokerKey, b.Load.BrokerKey); c != 0 {
			return c
		}
		return strings.Compare(a.Load.LaneKey(), b.Load.LaneKey())
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	zap.L().Debug("match: scored candidates",
		zap.String("carrier_id", profile.CarrierID),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(results)),
	)
	return results
}

// score computes one candidate. It only reads h and its own copy of c.
func (e *Engine) score(h *history, c model.Load) ScoredMatch {
	c = canonicalCandidate(c)
	m := ScoredMatch{Load: c, Reasons: []string{}, Components: map[string]float64{}}
	add := func(reason string, v float64) {
		if v <= 0 {
			return
		}
		m.Components[reason] = round4(v)
		m.Reasons = append(m.Reasons, reason)
		m.Score += v
	}

	if n, ok := h.brokers[c.BrokerKey]; ok && c.BrokerKey != "" {
		extra := min(max(n-1, 0), e.cfg.BrokerFrequencyCap)
		add(ReasonPastBroker, e.cfg.PastBrokerWeight+
			e.cfg.BrokerFrequencyWeight*float64(extra)/float64(e.cfg.BrokerFrequencyCap))
	}

	laneKey := c.LaneKey()
	switch {
	case laneKey == "":
	case h.lanes[laneKey]:
		add(ReasonExactLane, e.cfg.ExactLaneWeight)
	case h.lanes[identity.ReverseLaneKey(c.Origin, c.Destination)]:
		add(ReasonReverseLane, e.cfg.ReverseLaneWeight)
	}

	if laneKey != "" && h.preferredLanes[laneKey] {
		add(ReasonPreferredLane, e.cfg.PreferredLaneWeight)
	}
	if c.BrokerKey != "" && h.preferredBrokers[c.BrokerKey] {
		add(ReasonPreferredBroker, e.cfg.PreferredBrokerWeight)
	}
	if c.Equipment != "" && h.preferredEquipment[c.Equipment] {
		add(ReasonPreferredEquipment, e.cfg.PreferredEquipmentWeight)
	}

	if q, ok := e.rateQuality(h, c, laneKey); ok {
		add(ReasonRateQuality, e.cfg.RateQualityWeight*q)
	}

	if h.loads < e.cfg.SparseLoadThreshold && m.Score < e.cfg.SparseBaseline {
		m.Components[ReasonSparseBaseline] = round4(e.cfg.SparseBaseline - m.Score)
		m.Reasons = append(m.Reasons, ReasonSparseBaseline)
		m.Score = e.cfg.SparseBaseline
	}

	m.Score = round4(math.Max(0, math.Min(1, m.Score)))
	return m
}

// rateQuality returns 1 when the candidate pays at least the threshold ratio
// of the lane benchmark, falling linearly to 0 over the ratio band below it.
func (e *Engine) rateQuality(h *history, c model.Load, laneKey string) (float64, bool) {
	if c.Rate == nil || laneKey == "" {
		return 0, false
	}
	bench, ok := h.benchmarkRPM(laneKey)
	if !ok {
		return 0, false
	}

	var rpm float64
	switch {
	case c.Rate.PerMile != nil && *c.Rate.PerMile > 0:
		rpm = *c.Rate.PerMile
	default:
		dist, ok := h.distance(laneKey)
		if !ok || c.Rate.Amount <= 0 {
			return 0, false
		}
		rpm = c.Rate.Amount / dist
	}

	ratio := rpm / bench
	floor := e.cfg.RateRatioThreshold - e.cfg.RateRatioBand
	return math.Max(0, math.Min(1, (ratio-floor)/e.cfg.RateRatioBand)), true
}

// canonicalCandidate fills the broker key and canonical lane and equipment of
// a copy of c. Values that do not canonicalize are kept as given. A candidate
// without a load number gets the key derived from its broker, lane and date.
func canonicalCandidate(c model.Load) model.Load {
	if c.BrokerKey == "" {
		c.BrokerKey = identity.BrokerKey(c.BrokerMC, c.BrokerName)
	}
	if o, ok := identity.CanonicalCityState(c.Origin); ok {
		c.Origin = o
	}
	if d, ok := identity.CanonicalCityState(c.Destination); ok {
		c.Destination = d
	}
	c.Equipment = identity.NormalizeEquipment(c.Equipment)
	if c.ID == "" {
		var day time.Time
		if d := c.Date(); d != nil {
			day = *d
		}
		c.ID = identity.LoadKey(c.BrokerKey, c.LaneKey(), day)
	}
	return c
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
