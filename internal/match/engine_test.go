package match

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/identity"
	"github.com/sells-group/loadmatch/internal/model"
	"github.com/sells-group/loadmatch/internal/normalize"
)

const miamiTampa = "Miami, FL → Tampa, FL"

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

// oneLoadProfile is a carrier that hauled once for MC 123456 from Miami to
// Tampa.
func oneLoadProfile(t *testing.T) *model.CarrierProfile {
	t.Helper()
	n, err := normalize.New(normalize.DefaultConfig())
	require.NoError(t, err)
	res := n.Normalize([]model.RawRecord{{
		Source:        "csv",
		CompanyName:   "Sunshine Freight LLC",
		MCNumber:      "MC-123456",
		LoadID:        "L-1",
		Origin:        "Miami, FL",
		Destination:   "Tampa, FL",
		Rate:          "$700",
		DistanceMiles: model.Float(280),
		BookingDate:   "2025-05-01",
	}})
	require.Len(t, res.Profile.Loads, 1)
	return res.Profile
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.MatchConfig)
		want   string
	}{
		{"negative weight", func(c *config.MatchConfig) { c.ExactLaneWeight = -0.1 }, "exact_lane_weight"},
		{"weight above one", func(c *config.MatchConfig) { c.PastBrokerWeight = 1.5 }, "past_broker_weight"},
		{"reverse above exact", func(c *config.MatchConfig) { c.ReverseLaneWeight = 0.5 }, "reverse_lane_weight"},
		{"zero workers", func(c *config.MatchConfig) { c.Workers = 0 }, "workers"},
		{"band too wide", func(c *config.MatchConfig) { c.RateRatioBand = 1 }, "rate_ratio_band"},
		{"zero cap", func(c *config.MatchConfig) { c.BrokerFrequencyCap = 0 }, "broker_frequency_cap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
			assert.True(t, eris.Is(err, model.ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultConfig_WeightSum(t *testing.T) {
	c := DefaultConfig()
	sum := c.PastBrokerWeight + c.BrokerFrequencyWeight + c.ExactLaneWeight +
		c.PreferredLaneWeight + c.PreferredBrokerWeight + c.PreferredEquipmentWeight +
		c.RateQualityWeight
	assert.InDelta(t, 0.95, sum, 1e-9)
	assert.LessOrEqual(t, sum, 1.0)
	assert.NoError(t, ValidateConfig(c))
}

func TestMatchLoads_ExactLaneAndBroker(t *testing.T) {
	e := newEngine(t)
	profile := oneLoadProfile(t)

	got := e.MatchLoads(profile, []model.Load{
		{ID: "C1", BrokerMC: "123456", Origin: "Miami, FL", Destination: "Tampa, FL"},
	}, 0)

	require.Len(t, got, 1)
	cfg := DefaultConfig()
	assert.GreaterOrEqual(t, got[0].Score, cfg.ExactLaneWeight+cfg.PastBrokerWeight)
	assert.Contains(t, got[0].Reasons, ReasonPastBroker)
	assert.Contains(t, got[0].Reasons, ReasonExactLane)
	assert.NotContains(t, got[0].Reasons, ReasonReverseLane)
	assert.NotContains(t, got[0].Reasons, ReasonSparseBaseline)
	assert.InDelta(t, 0.75, got[0].Score, 1e-9)
}

func TestMatchLoads_ReverseLaneRanksBetween(t *testing.T) {
	e := newEngine(t)
	profile := oneLoadProfile(t)

	got := e.MatchLoads(profile, []model.Load{
		{ID: "NONE", BrokerMC: "999", Origin: "Dallas, TX", Destination: "Chicago, IL"},
		{ID: "REV", BrokerMC: "999", Origin: "Tampa, FL", Destination: "Miami, FL"},
		{ID: "EXACT", BrokerMC: "123456", Origin: "Miami, FL", Destination: "Tampa, FL"},
	}, 0)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"EXACT", "REV", "NONE"}, []string{got[0].Load.ID, got[1].Load.ID, got[2].Load.ID})
	assert.Greater(t, got[0].Score, got[1].Score)
	assert.Greater(t, got[1].Score, got[2].Score)
	assert.Contains(t, got[1].Reasons, ReasonReverseLane)
	assert.NotContains(t, got[1].Reasons, ReasonExactLane)
}

func TestMatchLoads_EmptyHistoryGetsBaseline(t *testing.T) {
	e := newEngine(t)
	profile := &model.CarrierProfile{CarrierID: "new"}

	got := e.MatchLoads(profile, []model.Load{
		{ID: "B", Origin: "Miami, FL", Destination: "Tampa, FL"},
		{ID: "A", Origin: "Dallas, TX", Destination: "Chicago, IL"},
		{ID: "C"},
	}, 0)

	require.Len(t, got, 3)
	for _, m := range got {
		assert.InDelta(t, DefaultConfig().SparseBaseline, m.Score, 1e-9)
		assert.Equal(t, []string{ReasonSparseBaseline}, m.Reasons)
	}
	assert.Equal(t, "A", got[0].Load.ID)
	assert.Equal(t, "B", got[1].Load.ID)
	assert.Equal(t, "C", got[2].Load.ID)
}

func TestMatchLoads_BrokerFrequencyCapped(t *testing.T) {
	e := newEngine(t)
	var loads []model.Load
	for i := range 8 {
		loads = append(loads, model.Load{ID: fmt.Sprintf("L%d", i), BrokerKey: "mc:1", Origin: "Reno, NV", Destination: "Boise, ID"})
	}
	profile := &model.CarrierProfile{Brokers: []model.Broker{{Key: "mc:1"}}, Loads: loads}

	got := e.MatchLoads(profile, []model.Load{{ID: "X", BrokerMC: "1"}}, 0)
	assert.InDelta(t, 0.30, got[0].Components[ReasonPastBroker], 1e-9)
}

func TestMatchLoads_BrokerWithoutLoads(t *testing.T) {
	e := newEngine(t)
	profile := &model.CarrierProfile{Brokers: []model.Broker{{Key: "name:acme freight"}}}

	got := e.MatchLoads(profile, []model.Load{{ID: "X", BrokerName: "ACME Freight, Inc."}}, 0)
	assert.Contains(t, got[0].Reasons, ReasonPastBroker)
	assert.InDelta(t, 0.25, got[0].Score, 1e-9)
}

func TestMatchLoads_RateQuality(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SparseLoadThreshold = 0
	e, err := New(cfg)
	require.NoError(t, err)

	profile := &model.CarrierProfile{Enrichment: map[string]model.EnrichedData{
		miamiTampa: {LaneKey: miamiTampa, Source: model.EnrichDAT, RatePerMile: model.Float(2.0), DistanceMiles: model.Float(280)},
	}}

	tests := []struct {
		name string
		rate *model.Rate
		want float64
	}{
		{"at benchmark", &model.Rate{Amount: 560, PerMile: model.Float(2.0)}, 0.10},
		{"above benchmark", &model.Rate{Amount: 700, PerMile: model.Float(2.5)}, 0.10},
		{"within band", &model.Rate{Amount: 532, PerMile: model.Float(1.9)}, 0.075},
		{"below band", &model.Rate{Amount: 448, PerMile: model.Float(1.6)}, 0},
		{"amount over enriched distance", &model.Rate{Amount: 560}, 0.10},
		{"no rate", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.MatchLoads(profile, []model.Load{{ID: "X", Origin: "Miami, FL", Destination: "Tampa, FL", Rate: tt.rate}}, 0)
			assert.InDelta(t, tt.want, got[0].Components[ReasonRateQuality], 1e-9)
			assert.InDelta(t, tt.want, got[0].Score, 1e-9)
		})
	}
}

func TestMatchLoads_RateQualityFromOwnHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SparseLoadThreshold = 0
	cfg.ExactLaneWeight = 0
	cfg.ReverseLaneWeight = 0
	e, err := New(cfg)
	require.NoError(t, err)

	profile := &model.CarrierProfile{Loads: []model.Load{
		{ID: "1", Origin: "Miami, FL", Destination: "Tampa, FL", Rate: &model.Rate{Amount: 700, PerMile: model.Float(2.5), Origin: model.RateRaw}},
		{ID: "2", Origin: "Miami, FL", Destination: "Tampa, FL", Rate: &model.Rate{Amount: 980, PerMile: model.Float(3.5), Origin: model.RateRaw}},
		{ID: "3", Origin: "Miami, FL", Destination: "Tampa, FL", Rate: &model.Rate{Amount: 100, PerMile: model.Float(0.1), Origin: model.RateEnriched}},
	}}

	got := e.MatchLoads(profile, []model.Load{{ID: "X", Origin: "Miami, FL", Destination: "Tampa, FL", Rate: &model.Rate{PerMile: model.Float(2.7)}}}, 0)
	// Benchmark is the raw average 3.0, so 2.7 is a 0.9 ratio.
	assert.InDelta(t, 0.05, got[0].Components[ReasonRateQuality], 1e-9)
}

func TestMatchLoads_Preferences(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SparseLoadThreshold = 0
	e, err := New(cfg)
	require.NoError(t, err)

	profile := &model.CarrierProfile{
		PreferredLanes:     []string{miamiTampa},
		PreferredBrokers:   []string{"mc:42"},
		PreferredEquipment: []string{"Refrigerated"},
	}
	got := e.MatchLoads(profile, []model.Load{{ID: "X", BrokerMC: "42", Origin: "miami fl", Destination: "tampa, fl", Equipment: "reefer"}}, 0)

	assert.ElementsMatch(t, []string{ReasonPreferredLane, ReasonPreferredBroker, ReasonPreferredEquipment}, got[0].Reasons)
	assert.InDelta(t, 0.25, got[0].Score, 1e-9)
	assert.Equal(t, miamiTampa, got[0].Load.LaneKey())
}

func TestMatchLoads_Limit(t *testing.T) {
	e := newEngine(t)
	profile := &model.CarrierProfile{}
	candidates := []model.Load{{ID: "A"}, {ID: "B"}, {ID: "C"}}

	assert.Len(t, e.MatchLoads(profile, candidates, 2), 2)
	assert.Len(t, e.MatchLoads(profile, candidates, 0), 3)
	assert.Len(t, e.MatchLoads(profile, candidates, -1), 3)
	assert.Len(t, e.MatchLoads(profile, candidates, 10), 3)
	assert.Empty(t, e.MatchLoads(profile, nil, 5))
}

func TestMatchLoads_MissingIDsOrderIndependent(t *testing.T) {
	e := newEngine(t)
	profile := &model.CarrierProfile{CarrierID: "new"}
	a := model.Load{BrokerMC: "111", Origin: "Miami, FL", Destination: "Tampa, FL"}
	b := model.Load{BrokerMC: "222", Origin: "Miami, FL", Destination: "Tampa, FL"}

	ab := e.MatchLoads(profile, []model.Load{a, b}, 0)
	ba := e.MatchLoads(profile, []model.Load{b, a}, 0)

	require.Len(t, ab, 2)
	assert.Equal(t, ab, ba)
	assert.Less(t, ab[0].Load.ID, ab[1].Load.ID)

	ids := []string{ab[0].Load.ID, ab[1].Load.ID}
	assert.ElementsMatch(t, []string{
		identity.LoadKey("mc:111", miamiTampa, time.Time{}),
		identity.LoadKey("mc:222", miamiTampa, time.Time{}),
	}, ids)
}

func TestMatchLoads_MissingIDsWithoutLane(t *testing.T) {
	e := newEngine(t)
	profile := &model.CarrierProfile{CarrierID: "new"}
	a := model.Load{BrokerMC: "111"}
	b := model.Load{BrokerMC: "222"}

	ab := e.MatchLoads(profile, []model.Load{a, b}, 0)
	ba := e.MatchLoads(profile, []model.Load{b, a}, 0)

	assert.Equal(t, ab, ba)
	assert.Equal(t, "mc:111", ab[0].Load.BrokerKey)
}

func TestMatchLoads_DoesNotMutateInputs(t *testing.T) {
	e := newEngine(t)
	profile := oneLoadProfile(t)
	booked := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	candidates := []model.Load{
		{ID: "C1", BrokerMC: "123456", Origin: "miami fl", Destination: "tampa fl", Equipment: "dry van", BookingDate: &booked},
		{ID: "C2", BrokerName: "Other", Origin: "Tampa, FL", Destination: "Miami, FL"},
	}

	wantCandidates := []model.Load{candidates[0], candidates[1]}
	wantProfile := *oneLoadProfile(t)

	e.MatchLoads(profile, candidates, 1)

	assert.Equal(t, wantCandidates, candidates)
	assert.Equal(t, wantProfile.Loads, profile.Loads)
	assert.Equal(t, wantProfile.Brokers, profile.Brokers)
	assert.Equal(t, wantProfile.PreferredLanes, profile.PreferredLanes)
}

func TestMatchLoads_TotalOrderAndBounds(t *testing.T) {
	e := newEngine(t)
	profile := oneLoadProfile(t)

	cities := []string{"Miami, FL", "Tampa, FL", "Dallas, TX", "Chicago, IL"}
	var candidates []model.Load
	for i := range 200 {
		candidates = append(candidates, model.Load{
			ID:          fmt.Sprintf("C%03d", i),
			BrokerMC:    []string{"123456", "7"}[i%2],
			Origin:      cities[i%4],
			Destination: cities[(i/4)%4],
		})
	}

	first := e.MatchLoads(profile, candidates, 0)
	second := e.MatchLoads(profile, candidates, 0)
	require.Len(t, first, 200)
	assert.Equal(t, first, second)

	for i, m := range first {
		assert.GreaterOrEqual(t, m.Score, 0.0)
		assert.LessOrEqual(t, m.Score, 1.0)
		if i == 0 {
			continue
		}
		prev := first[i-1]
		if prev.Score == m.Score {
			assert.Less(t, prev.Load.ID, m.Load.ID)
		} else {
			assert.Greater(t, prev.Score, m.Score)
		}
	}
}

func TestSummarize(t *testing.T) {
	e := newEngine(t)
	s := e.Summarize([]ScoredMatch{
		{Score: 0.9, Reasons: []string{ReasonExactLane, ReasonPastBroker}},
		{Score: 0.7, Reasons: []string{ReasonExactLane}},
		{Score: 0.2, Reasons: []string{ReasonReverseLane}},
	})

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.HighConfidence)
	assert.InDelta(t, 0.6, s.AverageScore, 1e-9)
	assert.Equal(t, map[string]int{ReasonExactLane: 2, ReasonPastBroker: 1, ReasonReverseLane: 1}, s.Reasons)

	empty := e.Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.AverageScore)
}

func TestLoadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exact_lane_weight: 0.4\nworkers: 2\n"), 0o644))

	cfg, err := LoadWeights(path, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.4, cfg.ExactLaneWeight, 1e-9)
	assert.Equal(t, 2, cfg.Workers)
	assert.InDelta(t, 0.25, cfg.PastBrokerWeight, 1e-9)
}

func TestLoadWeights_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reverse_lane_weight: 0.9\n"), 0o644))

	_, err := LoadWeights(path, DefaultConfig())
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidConfig))

	_, err = LoadWeights(filepath.Join(dir, "missing.yaml"), DefaultConfig())
	assert.Error(t, err)
}
