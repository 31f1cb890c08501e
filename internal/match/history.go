package match

import "github.com/sells-group/loadmatch/internal/model"

// history is a read-only index over a carrier profile, built once per
// MatchLoads call and shared by all scoring goroutines.
type history struct {
	loads   int
	brokers map[string]int
	lanes   map[string]bool

	preferredLanes     map[string]bool
	preferredBrokers   map[string]bool
	preferredEquipment map[string]bool

	laneDistance map[string]float64
	laneRPM      map[string]float64
	enrichment   map[string]model.EnrichedData
}

func newHistory(p *model.CarrierProfile) *history {
	h := &history{
		loads:              len(p.Loads),
		brokers:            make(map[string]int, len(p.Brokers)),
		lanes:              make(map[string]bool, len(p.Lanes)),
		preferredLanes:     set(p.PreferredLanes),
		preferredBrokers:   set(p.PreferredBrokers),
		preferredEquipment: set(p.PreferredEquipment),
		laneDistance:       make(map[string]float64, len(p.Lanes)),
		laneRPM:            map[string]float64{},
		enrichment:         p.Enrichment,
	}

	for _, b := range p.Brokers {
		h.brokers[b.Key] = 0
	}
	for _, l := range p.Lanes {
		h.lanes[l.Key()] = true
		if l.DistanceMiles != nil && *l.DistanceMiles > 0 {
			h.laneDistance[l.Key()] = *l.DistanceMiles
		}
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, l := range p.Loads {
		if l.BrokerKey != "" {
			h.brokers[l.BrokerKey]++
		}
		key := l.LaneKey()
		if key == "" {
			continue
		}
		h.lanes[key] = true
		if l.Rate != nil && l.Rate.Origin == model.RateRaw && l.Rate.PerMile != nil {
			sums[key] += *l.Rate.PerMile
			counts[key]++
		}
	}
	for k, s := range sums {
		h.laneRPM[k] = s / float64(counts[k])
	}
	return h
}

// benchmarkRPM prefers the lane's enrichment, then the carrier's own average
// raw rate-per-mile on the lane.
func (h *history) benchmarkRPM(laneKey string) (float64, bool) {
	if ed, ok := h.enrichment[laneKey]; ok && ed.Source != model.EnrichUnresolved &&
		ed.RatePerMile != nil && *ed.RatePerMile > 0 {
		return *ed.RatePerMile, true
	}
	v, ok := h.laneRPM[laneKey]
	return v, ok && v > 0
}

func (h *history) distance(laneKey string) (float64, bool) {
	if ed, ok := h.enrichment[laneKey]; ok && ed.DistanceMiles != nil && *ed.DistanceMiles > 0 {
		return *ed.DistanceMiles, true
	}
	v, ok := h.laneDistance[laneKey]
	return v, ok
}

func set(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
