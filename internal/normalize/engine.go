// Package normalize turns raw booking records into a deduplicated carrier
// profile with derived rates and preference rankings.
package normalize

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/model"
)

// DefaultConfig returns the default preference list sizes.
func DefaultConfig() config.NormalizeConfig {
	return config.NormalizeConfig{
		PreferredLanes:     10,
		PreferredBrokers:   10,
		PreferredEquipment: 10,
	}
}

// ValidateConfig checks that every preference list size is positive.
func ValidateConfig(c config.NormalizeConfig) error {
	var errs []string
	for name, k := range map[string]int{
		"preferred_lanes":     c.PreferredLanes,
		"preferred_brokers":   c.PreferredBrokers,
		"preferred_equipment": c.PreferredEquipment,
	} {
		if k < 1 {
			errs = append(errs, fmt.Sprintf("%s must be >= 1", name))
		}
	}
	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidConfig, "normalize: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Engine normalizes raw record batches. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	cfg config.NormalizeConfig
}

// New validates cfg and returns an Engine.
func New(cfg config.NormalizeConfig) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Stats counts what happened to a batch.
type Stats struct {
	Records        int            `json:"records"`
	Skipped        int            `json:"skipped"`
	Brokers        int            `json:"brokers"`
	Loads          int            `json:"loads"`
	Lanes          int            `json:"lanes"`
	DuplicateLoads int            `json:"duplicate_loads"`
	Conflicts      int            `json:"conflicts"`
	BrokerMentions map[string]int `json:"broker_mentions"`
}

// Result is a normalized profile plus everything reported along the way.
type Result struct {
	Profile  *model.CarrierProfile `json:"profile"`
	Warnings []model.Warning       `json:"warnings"`
	Stats    Stats                 `json:"stats"`
}

type loadEntry struct {
	load  model.Load
	lane  *model.Lane
	first int
}

// Normalize deduplicates records into a CarrierProfile. Records that cannot
// be identified or parsed are skipped and reported in Result.Warnings.
func (e *Engine) Normalize(records []model.RawRecord) *Result {
	res := &Result{
		Warnings: []model.Warning{},
		Stats:    Stats{Records: len(records), BrokerMentions: map[string]int{}},
	}

	var (
		brokerOrder []string
		brokers     = map[string]model.Broker{}
		loadOrder   []string
		loads       = map[string]*loadEntry{}
	)

	for i, r := range records {
		p, warns, ok := parseRecord(i, r)
		res.Warnings = append(res.Warnings, warns...)
		if !ok {
			res.Stats.Skipped++
			continue
		}

		if k := p.broker.Key; k != "" {
			if existing, seen := brokers[k]; seen {
				brokers[k] = MergeBroker(existing, p.broker)
			} else {
				brokers[k] = p.broker
				brokerOrder = append(brokerOrder, k)
			}
			res.Stats.BrokerMentions[k]++
		}

		if p.load.ID == "" {
			continue
		}
		// Distance implied by a quoted rate-per-mile.
		if p.lane != nil && p.lane.DistanceMiles == nil && p.rpm != nil && p.load.Rate != nil && p.load.Rate.Amount > 0 {
			d := p.load.Rate.Amount / *p.rpm
			p.lane.DistanceMiles = &d
		}

		entry, seen := loads[p.load.ID]
		if !seen {
			loads[p.load.ID] = &loadEntry{load: p.load, lane: p.lane, first: i}
			loadOrder = append(loadOrder, p.load.ID)
			continue
		}

		res.Stats.DuplicateLoads++
		winner, incomingWon, conflict := ResolveLoad(entry.load, p.load)
		winLane, loseLane := entry.lane, p.lane
		if incomingWon {
			winLane, loseLane = p.lane, entry.lane
		}
		if winLane == nil {
			winLane = loseLane
		} else if loseLane != nil && winLane.Key() == loseLane.Key() {
			merged := MergeLane(*winLane, *loseLane)
			winLane = &merged
		}
		entry.load, entry.lane = winner, winLane
		if conflict {
			res.Stats.Conflicts++
			res.Warnings = append(res.Warnings, model.Warning{
				Kind:    model.WarnConflict,
				Record:  i,
				Key:     p.load.ID,
				Message: fmt.Sprintf("load %s disagrees with record %d from the same source, keeping the earlier record", p.load.ID, entry.first),
			})
		}
	}

	profile := &model.CarrierProfile{
		Brokers: make([]model.Broker, 0, len(brokerOrder)),
		Loads:   make([]model.Load, 0, len(loadOrder)),
		Lanes:   []model.Lane{},
	}
	for _, k := range brokerOrder {
		profile.Brokers = append(profile.Brokers, brokers[k])
	}

	laneIdx := map[string]int{}
	for _, id := range loadOrder {
		entry := loads[id]
		if entry.lane == nil {
			continue
		}
		obs := *entry.lane
		obs.Loads = 0
		obs.Source = entry.load.Source
		obs.LastSeen = entry.load.Date()
		k := obs.Key()
		if i, ok := laneIdx[k]; ok {
			profile.Lanes[i] = MergeLane(profile.Lanes[i], obs)
		} else {
			laneIdx[k] = len(profile.Lanes)
			profile.Lanes = append(profile.Lanes, obs)
		}
		profile.Lanes[laneIdx[k]].Loads++
	}

	for _, id := range loadOrder {
		l := loads[id].load
		if b, ok := brokers[l.BrokerKey]; ok {
			l.BrokerName = b.CompanyName
			if l.BrokerName == "" {
				l.BrokerName = b.ContactName
			}
			l.BrokerMC = b.MCNumber
		}
		if l.Rate != nil {
			r := *l.Rate
			r.PerMile = nil
			if i, ok := laneIdx[l.LaneKey()]; ok {
				r.PerMile = RatePerMile(r.Amount, profile.Lanes[i].DistanceMiles)
			}
			l.Rate = &r
		}
		profile.Loads = append(profile.Loads, l)
	}

	profile.PreferredLanes, profile.PreferredBrokers, profile.PreferredEquipment = extractPreferences(
		profile.Loads, e.cfg.PreferredLanes, e.cfg.PreferredBrokers, e.cfg.PreferredEquipment)

	res.Profile = profile
	res.Stats.Brokers = len(profile.Brokers)
	res.Stats.Loads = len(profile.Loads)
	res.Stats.Lanes = len(profile.Lanes)

	zap.L().Info("normalize: batch complete",
		zap.Int("records", res.Stats.Records),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Int("brokers", res.Stats.Brokers),
		zap.Int("loads", res.Stats.Loads),
		zap.Int("lanes", res.Stats.Lanes),
		zap.Int("duplicates", res.Stats.DuplicateLoads),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

// RatePerMile returns amount/distance, or nil unless both are positive.
func RatePerMile(amount float64, distance *float64) *float64 {
	if amount <= 0 || distance == nil || *distance <= 0 {
		return nil
	}
	v := amount / *distance
	return &v
}
