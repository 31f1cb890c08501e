package normalize

import (
	"math"
	"time"

	"github.com/sells-group/loadmatch/internal/model"
)

// fieldRule merges one field of src into dst.
type fieldRule[T any] struct {
	field string
	merge func(dst *T, src T)
}

func firstString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func firstFloat(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func firstTime(dst **time.Time, src *time.Time) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func latestTime(dst **time.Time, src *time.Time) {
	if src != nil && (*dst == nil || src.After(**dst)) {
		v := *src
		*dst = &v
	}
}

// brokerRules is the merge policy for brokers, applied in order. Every field
// is first-non-empty-wins; the address is taken whole so components from
// different mentions never mix.
var brokerRules = []fieldRule[model.Broker]{
	{"key", func(d *model.Broker, s model.Broker) { firstString(&d.Key, s.Key) }},
	{"company_name", func(d *model.Broker, s model.Broker) { firstString(&d.CompanyName, s.CompanyName) }},
	{"contact_name", func(d *model.Broker, s model.Broker) { firstString(&d.ContactName, s.ContactName) }},
	{"mc_number", func(d *model.Broker, s model.Broker) { firstString(&d.MCNumber, s.MCNumber) }},
	{"phone", func(d *model.Broker, s model.Broker) { firstString(&d.Phone, s.Phone) }},
	{"email", func(d *model.Broker, s model.Broker) { firstString(&d.Email, s.Email) }},
	{"address", func(d *model.Broker, s model.Broker) {
		if d.Address.IsZero() {
			d.Address = s.Address
		}
	}},
	{"load_board", func(d *model.Broker, s model.Broker) { firstString(&d.LoadBoard, s.LoadBoard) }},
	{"notes", func(d *model.Broker, s model.Broker) { firstString(&d.Notes, s.Notes) }},
	{"source", func(d *model.Broker, s model.Broker) {
		if d.Source == "" {
			d.Source = s.Source
		}
	}},
}

// MergeBroker folds a later mention of the same broker into an existing one.
// Populated fields of old are never overwritten.
func MergeBroker(old, new model.Broker) model.Broker {
	merged := old
	for _, r := range brokerRules {
		r.merge(&merged, new)
	}
	return merged
}

// laneRules is the merge policy for lane attributes. Load counts are
// tallied by the engine, not merged.
var laneRules = []fieldRule[model.Lane]{
	{"distance_miles", func(d *model.Lane, s model.Lane) { firstFloat(&d.DistanceMiles, s.DistanceMiles) }},
	{"transit_hours", func(d *model.Lane, s model.Lane) { firstFloat(&d.TransitHours, s.TransitHours) }},
	{"source", func(d *model.Lane, s model.Lane) {
		if d.Source == "" {
			d.Source = s.Source
		}
	}},
	{"last_seen", func(d *model.Lane, s model.Lane) { latestTime(&d.LastSeen, s.LastSeen) }},
}

// MergeLane folds another observation of the same lane into old, preferring
// the existing non-null distance and transit time.
func MergeLane(old, new model.Lane) model.Lane {
	merged := old
	for _, r := range laneRules {
		r.merge(&merged, new)
	}
	return merged
}

var loadRules = []fieldRule[model.Load]{
	{"broker_key", func(d *model.Load, s model.Load) { firstString(&d.BrokerKey, s.BrokerKey) }},
	{"lane", func(d *model.Load, s model.Load) {
		if d.Origin == "" && d.Destination == "" {
			d.Origin, d.Destination = s.Origin, s.Destination
		}
	}},
	{"rate", func(d *model.Load, s model.Load) {
		if d.Rate == nil && s.Rate != nil {
			r := *s.Rate
			d.Rate = &r
		}
	}},
	{"equipment", func(d *model.Load, s model.Load) { firstString(&d.Equipment, s.Equipment) }},
	{"booking_date", func(d *model.Load, s model.Load) { firstTime(&d.BookingDate, s.BookingDate) }},
	{"pickup_date", func(d *model.Load, s model.Load) { firstTime(&d.PickupDate, s.PickupDate) }},
	{"delivery_date", func(d *model.Load, s model.Load) { firstTime(&d.DeliveryDate, s.DeliveryDate) }},
}

// MergeLoad fills blank fields of winner from loser.
func MergeLoad(winner, loser model.Load) model.Load {
	merged := winner
	for _, r := range loadRules {
		r.merge(&merged, loser)
	}
	return merged
}

// ResolveLoad picks between two records carrying the same load identity.
// The more specific source wins and the other fills its blanks. conflict is
// true when the records disagree on rate or dates and neither source is more
// specific, in which case the existing record is kept.
func ResolveLoad(existing, incoming model.Load) (winner model.Load, incomingWon, conflict bool) {
	disagree := loadsDisagree(existing, incoming)
	switch {
	case incoming.Source.Specificity() > existing.Source.Specificity():
		return MergeLoad(incoming, existing), true, false
	case incoming.Source.Specificity() == existing.Source.Specificity():
		return MergeLoad(existing, incoming), false, disagree
	default:
		return MergeLoad(existing, incoming), false, false
	}
}

func loadsDisagree(a, b model.Load) bool {
	if a.Rate != nil && b.Rate != nil && math.Abs(a.Rate.Amount-b.Rate.Amount) >= 0.005 {
		return true
	}
	return datesDiffer(a.BookingDate, b.BookingDate) ||
		datesDiffer(a.PickupDate, b.PickupDate) ||
		datesDiffer(a.DeliveryDate, b.DeliveryDate)
}

func datesDiffer(a, b *time.Time) bool {
	return a != nil && b != nil && !a.Equal(*b)
}
